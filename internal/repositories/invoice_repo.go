package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const invoiceColumns = `id, project_id, project_identifier, contact_id, author_id, assigned_to_id, template_id, sequence_id, number, subject, description, invoice_date, due_date, currency, language, order_number, status, discount, amount, balance, paid_date, is_recurring, recurring_period, recurring_occurrences, recurring_action, recurring_profile_id, created_at, updated_at`

// InvoiceFilter narrows List results.
type InvoiceFilter struct {
	ProjectID *int64
	ContactID *uuid.UUID
	Status    *int
	Search    string
}

// CurrencySum is an aggregated amount for one currency.
type CurrencySum struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter InvoiceFilter, limit, offset int) ([]*models.Invoice, error)
	ListRecurringProfiles(ctx context.Context) ([]*models.Invoice, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Invoice, error)
	CountRecurringInstances(ctx context.Context, profileID uuid.UUID) (int, error)
	LastRecurringInstanceDate(ctx context.Context, profileID uuid.UUID) (*time.Time, error)
	NumberExists(ctx context.Context, number string, excludeID uuid.UUID) (bool, error)
	SumByPeriod(ctx context.Context, projectID *int64, contactID *uuid.UUID, from, to time.Time) ([]CurrencySum, error)
	SumByStatus(ctx context.Context, status int, projectID *int64, contactID *uuid.UUID) ([]CurrencySum, int, error)

	// Numbering counters, read from persisted invoices at call time.
	NextSequenceID(ctx context.Context) (int64, error)
	CountDaily(ctx context.Context, projectID *int64, day time.Time) (int, error)
	CountMonthly(ctx context.Context, projectID *int64, month time.Time) (int, error)
	CountYearly(ctx context.Context, projectID *int64, year time.Time) (int, error)
}

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepo(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		invoice.ID, invoice.ProjectID, invoice.ProjectIdentifier, invoice.ContactID, invoice.AuthorID,
		invoice.AssignedToID, invoice.TemplateID, invoice.SequenceID, invoice.Number, invoice.Subject,
		invoice.Description, invoice.InvoiceDate, invoice.DueDate, invoice.Currency, invoice.Language,
		invoice.OrderNumber, invoice.Status, invoice.Discount, invoice.Amount, invoice.Balance,
		invoice.PaidDate, invoice.IsRecurring, invoice.RecurringPeriod, invoice.RecurringOccurrences,
		invoice.RecurringAction, invoice.RecurringProfileID)
	return err
}

func (r *invoiceRepo) scanInvoice(row pgx.Row) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(&invoice.ID, &invoice.ProjectID, &invoice.ProjectIdentifier, &invoice.ContactID,
		&invoice.AuthorID, &invoice.AssignedToID, &invoice.TemplateID, &invoice.SequenceID,
		&invoice.Number, &invoice.Subject, &invoice.Description, &invoice.InvoiceDate, &invoice.DueDate,
		&invoice.Currency, &invoice.Language, &invoice.OrderNumber, &invoice.Status, &invoice.Discount,
		&invoice.Amount, &invoice.Balance, &invoice.PaidDate, &invoice.IsRecurring,
		&invoice.RecurringPeriod, &invoice.RecurringOccurrences, &invoice.RecurringAction,
		&invoice.RecurringProfileID, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepo) scanInvoices(rows pgx.Rows) ([]*models.Invoice, error) {
	defer rows.Close()
	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	invoice, err := r.scanInvoice(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return invoice, err
}

func (r *invoiceRepo) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE number = $1`
	invoice, err := r.scanInvoice(r.db.QueryRow(ctx, query, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return invoice, err
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	query := `
		UPDATE invoices
		SET project_id = $1, project_identifier = $2, contact_id = $3, assigned_to_id = $4, template_id = $5,
		    number = $6, subject = $7, description = $8, invoice_date = $9, due_date = $10, currency = $11,
		    language = $12, order_number = $13, status = $14, discount = $15, amount = $16, balance = $17,
		    paid_date = $18, is_recurring = $19, recurring_period = $20, recurring_occurrences = $21,
		    recurring_action = $22, recurring_profile_id = $23, updated_at = NOW()
		WHERE id = $24
	`
	_, err := r.db.Exec(ctx, query,
		invoice.ProjectID, invoice.ProjectIdentifier, invoice.ContactID, invoice.AssignedToID,
		invoice.TemplateID, invoice.Number, invoice.Subject, invoice.Description, invoice.InvoiceDate,
		invoice.DueDate, invoice.Currency, invoice.Language, invoice.OrderNumber, invoice.Status,
		invoice.Discount, invoice.Amount, invoice.Balance, invoice.PaidDate, invoice.IsRecurring,
		invoice.RecurringPeriod, invoice.RecurringOccurrences, invoice.RecurringAction,
		invoice.RecurringProfileID, invoice.ID)
	return err
}

// Delete removes the invoice and cascades lines, payments and comments.
func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for _, query := range []string{
		`DELETE FROM invoice_lines WHERE invoice_id = $1`,
		`DELETE FROM invoice_payments WHERE invoice_id = $1`,
		`DELETE FROM invoice_comments WHERE invoice_id = $1`,
		`DELETE FROM invoices WHERE id = $1`,
	} {
		if _, err := r.db.Exec(ctx, query, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *invoiceRepo) List(ctx context.Context, filter InvoiceFilter, limit, offset int) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}
	idx := 1
	if filter.ProjectID != nil {
		query += fmt.Sprintf(" AND project_id = $%d", idx)
		args = append(args, *filter.ProjectID)
		idx++
	}
	if filter.ContactID != nil {
		query += fmt.Sprintf(" AND contact_id = $%d", idx)
		args = append(args, *filter.ContactID)
		idx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (LOWER(number) LIKE $%d OR LOWER(subject) LIKE $%d OR LOWER(description) LIKE $%d)", idx, idx, idx)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		idx++
	}
	query += fmt.Sprintf(" ORDER BY invoice_date DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.scanInvoices(rows)
}

func (r *invoiceRepo) ListRecurringProfiles(ctx context.Context) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE is_recurring = TRUE ORDER BY invoice_date ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.scanInvoices(rows)
}

func (r *invoiceRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE status = $1 AND due_date IS NOT NULL AND due_date <= $2 ORDER BY due_date ASC`
	rows, err := r.db.Query(ctx, query, models.StatusSent, asOf)
	if err != nil {
		return nil, err
	}
	return r.scanInvoices(rows)
}

func (r *invoiceRepo) CountRecurringInstances(ctx context.Context, profileID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM invoices WHERE recurring_profile_id = $1`
	err := r.db.QueryRow(ctx, query, profileID).Scan(&count)
	return count, err
}

func (r *invoiceRepo) LastRecurringInstanceDate(ctx context.Context, profileID uuid.UUID) (*time.Time, error) {
	var last *time.Time
	query := `SELECT MAX(invoice_date) FROM invoices WHERE recurring_profile_id = $1`
	err := r.db.QueryRow(ctx, query, profileID).Scan(&last)
	return last, err
}

func (r *invoiceRepo) NumberExists(ctx context.Context, number string, excludeID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM invoices WHERE number = $1 AND id <> $2`
	if err := r.db.QueryRow(ctx, query, number, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invoiceRepo) SumByPeriod(ctx context.Context, projectID *int64, contactID *uuid.UUID, from, to time.Time) ([]CurrencySum, error) {
	query := `
		SELECT currency, COALESCE(SUM(amount), 0)
		FROM invoices
		WHERE invoice_date >= $1 AND invoice_date < $2 AND status IN ($3, $4)
	`
	args := []any{from, to, models.StatusSent, models.StatusPaid}
	idx := 5
	if projectID != nil {
		query += fmt.Sprintf(" AND project_id = $%d", idx)
		args = append(args, *projectID)
		idx++
	}
	if contactID != nil {
		query += fmt.Sprintf(" AND contact_id = $%d", idx)
		args = append(args, *contactID)
	}
	query += " GROUP BY currency ORDER BY currency"

	return r.sumRows(ctx, query, args)
}

func (r *invoiceRepo) SumByStatus(ctx context.Context, status int, projectID *int64, contactID *uuid.UUID) ([]CurrencySum, int, error) {
	query := `SELECT currency, COALESCE(SUM(amount), 0) FROM invoices WHERE status = $1`
	countQuery := `SELECT COUNT(*) FROM invoices WHERE status = $1`
	args := []any{status}
	idx := 2
	if projectID != nil {
		clause := fmt.Sprintf(" AND project_id = $%d", idx)
		query += clause
		countQuery += clause
		args = append(args, *projectID)
		idx++
	}
	if contactID != nil {
		clause := fmt.Sprintf(" AND contact_id = $%d", idx)
		query += clause
		countQuery += clause
		args = append(args, *contactID)
	}
	query += " GROUP BY currency ORDER BY currency"

	sums, err := r.sumRows(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	var count int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}
	return sums, count, nil
}

func (r *invoiceRepo) sumRows(ctx context.Context, query string, args []any) ([]CurrencySum, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sums []CurrencySum
	for rows.Next() {
		var s CurrencySum
		if err := rows.Scan(&s.Currency, &s.Amount); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// NextSequenceID reads the highest persisted sequence and adds one. There is
// no locking here; only the number column's uniqueness constraint protects
// concurrent creations.
func (r *invoiceRepo) NextSequenceID(ctx context.Context) (int64, error) {
	var max int64
	query := `SELECT COALESCE(MAX(sequence_id), 0) FROM invoices`
	if err := r.db.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *invoiceRepo) countBetween(ctx context.Context, projectID *int64, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM invoices WHERE invoice_date >= $1 AND invoice_date < $2`
	args := []any{from, to}
	if projectID != nil {
		query += ` AND project_id = $3`
		args = append(args, *projectID)
	}
	var count int
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *invoiceRepo) CountDaily(ctx context.Context, projectID *int64, day time.Time) (int, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return r.countBetween(ctx, projectID, from, from.AddDate(0, 0, 1))
}

func (r *invoiceRepo) CountMonthly(ctx context.Context, projectID *int64, month time.Time) (int, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return r.countBetween(ctx, projectID, from, from.AddDate(0, 1, 0))
}

func (r *invoiceRepo) CountYearly(ctx context.Context, projectID *int64, year time.Time) (int, error) {
	from := time.Date(year.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	return r.countBetween(ctx, projectID, from, from.AddDate(1, 0, 0))
}
