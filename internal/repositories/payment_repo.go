package repositories

import (
	"context"
	"errors"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, invoice_id, author_id, amount, payment_date, description, created_at, updated_at`

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.InvoicePayment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InvoicePayment, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoicePayment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

type paymentRepo struct {
	db DB
}

func NewPaymentRepo(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *models.InvoicePayment) error {
	query := `
		INSERT INTO invoice_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.InvoiceID, payment.AuthorID,
		payment.Amount, payment.PaymentDate, payment.Description)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InvoicePayment, error) {
	payment := &models.InvoicePayment{}
	query := `SELECT ` + paymentColumns + ` FROM invoice_payments WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&payment.ID, &payment.InvoiceID, &payment.AuthorID,
		&payment.Amount, &payment.PaymentDate, &payment.Description, &payment.CreatedAt, &payment.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoicePayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM invoice_payments WHERE invoice_id = $1 ORDER BY payment_date ASC`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.InvoicePayment
	for rows.Next() {
		payment := &models.InvoicePayment{}
		if err := rows.Scan(&payment.ID, &payment.InvoiceID, &payment.AuthorID, &payment.Amount,
			&payment.PaymentDate, &payment.Description, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *paymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invoice_payments WHERE id = $1`, id)
	return err
}

func (r *paymentRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invoice_payments WHERE invoice_id = $1`, invoiceID)
	return err
}
