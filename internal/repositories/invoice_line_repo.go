package repositories

import (
	"context"

	"invoicehub/internal/models"

	"github.com/google/uuid"
)

const lineColumns = `id, invoice_id, position, description, quantity, price, tax, discount, units, created_at, updated_at`

type InvoiceLineRepository interface {
	ReplaceForInvoice(ctx context.Context, invoiceID uuid.UUID, lines []*models.InvoiceLine) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceLine, error)
	DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

type invoiceLineRepo struct {
	db DB
}

func NewInvoiceLineRepo(db DB) InvoiceLineRepository {
	return &invoiceLineRepo{db: db}
}

// ReplaceForInvoice rewrites the invoice's line set, assigning positions in
// slice order. Lines are owned rows: the invoice save is their only entry
// point.
func (r *invoiceLineRepo) ReplaceForInvoice(ctx context.Context, invoiceID uuid.UUID, lines []*models.InvoiceLine) error {
	if err := r.DeleteByInvoice(ctx, invoiceID); err != nil {
		return err
	}
	query := `
		INSERT INTO invoice_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	for i, line := range lines {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.InvoiceID = invoiceID
		line.Position = i + 1
		_, err := r.db.Exec(ctx, query, line.ID, line.InvoiceID, line.Position, line.Description,
			line.Quantity, line.Price, line.Tax, line.Discount, line.Units)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *invoiceLineRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceLine, error) {
	query := `SELECT ` + lineColumns + ` FROM invoice_lines WHERE invoice_id = $1 ORDER BY position ASC`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*models.InvoiceLine
	for rows.Next() {
		line := &models.InvoiceLine{}
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.Position, &line.Description, &line.Quantity,
			&line.Price, &line.Tax, &line.Discount, &line.Units, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *invoiceLineRepo) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID)
	return err
}
