package repositories

import (
	"context"

	"invoicehub/internal/models"

	"github.com/google/uuid"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.InvoiceComment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceComment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepo struct {
	db DB
}

func NewCommentRepo(db DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Create(ctx context.Context, comment *models.InvoiceComment) error {
	query := `
		INSERT INTO invoice_comments (id, invoice_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, comment.ID, comment.InvoiceID, comment.AuthorID, comment.Content)
	return err
}

func (r *commentRepo) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceComment, error) {
	query := `
		SELECT id, invoice_id, author_id, content, created_at
		FROM invoice_comments
		WHERE invoice_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.InvoiceComment
	for rows.Next() {
		comment := &models.InvoiceComment{}
		if err := rows.Scan(&comment.ID, &comment.InvoiceID, &comment.AuthorID, &comment.Content, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *commentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invoice_comments WHERE id = $1`, id)
	return err
}
