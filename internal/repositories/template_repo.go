package repositories

import (
	"context"
	"errors"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const templateColumns = `id, project_id, author_id, name, content, description, created_at, updated_at`

type TemplateRepository interface {
	Create(ctx context.Context, template *models.InvoiceTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InvoiceTemplate, error)
	Update(ctx context.Context, template *models.InvoiceTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListForProject returns the project's templates plus the global ones.
	ListForProject(ctx context.Context, projectID *int64) ([]*models.InvoiceTemplate, error)
}

type templateRepo struct {
	db DB
}

func NewTemplateRepo(db DB) TemplateRepository {
	return &templateRepo{db: db}
}

func (r *templateRepo) Create(ctx context.Context, template *models.InvoiceTemplate) error {
	query := `
		INSERT INTO invoice_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, template.ID, template.ProjectID, template.AuthorID,
		template.Name, template.Content, template.Description)
	return err
}

func (r *templateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InvoiceTemplate, error) {
	template := &models.InvoiceTemplate{}
	query := `SELECT ` + templateColumns + ` FROM invoice_templates WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&template.ID, &template.ProjectID, &template.AuthorID,
		&template.Name, &template.Content, &template.Description, &template.CreatedAt, &template.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (r *templateRepo) Update(ctx context.Context, template *models.InvoiceTemplate) error {
	query := `
		UPDATE invoice_templates
		SET project_id = $1, name = $2, content = $3, description = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, template.ProjectID, template.Name, template.Content,
		template.Description, template.ID)
	return err
}

func (r *templateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invoice_templates WHERE id = $1`, id)
	return err
}

func (r *templateRepo) ListForProject(ctx context.Context, projectID *int64) ([]*models.InvoiceTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM invoice_templates WHERE project_id IS NULL`
	args := []any{}
	if projectID != nil {
		query += ` OR project_id = $1`
		args = append(args, *projectID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.InvoiceTemplate
	for rows.Next() {
		template := &models.InvoiceTemplate{}
		if err := rows.Scan(&template.ID, &template.ProjectID, &template.AuthorID, &template.Name,
			&template.Content, &template.Description, &template.CreatedAt, &template.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}
