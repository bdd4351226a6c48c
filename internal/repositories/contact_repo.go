package repositories

import (
	"context"
	"errors"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, first_name, last_name, company, email, created_at, updated_at`

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	// FindByEmailPrefix returns the first contact whose email starts with
	// the given string, the matching rule the CSV import uses.
	FindByEmailPrefix(ctx context.Context, prefix string) (*models.Contact, error)
	List(ctx context.Context, limit, offset int) ([]*models.Contact, error)
}

type contactRepo struct {
	db DB
}

func NewContactRepo(db DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, contact.ID, contact.FirstName, contact.LastName, contact.Company, contact.Email)
	return err
}

func (r *contactRepo) scan(row pgx.Row) (*models.Contact, error) {
	contact := &models.Contact{}
	err := row.Scan(&contact.ID, &contact.FirstName, &contact.LastName, &contact.Company,
		&contact.Email, &contact.CreatedAt, &contact.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *contactRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	return r.scan(r.db.QueryRow(ctx, query, id))
}

func (r *contactRepo) FindByEmailPrefix(ctx context.Context, prefix string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE email LIKE $1 ORDER BY created_at ASC LIMIT 1`
	return r.scan(r.db.QueryRow(ctx, query, prefix+"%"))
}

func (r *contactRepo) List(ctx context.Context, limit, offset int) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY first_name ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact := &models.Contact{}
		if err := rows.Scan(&contact.ID, &contact.FirstName, &contact.LastName, &contact.Company,
			&contact.Email, &contact.CreatedAt, &contact.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
