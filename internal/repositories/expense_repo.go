package repositories

import (
	"context"
	"errors"
	"fmt"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const expenseColumns = `id, project_id, contact_id, author_id, assigned_to_id, expense_date, price, tax, currency, description, status, is_billable, created_at, updated_at`

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	ProjectID  *int64
	ContactID  *uuid.UUID
	Status     *int
	IsBillable *bool
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ExpenseFilter, limit, offset int) ([]*models.Expense, error)
}

type expenseRepo struct {
	db DB
}

func NewExpenseRepo(db DB) ExpenseRepository {
	return &expenseRepo{db: db}
}

func (r *expenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, expense.ID, expense.ProjectID, expense.ContactID, expense.AuthorID,
		expense.AssignedToID, expense.ExpenseDate, expense.Price, expense.Tax, expense.Currency,
		expense.Description, expense.Status, expense.IsBillable)
	return err
}

func (r *expenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	expense := &models.Expense{}
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&expense.ID, &expense.ProjectID, &expense.ContactID,
		&expense.AuthorID, &expense.AssignedToID, &expense.ExpenseDate, &expense.Price, &expense.Tax,
		&expense.Currency, &expense.Description, &expense.Status, &expense.IsBillable,
		&expense.CreatedAt, &expense.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *expenseRepo) Update(ctx context.Context, expense *models.Expense) error {
	query := `
		UPDATE expenses
		SET project_id = $1, contact_id = $2, assigned_to_id = $3, expense_date = $4, price = $5,
		    tax = $6, currency = $7, description = $8, status = $9, is_billable = $10, updated_at = NOW()
		WHERE id = $11
	`
	_, err := r.db.Exec(ctx, query, expense.ProjectID, expense.ContactID, expense.AssignedToID,
		expense.ExpenseDate, expense.Price, expense.Tax, expense.Currency, expense.Description,
		expense.Status, expense.IsBillable, expense.ID)
	return err
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return err
}

func (r *expenseRepo) List(ctx context.Context, filter ExpenseFilter, limit, offset int) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE 1=1`
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
	if filter.IsBillable != nil {
		query += fmt.Sprintf(" AND is_billable = $%d", idx)
		args = append(args, *filter.IsBillable)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY expense_date DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(&expense.ID, &expense.ProjectID, &expense.ContactID, &expense.AuthorID,
			&expense.AssignedToID, &expense.ExpenseDate, &expense.Price, &expense.Tax, &expense.Currency,
			&expense.Description, &expense.Status, &expense.IsBillable, &expense.CreatedAt, &expense.UpdatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}
