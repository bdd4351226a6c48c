package models

import (
	"time"

	"github.com/google/uuid"
)

// Expense statuses.
const (
	ExpenseDraft  = 1
	ExpenseNew    = 2
	ExpenseBilled = 3
	ExpensePaid   = 4
)

// ExpenseStatusNames maps expense status codes to display names.
var ExpenseStatusNames = map[int]string{
	ExpenseDraft:  "draft",
	ExpenseNew:    "new",
	ExpenseBilled: "billed",
	ExpensePaid:   "paid",
}

type Expense struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ProjectID    *int64     `json:"project_id" db:"project_id"`
	ContactID    *uuid.UUID `json:"contact_id" db:"contact_id"`
	AuthorID     *uuid.UUID `json:"author_id" db:"author_id"`
	AssignedToID *uuid.UUID `json:"assigned_to_id" db:"assigned_to_id"`
	ExpenseDate  time.Time  `json:"expense_date" db:"expense_date"`
	Price        float64    `json:"price" db:"price"`
	Tax          *float64   `json:"tax" db:"tax"`
	Currency     string     `json:"currency" db:"currency"`
	Description  *string    `json:"description" db:"description"`
	Status       int        `json:"status" db:"status"`
	IsBillable   bool       `json:"is_billable" db:"is_billable"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (e *Expense) IsDraft() bool {
	return e.Status == ExpenseDraft || e.Status == 0
}

func (e *Expense) StatusName() string {
	return ExpenseStatusNames[e.Status]
}
