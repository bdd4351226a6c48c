package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoicePayment records money received against an invoice. Saving or
// deleting one triggers a full recomputation of the parent invoice.
type InvoicePayment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	InvoiceID   uuid.UUID  `json:"invoice_id" db:"invoice_id"`
	AuthorID    *uuid.UUID `json:"author_id" db:"author_id"`
	Amount      float64    `json:"amount" db:"amount"`
	PaymentDate time.Time  `json:"payment_date" db:"payment_date"`
	Description *string    `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
