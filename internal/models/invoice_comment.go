package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceComment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	InvoiceID uuid.UUID  `json:"invoice_id" db:"invoice_id"`
	AuthorID  *uuid.UUID `json:"author_id" db:"author_id"`
	Content   string     `json:"content" db:"content"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
