package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceTemplate holds reusable header/footer content rendered into PDFs.
// A nil ProjectID makes the template global.
type InvoiceTemplate struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ProjectID   *int64     `json:"project_id" db:"project_id"`
	AuthorID    *uuid.UUID `json:"author_id" db:"author_id"`
	Name        string     `json:"name" db:"name"`
	Content     *string    `json:"content" db:"content"`
	Description *string    `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
