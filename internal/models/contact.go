package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  *string   `json:"last_name" db:"last_name"`
	Company   *string   `json:"company" db:"company"`
	Email     *string   `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Name is the display name: company when set, otherwise first and last name.
func (c *Contact) Name() string {
	if c.Company != nil && *c.Company != "" {
		return *c.Company
	}
	parts := []string{c.FirstName}
	if c.LastName != nil && *c.LastName != "" {
		parts = append(parts, *c.LastName)
	}
	return strings.Join(parts, " ")
}
