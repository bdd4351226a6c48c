package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvoiceLine is a single billable row on an invoice. Totals are derived,
// never stored: the invoice recalculation reads them on every save.
type InvoiceLine struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	InvoiceID   uuid.UUID  `json:"invoice_id" db:"invoice_id"`
	Position    int        `json:"position" db:"position"`
	Description string     `json:"description" db:"description"`
	Quantity    float64    `json:"quantity" db:"quantity"`
	Price       float64    `json:"price" db:"price"`
	Tax         *float64   `json:"tax" db:"tax"`
	Discount    *float64   `json:"discount" db:"discount"`
	Units       *string    `json:"units" db:"units"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Total is price multiplied by quantity, unrounded.
func (l *InvoiceLine) Total() float64 {
	return l.Price * l.Quantity
}

// TaxAmount is the tax portion of the line total. A missing tax rate counts
// as zero.
func (l *InvoiceLine) TaxAmount() float64 {
	return l.Total() * l.TaxValue() / 100
}

// TaxValue coerces a missing tax rate to 0.
func (l *InvoiceLine) TaxValue() float64 {
	if l.Tax == nil {
		return 0
	}
	return *l.Tax
}

// DiscountValue coerces a missing per-line discount to 0.
func (l *InvoiceLine) DiscountValue() float64 {
	if l.Discount == nil {
		return 0
	}
	return *l.Discount
}

// ParseLineNumber parses a price or quantity as entered by a user. Spaces
// are stripped and a comma decimal separator is accepted ("123,45").
func ParseLineNumber(s string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	if cleaned == "" {
		return 0, fmt.Errorf("value is required")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
