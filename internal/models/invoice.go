package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invoice status lifecycle. Estimate and Draft are pre-sending states,
// Sent and Paid are driven by balance recomputation, Canceled is terminal.
const (
	StatusEstimate = 0
	StatusDraft    = 1
	StatusSent     = 2
	StatusPaid     = 3
	StatusCanceled = 4
)

// StatusNames maps status codes to their display names.
var StatusNames = map[int]string{
	StatusEstimate: "estimate",
	StatusDraft:    "draft",
	StatusSent:     "sent",
	StatusPaid:     "paid",
	StatusCanceled: "canceled",
}

// StatusFromName resolves a display name back to its status code.
func StatusFromName(name string) (int, bool) {
	for code, n := range StatusNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}

// Actions taken when a recurring profile fires.
const (
	RecurringActionCreateDraft = 0
	RecurringActionSend        = 1
)

// RecurringIntervals maps a recurring period key to its duration.
var RecurringIntervals = map[string]time.Duration{
	"1week":  7 * 24 * time.Hour,
	"2week":  14 * 24 * time.Hour,
	"1month": 30 * 24 * time.Hour,
	"2month": 60 * 24 * time.Hour,
	"3month": 91 * 24 * time.Hour,
	"6month": 182 * 24 * time.Hour,
	"1year":  365 * 24 * time.Hour,
}

type Invoice struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	ProjectID            *int64     `json:"project_id" db:"project_id"`
	ProjectIdentifier    *string    `json:"project_identifier" db:"project_identifier"`
	ContactID            *uuid.UUID `json:"contact_id" db:"contact_id"`
	AuthorID             *uuid.UUID `json:"author_id" db:"author_id"`
	AssignedToID         *uuid.UUID `json:"assigned_to_id" db:"assigned_to_id"`
	TemplateID           *uuid.UUID `json:"template_id" db:"template_id"`
	SequenceID           int64      `json:"sequence_id" db:"sequence_id"`
	Number               string     `json:"number" db:"number"`
	Subject              *string    `json:"subject" db:"subject"`
	Description          *string    `json:"description" db:"description"`
	InvoiceDate          time.Time  `json:"invoice_date" db:"invoice_date"`
	DueDate              *time.Time `json:"due_date" db:"due_date"`
	Currency             string     `json:"currency" db:"currency"`
	Language             *string    `json:"language" db:"language"`
	OrderNumber          *string    `json:"order_number" db:"order_number"`
	Status               int        `json:"status" db:"status"`
	Discount             *float64   `json:"discount" db:"discount"`
	Amount               float64    `json:"amount" db:"amount"`
	Balance              float64    `json:"balance" db:"balance"`
	PaidDate             *time.Time `json:"paid_date" db:"paid_date"`
	IsRecurring          bool       `json:"is_recurring" db:"is_recurring"`
	RecurringPeriod      *string    `json:"recurring_period" db:"recurring_period"`
	RecurringOccurrences int        `json:"recurring_occurrences" db:"recurring_occurrences"`
	RecurringAction      int        `json:"recurring_action" db:"recurring_action"`
	RecurringProfileID   *uuid.UUID `json:"recurring_profile_id" db:"recurring_profile_id"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`

	// Loaded relations, not persisted columns.
	Lines    []*InvoiceLine    `json:"lines,omitempty" db:"-"`
	Payments []*InvoicePayment `json:"payments,omitempty" db:"-"`
}

// DiscountValue coerces a missing discount to 0 so it is never nil in
// arithmetic.
func (i *Invoice) DiscountValue() float64 {
	if i.Discount == nil {
		return 0
	}
	return *i.Discount
}

// RemainingBalance is the amount still unpaid.
func (i *Invoice) RemainingBalance() float64 {
	return i.Amount - i.Balance
}

func (i *Invoice) IsEstimate() bool { return i.Status == StatusEstimate }
func (i *Invoice) IsDraft() bool    { return i.Status == StatusDraft }
func (i *Invoice) IsSent() bool     { return i.Status == StatusSent }
func (i *Invoice) IsPaid() bool     { return i.Status == StatusPaid }
func (i *Invoice) IsCanceled() bool { return i.Status == StatusCanceled }

// IsOpen reports whether the invoice still awaits payment.
func (i *Invoice) IsOpen() bool {
	return i.Status != StatusPaid && i.Status != StatusCanceled
}

// Overdue reports whether a sent invoice is past its due date.
func (i *Invoice) Overdue(now time.Time) bool {
	return i.IsSent() && i.DueDate != nil && !i.DueDate.After(now)
}

// HasTaxes reports whether any line carries a non-zero tax rate.
func (i *Invoice) HasTaxes() bool {
	for _, l := range i.Lines {
		if l.Tax != nil && *l.Tax > 0 {
			return true
		}
	}
	return false
}

// HasUnits reports whether any line carries a units label.
func (i *Invoice) HasUnits() bool {
	for _, l := range i.Lines {
		if l.Units != nil && *l.Units != "" {
			return true
		}
	}
	return false
}

// Filename is the attachment name used for the rendered PDF.
func (i *Invoice) Filename() string {
	return fmt.Sprintf("invoice-%s.pdf", i.Number)
}

func (i *Invoice) StatusName() string {
	return StatusNames[i.Status]
}
