package jobs

import (
	"context"
	"log"
	"time"

	"invoicehub/internal/repositories"

	"github.com/google/uuid"
)

type OverdueAlertService struct {
	invoiceRepo repositories.InvoiceRepository
	contactRepo repositories.ContactRepository
}

type OverdueAlert struct {
	InvoiceID   uuid.UUID
	Number      string
	ContactName string
	Currency    string
	Remaining   float64
	DueDate     time.Time
	DaysOverdue int
}

func NewOverdueAlertService(invoiceRepo repositories.InvoiceRepository, contactRepo repositories.ContactRepository) *OverdueAlertService {
	return &OverdueAlertService{
		invoiceRepo: invoiceRepo,
		contactRepo: contactRepo,
	}
}

// CheckOverdue collects sent invoices past their due date as of the given
// time.
func (a *OverdueAlertService) CheckOverdue(ctx context.Context, asOf time.Time) ([]OverdueAlert, error) {
	invoices, err := a.invoiceRepo.ListOverdue(ctx, asOf)
	if err != nil {
		log.Printf("Failed to list overdue invoices: %v", err)
		return nil, err
	}

	var alerts []OverdueAlert
	for _, inv := range invoices {
		if inv.DueDate == nil {
			continue
		}

		contactName := ""
		if inv.ContactID != nil {
			contact, err := a.contactRepo.GetByID(ctx, *inv.ContactID)
			if err != nil {
				log.Printf("Failed to get contact %s: %v", inv.ContactID.String(), err)
			} else if contact != nil {
				contactName = contact.Name()
			}
		}

		alerts = append(alerts, OverdueAlert{
			InvoiceID:   inv.ID,
			Number:      inv.Number,
			ContactName: contactName,
			Currency:    inv.Currency,
			Remaining:   inv.RemainingBalance(),
			DueDate:     *inv.DueDate,
			DaysOverdue: int(asOf.Sub(*inv.DueDate).Hours() / 24),
		})
	}
	return alerts, nil
}
