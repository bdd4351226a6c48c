package services

import (
	"context"
	"log"
	"time"

	"invoicehub/internal/models"
	"invoicehub/internal/repositories"
)

type RecurringService interface {
	// ProcessProfiles generates the next instance for every recurring
	// profile whose interval has elapsed. It returns the number of invoices
	// created.
	ProcessProfiles(ctx context.Context, now time.Time) (int, error)
}

type recurringService struct {
	invoiceRepo    repositories.InvoiceRepository
	invoiceService InvoiceService
}

func NewRecurringService(invoiceRepo repositories.InvoiceRepository, invoiceService InvoiceService) RecurringService {
	return &recurringService{
		invoiceRepo:    invoiceRepo,
		invoiceService: invoiceService,
	}
}

func (s *recurringService) ProcessProfiles(ctx context.Context, now time.Time) (int, error) {
	profiles, err := s.invoiceRepo.ListRecurringProfiles(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, profile := range profiles {
		due, err := s.profileDue(ctx, profile, now)
		if err != nil {
			log.Printf("recurring: skipping profile %s: %v", profile.ID, err)
			continue
		}
		if !due {
			continue
		}
		if err := s.generateInstance(ctx, profile); err != nil {
			log.Printf("recurring: failed to generate instance for profile %s: %v", profile.ID, err)
			continue
		}
		created++
	}
	return created, nil
}

// profileDue checks the occurrence cap and whether the recurring interval has
// elapsed since the last generated instance. The profile's own invoice date
// anchors the first instance.
func (s *recurringService) profileDue(ctx context.Context, profile *models.Invoice, now time.Time) (bool, error) {
	if profile.RecurringPeriod == nil {
		return false, nil
	}
	interval, ok := models.RecurringIntervals[*profile.RecurringPeriod]
	if !ok {
		return false, nil
	}

	if profile.RecurringOccurrences > 0 {
		count, err := s.invoiceRepo.CountRecurringInstances(ctx, profile.ID)
		if err != nil {
			return false, err
		}
		if count >= profile.RecurringOccurrences {
			return false, nil
		}
	}

	anchor := profile.InvoiceDate
	last, err := s.invoiceRepo.LastRecurringInstanceDate(ctx, profile.ID)
	if err != nil {
		return false, err
	}
	if last != nil {
		anchor = *last
	}
	return !now.Before(anchor.Add(interval)), nil
}

func (s *recurringService) generateInstance(ctx context.Context, profile *models.Invoice) error {
	instance, err := s.invoiceService.Copy(ctx, profile.ID, nil)
	if err != nil {
		return err
	}

	instance.RecurringProfileID = &profile.ID
	if profile.RecurringAction == models.RecurringActionSend {
		instance.Status = models.StatusSent
	} else {
		instance.Status = models.StatusDraft
	}
	return s.invoiceService.Update(ctx, instance, instance.Lines)
}
