package services

import (
	"context"
	"log"
	"time"

	"invoicehub/internal/billing"
	"invoicehub/internal/caching"
	"invoicehub/internal/common"
	"invoicehub/internal/config"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
)

type PaymentService interface {
	Create(ctx context.Context, payment *models.InvoicePayment) error
	Delete(ctx context.Context, paymentID uuid.UUID) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoicePayment, error)
}

type paymentService struct {
	paymentRepo  repositories.PaymentRepository
	invoiceRepo  repositories.InvoiceRepository
	lineRepo     repositories.InvoiceLineRepository
	cacheService caching.CacheService
	cfg          *config.BillingConfig
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, invoiceRepo repositories.InvoiceRepository, lineRepo repositories.InvoiceLineRepository, cacheService caching.CacheService, cfg *config.BillingConfig) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		invoiceRepo:  invoiceRepo,
		lineRepo:     lineRepo,
		cacheService: cacheService,
		cfg:          cfg,
	}
}

// Create records a payment and recomputes the parent invoice. A zero amount
// defaults to the remaining balance and a zero date to today.
func (s *paymentService) Create(ctx context.Context, payment *models.InvoicePayment) error {
	invoice, err := s.loadInvoice(ctx, payment.InvoiceID)
	if err != nil {
		return err
	}

	if payment.Amount == 0 {
		payment.Amount = invoice.RemainingBalance()
	}
	if payment.Amount <= 0 {
		return common.NewValidationError("amount", "payment amount must be positive")
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return err
	}
	return s.recomputeInvoice(ctx, invoice.ID)
}

// Delete removes a payment and recomputes the parent invoice, which may
// revert it from Paid back to Sent.
func (s *paymentService) Delete(ctx context.Context, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return common.NewValidationError("payment", "payment not found")
	}
	if err := s.paymentRepo.Delete(ctx, paymentID); err != nil {
		return err
	}
	return s.recomputeInvoice(ctx, payment.InvoiceID)
}

func (s *paymentService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoicePayment, error) {
	return s.paymentRepo.ListByInvoice(ctx, invoiceID)
}

func (s *paymentService) loadInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *paymentService) recomputeInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	invoice, err := s.loadInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	invoice.Lines, err = s.lineRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	invoice.Payments, err = s.paymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}

	res := billing.Recompute(invoice, billing.Config{
		DiscountAfterTax: s.cfg.Billing.DiscountAfterTax,
		TaxExclusive:     s.cfg.Billing.TaxExclusive,
	})
	res.Apply(invoice)

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return err
	}
	if err := s.cacheService.DeleteInvoice(ctx, invoiceID); err != nil {
		log.Printf("failed to invalidate invoice cache %s: %v", invoiceID, err)
	}
	if err := s.cacheService.InvalidateStatistics(ctx); err != nil {
		log.Printf("failed to invalidate statistics cache: %v", err)
	}
	return nil
}
