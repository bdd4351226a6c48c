package services

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"invoicehub/internal/billing"
	"invoicehub/internal/caching"
	"invoicehub/internal/common"
	"invoicehub/internal/config"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
)

// ErrInvoiceNotFound is returned when an invoice lookup misses.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrInvalidToken is returned when a client-view token does not match.
var ErrInvalidToken = errors.New("invalid access token")

type InvoiceService interface {
	Create(ctx context.Context, invoice *models.Invoice, lines []*models.InvoiceLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice, lines []*models.InvoiceLine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repositories.InvoiceFilter, limit, offset int) ([]*models.Invoice, error)

	// Copy duplicates an existing invoice into a fresh draft with a newly
	// generated number.
	Copy(ctx context.Context, sourceID uuid.UUID, authorID *uuid.UUID) (*models.Invoice, error)

	// CopyFromObject creates a draft prefilled from another document.
	// Supported object types are "invoice" and "expense". Per-line discounts
	// on the source are folded into the copied price.
	CopyFromObject(ctx context.Context, objectType string, objectID uuid.UUID, authorID *uuid.UUID) (*models.Invoice, error)

	// LinesFromTimeEntries builds invoice lines from logged time, grouped by
	// the requested mode.
	LinesFromTimeEntries(ctx context.Context, timeEntryIDs []uuid.UUID, grouping int, projectID *int64) ([]*models.InvoiceLine, error)

	// LinesFromIssues builds invoice lines from the time logged against the
	// given issues.
	LinesFromIssues(ctx context.Context, issueIDs []int64, grouping int, projectID *int64) ([]*models.InvoiceLine, error)

	// GenerateNumber expands the configured number format against the
	// current counters.
	GenerateNumber(ctx context.Context, project *billing.ProjectRef) (string, error)

	// ClientToken derives the public-view token for an invoice.
	ClientToken(invoice *models.Invoice) string
	// GetForClient loads an invoice for the unauthenticated client view,
	// rejecting mismatched tokens.
	GetForClient(ctx context.Context, id uuid.UUID, token string) (*models.Invoice, error)

	ExportCSV(ctx context.Context, filter repositories.InvoiceFilter) ([]byte, error)

	AddComment(ctx context.Context, invoiceID uuid.UUID, authorID *uuid.UUID, content string) (*models.InvoiceComment, error)
	ListComments(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceComment, error)
}

type invoiceService struct {
	invoiceRepo   repositories.InvoiceRepository
	lineRepo      repositories.InvoiceLineRepository
	paymentRepo   repositories.PaymentRepository
	commentRepo   repositories.CommentRepository
	contactRepo   repositories.ContactRepository
	timeEntryRepo repositories.TimeEntryRepository
	rateRepo      repositories.RateRepository
	expenseRepo   repositories.ExpenseRepository
	cacheService  caching.CacheService
	cfg           *config.BillingConfig
}

func NewInvoiceService(
	invoiceRepo repositories.InvoiceRepository,
	lineRepo repositories.InvoiceLineRepository,
	paymentRepo repositories.PaymentRepository,
	commentRepo repositories.CommentRepository,
	contactRepo repositories.ContactRepository,
	timeEntryRepo repositories.TimeEntryRepository,
	rateRepo repositories.RateRepository,
	expenseRepo repositories.ExpenseRepository,
	cacheService caching.CacheService,
	cfg *config.BillingConfig,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:   invoiceRepo,
		lineRepo:      lineRepo,
		paymentRepo:   paymentRepo,
		commentRepo:   commentRepo,
		contactRepo:   contactRepo,
		timeEntryRepo: timeEntryRepo,
		rateRepo:      rateRepo,
		expenseRepo:   expenseRepo,
		cacheService:  cacheService,
		cfg:           cfg,
	}
}

func (s *invoiceService) billingConfig() billing.Config {
	return billing.Config{
		DiscountAfterTax: s.cfg.Billing.DiscountAfterTax,
		TaxExclusive:     s.cfg.Billing.TaxExclusive,
	}
}

func (s *invoiceService) validate(ctx context.Context, invoice *models.Invoice) error {
	verr := &common.ValidationError{}
	if invoice.Number == "" {
		verr.Add("number", "number is required")
	}
	if invoice.Currency == "" {
		verr.Add("currency", "currency is required")
	}
	if invoice.InvoiceDate.IsZero() {
		verr.Add("invoice_date", "invoice date is required")
	}
	if _, ok := models.StatusNames[invoice.Status]; !ok {
		verr.Add("status", "unknown status")
	}
	if err := common.ValidatePercent(invoice.Discount, "discount"); err != nil {
		verr.Add("discount", "discount must be between 0 and 100")
	}
	if invoice.IsRecurring {
		if invoice.RecurringPeriod == nil {
			verr.Add("recurring_period", "recurring period is required for recurring profiles")
		} else if _, ok := models.RecurringIntervals[*invoice.RecurringPeriod]; !ok {
			verr.Add("recurring_period", "unknown recurring period")
		}
	}
	if invoice.Number != "" {
		exists, err := s.invoiceRepo.NumberExists(ctx, invoice.Number, invoice.ID)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("number", "number has already been taken")
		}
	}
	for _, line := range invoice.Lines {
		if line.Description == "" {
			verr.Add("lines", "line description is required")
			break
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// recalculate refreshes amount and balance from the loaded lines and
// payments. Only invoices already in the Sent/Paid lifecycle get their status
// and paid date re-derived; Draft, Estimate and Canceled stay as the caller
// set them. ValidateStatus still rejects a status that contradicts the
// recomputed balance.
func (s *invoiceService) recalculate(invoice *models.Invoice) error {
	res := billing.Recompute(invoice, s.billingConfig())
	invoice.Amount = res.Amount
	invoice.Balance = res.Balance
	if invoice.Status == models.StatusPaid || invoice.Status == models.StatusSent {
		invoice.Status = res.Status
		invoice.PaidDate = res.PaidDate
	}
	return billing.ValidateStatus(invoice)
}

func (s *invoiceService) Create(ctx context.Context, invoice *models.Invoice, lines []*models.InvoiceLine) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if invoice.Currency == "" {
		invoice.Currency = s.cfg.Billing.DefaultCurrency
	}
	if invoice.InvoiceDate.IsZero() {
		invoice.InvoiceDate = time.Now()
	}

	if invoice.Number == "" {
		number, err := s.GenerateNumber(ctx, projectRefOf(invoice))
		if err != nil {
			return err
		}
		invoice.Number = number
	}
	if invoice.SequenceID == 0 {
		seq, err := s.invoiceRepo.NextSequenceID(ctx)
		if err != nil {
			return err
		}
		invoice.SequenceID = seq
	}
	if invoice.Subject == nil && s.cfg.Numbering.SubjectFormat != "" {
		subject, err := billing.ExpandMacros(ctx, s.cfg.Numbering.SubjectFormat, projectRefOf(invoice), s.invoiceRepo, time.Now())
		if err != nil {
			return err
		}
		invoice.Subject = &subject
	}

	for i, line := range lines {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.InvoiceID = invoice.ID
		line.Position = i + 1
	}
	invoice.Lines = lines
	invoice.Payments = nil

	if err := s.validate(ctx, invoice); err != nil {
		return err
	}
	if err := s.recalculate(invoice); err != nil {
		return err
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return err
	}
	if err := s.lineRepo.ReplaceForInvoice(ctx, invoice.ID, lines); err != nil {
		return err
	}
	s.invalidateCaches(ctx, invoice.ID)
	return nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if cached, err := s.cacheService.GetInvoice(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("cache error for invoice %s: %v", id, err)
	}

	invoice, err := s.loadWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetInvoice(ctx, invoice, 15*time.Minute); cacheErr != nil {
		log.Printf("failed to cache invoice %s: %v", id, cacheErr)
	}
	return invoice, nil
}

func (s *invoiceService) loadWithRelations(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}
	invoice.Lines, err = s.lineRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.Payments, err = s.paymentRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}
	return s.loadWithRelations(ctx, invoice.ID)
}

func (s *invoiceService) Update(ctx context.Context, invoice *models.Invoice, lines []*models.InvoiceLine) error {
	existing, err := s.invoiceRepo.GetByID(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrInvoiceNotFound
	}

	if lines == nil {
		lines, err = s.lineRepo.ListByInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}
	}
	for i, line := range lines {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.InvoiceID = invoice.ID
		line.Position = i + 1
	}
	invoice.Lines = lines
	invoice.SequenceID = existing.SequenceID

	invoice.Payments, err = s.paymentRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}

	if err := s.validate(ctx, invoice); err != nil {
		return err
	}
	if err := s.recalculate(invoice); err != nil {
		return err
	}

	if err := s.lineRepo.ReplaceForInvoice(ctx, invoice.ID, lines); err != nil {
		return err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return err
	}
	s.invalidateCaches(ctx, invoice.ID)
	return nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrInvoiceNotFound
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCaches(ctx, id)
	return nil
}

func (s *invoiceService) List(ctx context.Context, filter repositories.InvoiceFilter, limit, offset int) ([]*models.Invoice, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.invoiceRepo.List(ctx, filter, limit, offset)
}

// Copy clones source data and lines into a new draft. The number, sequence,
// payments and paid date are never carried over.
func (s *invoiceService) Copy(ctx context.Context, sourceID uuid.UUID, authorID *uuid.UUID) (*models.Invoice, error) {
	source, err := s.loadWithRelations(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	clone := *source
	clone.ID = uuid.New()
	clone.Number = ""
	clone.SequenceID = 0
	clone.Status = models.StatusDraft
	clone.Balance = 0
	clone.PaidDate = nil
	clone.IsRecurring = false
	clone.RecurringProfileID = nil
	clone.InvoiceDate = time.Now()
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	clone.Payments = nil
	if authorID != nil {
		clone.AuthorID = authorID
	}

	lines := make([]*models.InvoiceLine, 0, len(source.Lines))
	for _, l := range source.Lines {
		cl := *l
		cl.ID = uuid.New()
		cl.InvoiceID = clone.ID
		cl.CreatedAt = time.Time{}
		cl.UpdatedAt = time.Time{}
		lines = append(lines, &cl)
	}

	if err := s.Create(ctx, &clone, lines); err != nil {
		return nil, err
	}
	return &clone, nil
}

// CopyFromObject prefills a draft invoice from another document and saves it.
// Compatible fields carry over; an expense becomes a single line priced at
// its amount, and per-line discounts on a source invoice are folded into the
// copied price.
func (s *invoiceService) CopyFromObject(ctx context.Context, objectType string, objectID uuid.UUID, authorID *uuid.UUID) (*models.Invoice, error) {
	invoice := &models.Invoice{
		ID:       uuid.New(),
		Status:   models.StatusDraft,
		AuthorID: authorID,
	}
	var lines []*models.InvoiceLine

	switch objectType {
	case "invoice":
		source, err := s.loadWithRelations(ctx, objectID)
		if err != nil {
			return nil, err
		}
		invoice.ProjectID = source.ProjectID
		invoice.ProjectIdentifier = source.ProjectIdentifier
		invoice.ContactID = source.ContactID
		invoice.Currency = source.Currency
		invoice.OrderNumber = source.OrderNumber
		invoice.Subject = source.Subject
		invoice.Description = source.Description
		for _, l := range source.Lines {
			lines = append(lines, &models.InvoiceLine{
				Description: l.Description,
				Quantity:    l.Quantity,
				Price:       l.Price * (1 - l.DiscountValue()/100),
				Tax:         l.Tax,
				Discount:    l.Discount,
				Units:       l.Units,
			})
		}
	case "expense":
		expense, err := s.expenseRepo.GetByID(ctx, objectID)
		if err != nil {
			return nil, err
		}
		if expense == nil {
			return nil, ErrExpenseNotFound
		}
		invoice.ProjectID = expense.ProjectID
		invoice.ContactID = expense.ContactID
		invoice.Currency = expense.Currency
		invoice.Description = expense.Description
		description := "expense"
		if expense.Description != nil && *expense.Description != "" {
			description = *expense.Description
		}
		lines = append(lines, &models.InvoiceLine{
			Description: description,
			Quantity:    1,
			Price:       expense.Price,
			Tax:         expense.Tax,
		})
	default:
		verr := &common.ValidationError{}
		verr.Add("object_type", "unsupported object type")
		return nil, verr
	}

	if err := s.Create(ctx, invoice, lines); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) LinesFromTimeEntries(ctx context.Context, timeEntryIDs []uuid.UUID, grouping int, projectID *int64) ([]*models.InvoiceLine, error) {
	entries, err := s.timeEntryRepo.ListByIDs(ctx, timeEntryIDs)
	if err != nil {
		return nil, err
	}
	return billing.BuildLines(ctx, entries, grouping, s.rateRepo, projectID), nil
}

func (s *invoiceService) LinesFromIssues(ctx context.Context, issueIDs []int64, grouping int, projectID *int64) ([]*models.InvoiceLine, error) {
	entries, err := s.timeEntryRepo.ListByIssueIDs(ctx, issueIDs)
	if err != nil {
		return nil, err
	}
	return billing.BuildLines(ctx, entries, grouping, s.rateRepo, projectID), nil
}

func projectRefOf(invoice *models.Invoice) *billing.ProjectRef {
	if invoice.ProjectID == nil {
		return nil
	}
	ref := &billing.ProjectRef{ID: *invoice.ProjectID}
	if invoice.ProjectIdentifier != nil {
		ref.Identifier = *invoice.ProjectIdentifier
	}
	return ref
}

func (s *invoiceService) GenerateNumber(ctx context.Context, project *billing.ProjectRef) (string, error) {
	return billing.ExpandMacros(ctx, s.cfg.Numbering.NumberFormat, project, s.invoiceRepo, time.Now())
}

// ClientToken is the stable MD5 token embedded in public invoice links.
func (s *invoiceService) ClientToken(invoice *models.Invoice) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s.cfg.Billing.SecretToken+invoice.ID.String())))
}

func (s *invoiceService) GetForClient(ctx context.Context, id uuid.UUID, token string) (*models.Invoice, error) {
	invoice, err := s.loadWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	if token == "" || token != s.ClientToken(invoice) {
		return nil, ErrInvalidToken
	}
	return invoice, nil
}

var exportHeader = []string{"number", "invoice_date", "due_date", "contact", "currency", "amount", "balance", "status", "subject", "order_number"}

func (s *invoiceService) ExportCSV(ctx context.Context, filter repositories.InvoiceFilter) ([]byte, error) {
	invoices, err := s.invoiceRepo.List(ctx, filter, 10000, 0)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	contactNames := map[uuid.UUID]string{}
	for _, inv := range invoices {
		contactName := ""
		if inv.ContactID != nil {
			name, ok := contactNames[*inv.ContactID]
			if !ok {
				contact, err := s.contactRepo.GetByID(ctx, *inv.ContactID)
				if err == nil && contact != nil {
					name = contact.Name()
				}
				contactNames[*inv.ContactID] = name
			}
			contactName = name
		}

		dueDate := ""
		if inv.DueDate != nil {
			dueDate = inv.DueDate.Format("2006-01-02")
		}
		subject := ""
		if inv.Subject != nil {
			subject = *inv.Subject
		}
		orderNumber := ""
		if inv.OrderNumber != nil {
			orderNumber = *inv.OrderNumber
		}

		record := []string{
			inv.Number,
			inv.InvoiceDate.Format("2006-01-02"),
			dueDate,
			contactName,
			inv.Currency,
			strconv.FormatFloat(inv.Amount, 'f', 2, 64),
			strconv.FormatFloat(inv.Balance, 'f', 2, 64),
			inv.StatusName(),
			subject,
			orderNumber,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *invoiceService) AddComment(ctx context.Context, invoiceID uuid.UUID, authorID *uuid.UUID, content string) (*models.InvoiceComment, error) {
	if content == "" {
		return nil, common.NewValidationError("content", "comment content is required")
	}
	existing, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrInvoiceNotFound
	}
	comment := &models.InvoiceComment{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
		AuthorID:  authorID,
		Content:   content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *invoiceService) ListComments(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceComment, error) {
	return s.commentRepo.ListByInvoice(ctx, invoiceID)
}

func (s *invoiceService) invalidateCaches(ctx context.Context, invoiceID uuid.UUID) {
	if err := s.cacheService.DeleteInvoice(ctx, invoiceID); err != nil {
		log.Printf("failed to invalidate invoice cache %s: %v", invoiceID, err)
	}
	if err := s.cacheService.InvalidateStatistics(ctx); err != nil {
		log.Printf("failed to invalidate statistics cache: %v", err)
	}
}
