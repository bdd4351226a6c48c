package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
)

// ImportResult summarizes one CSV import run. Rows that fail validation are
// reported and skipped; the rest are created.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type ImportService interface {
	ImportCSV(ctx context.Context, reader io.Reader, projectID *int64) (*ImportResult, error)
}

type importService struct {
	invoiceService InvoiceService
	contactRepo    repositories.ContactRepository
}

func NewImportService(invoiceService InvoiceService, contactRepo repositories.ContactRepository) ImportService {
	return &importService{
		invoiceService: invoiceService,
		contactRepo:    contactRepo,
	}
}

// importableFields maps normalized CSV headers to canonical field names.
var importableFields = map[string]string{
	"number":       "number",
	"invoice date": "invoice_date",
	"invoice_date": "invoice_date",
	"date":         "invoice_date",
	"due date":     "due_date",
	"due_date":     "due_date",
	"subject":      "subject",
	"description":  "description",
	"currency":     "currency",
	"status":       "status",
	"discount":     "discount",
	"order number": "order_number",
	"order_number": "order_number",
	"contact":      "contact",
	"email":        "contact",
	"amount":       "amount",
}

var importDateFormats = []string{"2006-01-02", "01/02/2006", "02.01.2006"}

func parseImportDate(value string) (time.Time, error) {
	for _, layout := range importDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func (s *importService) ImportCSV(ctx context.Context, reader io.Reader, projectID *int64) (*ImportResult, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = importableFields[strings.ToLower(strings.TrimSpace(h))]
	}

	result := &ImportResult{}
	rowNum := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		invoice, lines, rowErr := s.buildInvoice(ctx, columns, record, projectID)
		if rowErr != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, rowErr))
			continue
		}
		if err := s.invoiceService.Create(ctx, invoice, lines); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.Created++
	}
	return result, nil
}

// buildInvoice maps one CSV row onto an invoice. Blank cells are skipped
// silently so partial exports can be re-imported.
func (s *importService) buildInvoice(ctx context.Context, columns, record []string, projectID *int64) (*models.Invoice, []*models.InvoiceLine, error) {
	invoice := &models.Invoice{
		ID:        uuid.New(),
		ProjectID: projectID,
		Status:    models.StatusDraft,
	}
	var lines []*models.InvoiceLine

	for i, field := range columns {
		if field == "" || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		if value == "" {
			continue
		}

		switch field {
		case "number":
			invoice.Number = value
		case "invoice_date":
			date, err := parseImportDate(value)
			if err != nil {
				return nil, nil, err
			}
			invoice.InvoiceDate = date
		case "due_date":
			date, err := parseImportDate(value)
			if err != nil {
				return nil, nil, err
			}
			invoice.DueDate = &date
		case "subject":
			v := value
			invoice.Subject = &v
		case "description":
			v := value
			invoice.Description = &v
		case "currency":
			invoice.Currency = strings.ToUpper(value)
		case "status":
			status, ok := models.StatusFromName(strings.ToLower(value))
			if !ok {
				return nil, nil, fmt.Errorf("unknown status %q", value)
			}
			invoice.Status = status
		case "discount":
			discount, err := models.ParseLineNumber(value)
			if err != nil {
				return nil, nil, err
			}
			invoice.Discount = &discount
		case "order_number":
			v := value
			invoice.OrderNumber = &v
		case "contact":
			contact, err := s.contactRepo.FindByEmailPrefix(ctx, value)
			if err != nil {
				return nil, nil, err
			}
			if contact != nil {
				invoice.ContactID = &contact.ID
			}
		case "amount":
			amount, err := models.ParseLineNumber(value)
			if err != nil {
				return nil, nil, err
			}
			lines = append(lines, &models.InvoiceLine{
				Description: "imported line",
				Quantity:    1,
				Price:       amount,
			})
		}
	}

	return invoice, lines, nil
}
