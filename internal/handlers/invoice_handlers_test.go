package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestParseInvoiceFilter(t *testing.T) {
	contactID := uuid.New()
	c, _ := newTestContext(http.MethodGet, "/invoices?project_id=12&contact_id="+contactID.String()+"&status=sent&search=acme", "")

	filter, err := parseInvoiceFilter(c)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), *filter.ProjectID)
	assert.Equal(t, contactID, *filter.ContactID)
	assert.Equal(t, models.StatusSent, *filter.Status)
	assert.Equal(t, "acme", filter.Search)
}

func TestParseInvoiceFilterRejectsUnknownStatus(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/invoices?status=overdue", "")

	_, err := parseInvoiceFilter(c)
	assert.Error(t, err)
}

func TestParsePaginationDefaults(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/invoices", "")

	limit, offset := parsePagination(c)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 0, offset)

	c, _ = newTestContext(http.MethodGet, "/invoices?limit=50&offset=100", "")
	limit, offset = parsePagination(c)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 100, offset)

	c, _ = newTestContext(http.MethodGet, "/invoices?limit=-1&offset=-5", "")
	limit, offset = parsePagination(c)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 0, offset)
}

func TestApplyRequestParsesDatesAndStatus(t *testing.T) {
	h := &InvoiceHandlers{}
	due := "2024-07-01"
	status := "sent"
	req := &invoiceRequest{
		Number:      "INV-01",
		Currency:    "USD",
		InvoiceDate: "2024-06-01",
		DueDate:     &due,
		Status:      &status,
		Lines: []invoiceLineRequest{
			{Description: "Work", Quantity: 2, Price: 50},
		},
	}

	invoice := &models.Invoice{}
	lines, err := h.applyRequest(req, invoice)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), invoice.InvoiceDate)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), *invoice.DueDate)
	assert.Equal(t, models.StatusSent, invoice.Status)
	assert.Len(t, lines, 1)
	assert.Equal(t, 100.0, lines[0].Total())
}

func TestApplyRequestRejectsBadDate(t *testing.T) {
	h := &InvoiceHandlers{}
	req := &invoiceRequest{InvoiceDate: "01-06-2024"}

	_, err := h.applyRequest(req, &models.Invoice{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invoice_date")
}

func TestGenerateInvoicePDFProducesDocument(t *testing.T) {
	h := &InvoiceHandlers{}
	tax := 20.0
	units := "hours"
	invoice := &models.Invoice{
		ID:          uuid.New(),
		Number:      "INV-42",
		Currency:    "EUR",
		InvoiceDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:      models.StatusSent,
		Amount:      120,
		Lines: []*models.InvoiceLine{
			{Position: 1, Description: "Consulting", Quantity: 5, Price: 20, Tax: &tax, Units: &units},
			{Position: 2, Description: "Hosting", Quantity: 1, Price: 20},
		},
	}
	company := "Acme Inc"
	contact := &models.Contact{FirstName: "x", Company: &company}

	data, err := h.generateInvoicePDF(invoice, contact, nil)
	assert.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.True(t, strings.HasPrefix(string(data[:5]), "%PDF-"))
}

func TestPlainTextInvoiceFallback(t *testing.T) {
	invoice := &models.Invoice{
		Number:      "INV-42",
		Currency:    "USD",
		InvoiceDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:      40,
		Lines: []*models.InvoiceLine{
			{Position: 1, Description: "Work", Quantity: 2, Price: 20},
		},
	}

	out := plainTextInvoice(invoice, nil)
	assert.Contains(t, out, "Invoice INV-42")
	assert.Contains(t, out, "1. Work x2 @ 20.00 = 40.00")
	assert.Contains(t, out, "Total: 40.00 USD")
}
