package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/config"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"
	"invoicehub/internal/services"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService  services.InvoiceService
	templateService services.TemplateService
	importService   services.ImportService
	contactRepo     repositories.ContactRepository
	storageService  services.StorageService
	cfg             *config.BillingConfig
}

func NewInvoiceHandlers(invoiceService services.InvoiceService, templateService services.TemplateService, importService services.ImportService, contactRepo repositories.ContactRepository, storageService services.StorageService, cfg *config.BillingConfig) *InvoiceHandlers {
	return &InvoiceHandlers{
		invoiceService:  invoiceService,
		templateService: templateService,
		importService:   importService,
		contactRepo:     contactRepo,
		storageService:  storageService,
		cfg:             cfg,
	}
}

type invoiceLineRequest struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Price       float64  `json:"price"`
	Tax         *float64 `json:"tax"`
	Discount    *float64 `json:"discount"`
	Units       *string  `json:"units"`
}

type invoiceRequest struct {
	ProjectID            *int64               `json:"project_id"`
	ProjectIdentifier    *string              `json:"project_identifier"`
	ContactID            *string              `json:"contact_id"`
	AssignedToID         *string              `json:"assigned_to_id"`
	TemplateID           *string              `json:"template_id"`
	Number               string               `json:"number"`
	Subject              *string              `json:"subject"`
	Description          *string              `json:"description"`
	InvoiceDate          string               `json:"invoice_date"`
	DueDate              *string              `json:"due_date"`
	Currency             string               `json:"currency"`
	Language             *string              `json:"language"`
	OrderNumber          *string              `json:"order_number"`
	Status               *string              `json:"status"`
	Discount             *float64             `json:"discount"`
	IsRecurring          bool                 `json:"is_recurring"`
	RecurringPeriod      *string              `json:"recurring_period"`
	RecurringOccurrences int                  `json:"recurring_occurrences"`
	RecurringAction      int                  `json:"recurring_action"`
	Lines                []invoiceLineRequest `json:"lines"`
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func parseOptionalUUID(value *string, field string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(*value, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *InvoiceHandlers) applyRequest(req *invoiceRequest, invoice *models.Invoice) ([]*models.InvoiceLine, error) {
	invoice.ProjectID = req.ProjectID
	invoice.ProjectIdentifier = req.ProjectIdentifier
	invoice.Number = req.Number
	invoice.Subject = req.Subject
	invoice.Description = req.Description
	invoice.Currency = req.Currency
	invoice.Language = req.Language
	invoice.OrderNumber = req.OrderNumber
	invoice.Discount = req.Discount
	invoice.IsRecurring = req.IsRecurring
	invoice.RecurringPeriod = req.RecurringPeriod
	invoice.RecurringOccurrences = req.RecurringOccurrences
	invoice.RecurringAction = req.RecurringAction

	var err error
	if invoice.ContactID, err = parseOptionalUUID(req.ContactID, "contact_id"); err != nil {
		return nil, err
	}
	if invoice.AssignedToID, err = parseOptionalUUID(req.AssignedToID, "assigned_to_id"); err != nil {
		return nil, err
	}
	if invoice.TemplateID, err = parseOptionalUUID(req.TemplateID, "template_id"); err != nil {
		return nil, err
	}

	if req.InvoiceDate != "" {
		date, err := parseDate(req.InvoiceDate)
		if err != nil {
			return nil, common.NewValidationError("invoice_date", "expected YYYY-MM-DD")
		}
		invoice.InvoiceDate = date
	}
	if req.DueDate != nil && *req.DueDate != "" {
		date, err := parseDate(*req.DueDate)
		if err != nil {
			return nil, common.NewValidationError("due_date", "expected YYYY-MM-DD")
		}
		invoice.DueDate = &date
	}
	if req.Status != nil {
		status, ok := models.StatusFromName(*req.Status)
		if !ok {
			return nil, common.NewValidationError("status", "unknown status "+*req.Status)
		}
		invoice.Status = status
	}

	lines := make([]*models.InvoiceLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, &models.InvoiceLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Tax:         l.Tax,
			Discount:    l.Discount,
			Units:       l.Units,
		})
	}
	return lines, nil
}

// CreateInvoice handles POST /invoices
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice := &models.Invoice{ID: uuid.New(), Status: models.StatusDraft}
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		invoice.AuthorID = &userID
	}

	lines, err := h.applyRequest(&req, invoice)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.invoiceService.Create(ctx, invoice, lines); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetByID(ctx, id)
	if err == services.ErrInvoiceNotFound {
		return common.SendNotFoundError(c, "invoice")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve invoice: "+err.Error())
	}
	return c.JSON(http.StatusOK, invoice)
}

// ListInvoices handles GET /invoices
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := parseInvoiceFilter(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	limit, offset := parsePagination(c)

	invoices, err := h.invoiceService.List(ctx, filter, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list invoices: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"limit":    limit,
		"offset":   offset,
	})
}

func parseInvoiceFilter(c echo.Context) (repositories.InvoiceFilter, error) {
	filter := repositories.InvoiceFilter{Search: c.QueryParam("search")}
	if p := c.QueryParam("project_id"); p != "" {
		projectID, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid project_id")
		}
		filter.ProjectID = &projectID
	}
	if p := c.QueryParam("contact_id"); p != "" {
		contactID, err := common.ValidateUUID(p, "contact_id")
		if err != nil {
			return filter, err
		}
		filter.ContactID = &contactID
	}
	if p := c.QueryParam("status"); p != "" {
		status, ok := models.StatusFromName(p)
		if !ok {
			return filter, fmt.Errorf("unknown status %q", p)
		}
		filter.Status = &status
	}
	return filter, nil
}

func parsePagination(c echo.Context) (int, int) {
	limit := 25
	offset := 0
	if p := c.QueryParam("limit"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			limit = v
		}
	}
	if p := c.QueryParam("offset"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// UpdateInvoice handles PUT /invoices/:id
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.invoiceService.GetByID(ctx, id)
	if err == services.ErrInvoiceNotFound {
		return common.SendNotFoundError(c, "invoice")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve invoice: "+err.Error())
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice := *existing
	lines, err := h.applyRequest(&req, &invoice)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.invoiceService.Update(ctx, &invoice, lines); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, &invoice)
}

// DeleteInvoice handles DELETE /invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.invoiceService.Delete(ctx, id); err != nil {
		if err == services.ErrInvoiceNotFound {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "Failed to delete invoice: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// CopyInvoice handles POST /invoices/:id/copy
func (h *InvoiceHandlers) CopyInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var authorID *uuid.UUID
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		authorID = &userID
	}

	clone, err := h.invoiceService.Copy(ctx, id, authorID)
	if err != nil {
		if err == services.ErrInvoiceNotFound {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, clone)
}

// CreateFromObject handles POST /invoices/from-object
func (h *InvoiceHandlers) CreateFromObject(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ObjectType string `json:"object_type"`
		ObjectID   string `json:"object_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	objectID, err := common.ValidateUUID(req.ObjectID, "object_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var authorID *uuid.UUID
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		authorID = &userID
	}

	invoice, err := h.invoiceService.CopyFromObject(ctx, req.ObjectType, objectID, authorID)
	if err != nil {
		if err == services.ErrInvoiceNotFound || err == services.ErrExpenseNotFound {
			return common.SendNotFoundError(c, req.ObjectType)
		}
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// LinesFromTimeEntries handles POST /invoices/lines/from-time-entries
func (h *InvoiceHandlers) LinesFromTimeEntries(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TimeEntryIDs []string `json:"time_entry_ids"`
		Grouping     int      `json:"grouping"`
		ProjectID    *int64   `json:"project_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	ids := make([]uuid.UUID, 0, len(req.TimeEntryIDs))
	for _, raw := range req.TimeEntryIDs {
		id, err := common.ValidateUUID(raw, "time_entry_ids")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		ids = append(ids, id)
	}

	lines, err := h.invoiceService.LinesFromTimeEntries(ctx, ids, req.Grouping, req.ProjectID)
	if err != nil {
		return common.SendServerError(c, "Failed to build lines: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"lines": lines})
}

// LinesFromIssues handles POST /invoices/lines/from-issues
func (h *InvoiceHandlers) LinesFromIssues(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		IssueIDs  []int64 `json:"issue_ids"`
		Grouping  int     `json:"grouping"`
		ProjectID *int64  `json:"project_id"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.IssueIDs) == 0 {
		return common.SendClientError(c, "issue_ids is required")
	}

	lines, err := h.invoiceService.LinesFromIssues(ctx, req.IssueIDs, req.Grouping, req.ProjectID)
	if err != nil {
		return common.SendServerError(c, "Failed to build lines: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"lines": lines})
}

// ExportInvoices handles GET /invoices/export.csv
func (h *InvoiceHandlers) ExportInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := parseInvoiceFilter(c)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	data, err := h.invoiceService.ExportCSV(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to export invoices: "+err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="invoices.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// ImportInvoices handles POST /invoices/import with a multipart "file" part.
func (h *InvoiceHandlers) ImportInvoices(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "CSV file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendClientError(c, "Failed to open uploaded file")
	}
	defer file.Close()

	var projectID *int64
	if p := c.FormValue("project_id"); p != "" {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return common.SendClientError(c, "invalid project_id")
		}
		projectID = &v
	}

	result, err := h.importService.ImportCSV(ctx, file, projectID)
	if err != nil {
		return common.SendClientError(c, "Failed to import: "+err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// GetInvoicePDF handles GET /invoices/:id/pdf
func (h *InvoiceHandlers) GetInvoicePDF(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetByID(ctx, id)
	if err == services.ErrInvoiceNotFound {
		return common.SendNotFoundError(c, "invoice")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve invoice: "+err.Error())
	}

	return h.renderPDF(c, invoice)
}

// ClientInvoice handles GET /client/invoices/:id, the unauthenticated view
// behind a token link.
func (h *InvoiceHandlers) ClientInvoice(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetForClient(ctx, id, c.QueryParam("token"))
	if err == services.ErrInvalidToken {
		return common.SendUnauthorizedError(c)
	}
	if err == services.ErrInvoiceNotFound {
		return common.SendNotFoundError(c, "invoice")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve invoice: "+err.Error())
	}

	if c.QueryParam("format") == "pdf" {
		return h.renderPDF(c, invoice)
	}
	return c.JSON(http.StatusOK, invoice)
}

// AddComment handles POST /invoices/:id/comments
func (h *InvoiceHandlers) AddComment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	var authorID *uuid.UUID
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		authorID = &userID
	}

	comment, err := h.invoiceService.AddComment(ctx, id, authorID, req.Content)
	if err != nil {
		if err == services.ErrInvoiceNotFound {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /invoices/:id/comments
func (h *InvoiceHandlers) ListComments(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	comments, err := h.invoiceService.ListComments(ctx, id)
	if err != nil {
		return common.SendServerError(c, "Failed to list comments: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"comments": comments})
}

// renderPDF renders the invoice to PDF. Rendering failures degrade to a
// plain-text version of the invoice instead of an error page.
func (h *InvoiceHandlers) renderPDF(c echo.Context, invoice *models.Invoice) error {
	ctx := c.Request().Context()

	var contact *models.Contact
	if invoice.ContactID != nil {
		contact, _ = h.contactRepo.GetByID(ctx, *invoice.ContactID)
	}
	var template *models.InvoiceTemplate
	if h.templateService != nil {
		template, _ = h.templateService.ForInvoice(ctx, invoice)
	}

	data, err := h.generateInvoicePDF(invoice, contact, template)
	if err != nil {
		log.Printf("pdf rendering failed for invoice %s: %v", invoice.ID, err)
		return c.String(http.StatusOK, plainTextInvoice(invoice, contact))
	}

	if h.storageService != nil {
		if err := h.storageService.UploadDocument(ctx, h.cfg.Storage.Bucket, invoice.Filename(), bytes.NewReader(data), int64(len(data))); err != nil {
			log.Printf("failed to archive pdf for invoice %s: %v", invoice.ID, err)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, invoice.Filename()))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

func (h *InvoiceHandlers) generateInvoicePDF(invoice *models.Invoice, contact *models.Contact, template *models.InvoiceTemplate) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)

	pdf.SetXY(marginX, marginY)
	title := "INVOICE"
	if invoice.IsEstimate() {
		title = "ESTIMATE"
	}
	pdf.Cell(0, 10, fmt.Sprintf("%s %s", title, invoice.Number))
	pdf.Ln(15)

	if template != nil && template.Content != nil && *template.Content != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, *template.Content, "", "L", false)
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Date: %s", invoice.InvoiceDate.Format("02-Jan-2006")))
	pdf.Ln(8)
	if invoice.DueDate != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Due Date: %s", invoice.DueDate.Format("02-Jan-2006")))
		pdf.Ln(8)
	}
	if invoice.OrderNumber != nil && *invoice.OrderNumber != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Order Number: %s", *invoice.OrderNumber))
		pdf.Ln(8)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	if contact != nil {
		pdf.Cell(0, 6, contact.Name())
		pdf.Ln(6)
		if contact.Email != nil && *contact.Email != "" {
			pdf.Cell(0, 6, *contact.Email)
			pdf.Ln(6)
		}
	} else {
		pdf.Cell(0, 6, "-")
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)

	headers := []string{"#", "Description", "Qty", "Price", "Total"}
	colWidths := []float64{10, 80, 20, 30, 30}
	if invoice.HasTaxes() {
		headers = []string{"#", "Description", "Qty", "Price", "Tax %", "Total"}
		colWidths = []float64{10, 65, 18, 27, 20, 30}
	}

	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)

	for _, line := range invoice.Lines {
		qty := strconv.FormatFloat(line.Quantity, 'f', -1, 64)
		if line.Units != nil && *line.Units != "" {
			qty += " " + *line.Units
		}
		cells := []string{
			strconv.Itoa(line.Position),
			line.Description,
			qty,
			fmt.Sprintf("%.2f", line.Price),
			fmt.Sprintf("%.2f", line.Total()),
		}
		if invoice.HasTaxes() {
			cells = []string{
				strconv.Itoa(line.Position),
				line.Description,
				qty,
				fmt.Sprintf("%.2f", line.Price),
				fmt.Sprintf("%.2f", line.TaxValue()),
				fmt.Sprintf("%.2f", line.Total()),
			}
		}
		for i, cell := range cells {
			align := "L"
			if i >= 2 {
				align = "R"
			}
			pdf.CellFormat(colWidths[i], 8, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total: %.2f %s", invoice.Amount, invoice.Currency), "", 0, "R", false, 0, "")
	pdf.Ln(8)
	if invoice.Balance > 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Paid: %.2f %s", invoice.Balance, invoice.Currency), "", 0, "R", false, 0, "")
		pdf.Ln(6)
		pdf.CellFormat(0, 6, fmt.Sprintf("Balance Due: %.2f %s", invoice.RemainingBalance(), invoice.Currency), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	if invoice.Description != nil && *invoice.Description != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, *invoice.Description, "", "L", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// plainTextInvoice is the degraded output when PDF rendering fails.
func plainTextInvoice(invoice *models.Invoice, contact *models.Contact) string {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "Invoice %s\n", invoice.Number)
	fmt.Fprintf(buf, "Date: %s\n", invoice.InvoiceDate.Format("2006-01-02"))
	if contact != nil {
		fmt.Fprintf(buf, "Bill to: %s\n", contact.Name())
	}
	fmt.Fprintln(buf)
	for _, line := range invoice.Lines {
		fmt.Fprintf(buf, "%d. %s x%s @ %.2f = %.2f\n", line.Position, line.Description,
			strconv.FormatFloat(line.Quantity, 'f', -1, 64), line.Price, line.Total())
	}
	fmt.Fprintf(buf, "\nTotal: %.2f %s\n", invoice.Amount, invoice.Currency)
	return buf.String()
}
