package handlers

import (
	"net/http"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PaymentHandlers handles HTTP requests for invoice payments
type PaymentHandlers struct {
	paymentService services.PaymentService
}

func NewPaymentHandlers(paymentService services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{paymentService: paymentService}
}

// CreatePayment handles POST /invoices/:id/payments
func (h *PaymentHandlers) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Amount      float64 `json:"amount"`
		PaymentDate string  `json:"payment_date"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	payment := &models.InvoicePayment{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		payment.AuthorID = &userID
	}
	if req.PaymentDate != "" {
		date, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return common.SendValidationError(c, "payment_date", "expected YYYY-MM-DD")
		}
		payment.PaymentDate = date
	}

	if err := h.paymentService.Create(ctx, payment); err != nil {
		if err == services.ErrInvoiceNotFound {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, payment)
}

// ListPayments handles GET /invoices/:id/payments
func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	ctx := c.Request().Context()

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	payments, err := h.paymentService.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return common.SendServerError(c, "Failed to list payments: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"payments": payments})
}

// DeletePayment handles DELETE /payments/:id
func (h *PaymentHandlers) DeletePayment(c echo.Context) error {
	ctx := c.Request().Context()

	paymentID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.paymentService.Delete(ctx, paymentID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
