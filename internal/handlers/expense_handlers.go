package handlers

import (
	"net/http"
	"strconv"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"
	"invoicehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ExpenseHandlers handles HTTP requests for expenses
type ExpenseHandlers struct {
	expenseService services.ExpenseService
}

func NewExpenseHandlers(expenseService services.ExpenseService) *ExpenseHandlers {
	return &ExpenseHandlers{expenseService: expenseService}
}

type expenseRequest struct {
	ProjectID   *int64   `json:"project_id"`
	ContactID   *string  `json:"contact_id"`
	ExpenseDate string   `json:"expense_date"`
	Price       float64  `json:"price"`
	Tax         *float64 `json:"tax"`
	Currency    string   `json:"currency"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	IsBillable  bool     `json:"is_billable"`
}

func (h *ExpenseHandlers) applyRequest(req *expenseRequest, expense *models.Expense) error {
	expense.ProjectID = req.ProjectID
	expense.Price = req.Price
	expense.Tax = req.Tax
	expense.Currency = req.Currency
	expense.Description = req.Description
	expense.IsBillable = req.IsBillable

	var err error
	if expense.ContactID, err = parseOptionalUUID(req.ContactID, "contact_id"); err != nil {
		return err
	}
	if req.ExpenseDate != "" {
		date, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return common.NewValidationError("expense_date", "expected YYYY-MM-DD")
		}
		expense.ExpenseDate = date
	}
	if req.Status != nil {
		for code, name := range models.ExpenseStatusNames {
			if name == *req.Status {
				expense.Status = code
				return nil
			}
		}
		return common.NewValidationError("status", "unknown status "+*req.Status)
	}
	return nil
}

// CreateExpense handles POST /expenses
func (h *ExpenseHandlers) CreateExpense(c echo.Context) error {
	ctx := c.Request().Context()

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	expense := &models.Expense{ID: uuid.New()}
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		expense.AuthorID = &userID
	}
	if err := h.applyRequest(&req, expense); err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.expenseService.Create(ctx, expense); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, expense)
}

// GetExpense handles GET /expenses/:id
func (h *ExpenseHandlers) GetExpense(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	expense, err := h.expenseService.GetByID(ctx, id)
	if err == services.ErrExpenseNotFound {
		return common.SendNotFoundError(c, "expense")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve expense: "+err.Error())
	}
	return c.JSON(http.StatusOK, expense)
}

// ListExpenses handles GET /expenses
func (h *ExpenseHandlers) ListExpenses(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repositories.ExpenseFilter{}
	if p := c.QueryParam("project_id"); p != "" {
		projectID, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return common.SendClientError(c, "invalid project_id")
		}
		filter.ProjectID = &projectID
	}
	if p := c.QueryParam("contact_id"); p != "" {
		contactID, err := common.ValidateUUID(p, "contact_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.ContactID = &contactID
	}
	if p := c.QueryParam("billable"); p != "" {
		billable := p == "true"
		filter.IsBillable = &billable
	}
	limit, offset := parsePagination(c)

	expenses, err := h.expenseService.List(ctx, filter, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list expenses: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"limit":    limit,
		"offset":   offset,
	})
}

// UpdateExpense handles PUT /expenses/:id
func (h *ExpenseHandlers) UpdateExpense(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.expenseService.GetByID(ctx, id)
	if err == services.ErrExpenseNotFound {
		return common.SendNotFoundError(c, "expense")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve expense: "+err.Error())
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	expense := *existing
	if err := h.applyRequest(&req, &expense); err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.expenseService.Update(ctx, &expense); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, &expense)
}

// DeleteExpense handles DELETE /expenses/:id
func (h *ExpenseHandlers) DeleteExpense(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.expenseService.Delete(ctx, id); err != nil {
		if err == services.ErrExpenseNotFound {
			return common.SendNotFoundError(c, "expense")
		}
		return common.SendServerError(c, "Failed to delete expense: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// AttachExpenses handles POST /invoices/:id/expenses
func (h *ExpenseHandlers) AttachExpenses(c echo.Context) error {
	ctx := c.Request().Context()

	invoiceID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		ExpenseIDs []string `json:"expense_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	ids := make([]uuid.UUID, 0, len(req.ExpenseIDs))
	for _, raw := range req.ExpenseIDs {
		id, err := common.ValidateUUID(raw, "expense_ids")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		ids = append(ids, id)
	}

	if err := h.expenseService.AttachToInvoice(ctx, invoiceID, ids); err != nil {
		if err == services.ErrInvoiceNotFound || err == services.ErrExpenseNotFound {
			return common.SendNotFoundError(c, "resource")
		}
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
