package services

import (
	"context"
	"errors"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
)

// ErrExpenseNotFound is returned when an expense lookup misses.
var ErrExpenseNotFound = errors.New("expense not found")

type ExpenseService interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter repositories.ExpenseFilter, limit, offset int) ([]*models.Expense, error)

	// AttachToInvoice appends billable expenses to an invoice as lines and
	// marks them billed.
	AttachToInvoice(ctx context.Context, invoiceID uuid.UUID, expenseIDs []uuid.UUID) error
}

type expenseService struct {
	expenseRepo    repositories.ExpenseRepository
	invoiceService InvoiceService
}

func NewExpenseService(expenseRepo repositories.ExpenseRepository, invoiceService InvoiceService) ExpenseService {
	return &expenseService{
		expenseRepo:    expenseRepo,
		invoiceService: invoiceService,
	}
}

func (s *expenseService) validate(expense *models.Expense) error {
	verr := &common.ValidationError{}
	if expense.Price == 0 {
		verr.Add("price", "price is required")
	}
	if expense.Currency == "" {
		verr.Add("currency", "currency is required")
	}
	if err := common.ValidatePercent(expense.Tax, "tax"); err != nil {
		verr.Add("tax", "tax must be between 0 and 100")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *expenseService) Create(ctx context.Context, expense *models.Expense) error {
	if err := s.validate(expense); err != nil {
		return err
	}
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = time.Now()
	}
	if expense.Status == 0 {
		expense.Status = models.ExpenseDraft
	}
	return s.expenseRepo.Create(ctx, expense)
}

func (s *expenseService) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

func (s *expenseService) Update(ctx context.Context, expense *models.Expense) error {
	if err := s.validate(expense); err != nil {
		return err
	}
	existing, err := s.expenseRepo.GetByID(ctx, expense.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrExpenseNotFound
	}
	return s.expenseRepo.Update(ctx, expense)
}

func (s *expenseService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrExpenseNotFound
	}
	return s.expenseRepo.Delete(ctx, id)
}

func (s *expenseService) List(ctx context.Context, filter repositories.ExpenseFilter, limit, offset int) ([]*models.Expense, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.expenseRepo.List(ctx, filter, limit, offset)
}

func (s *expenseService) AttachToInvoice(ctx context.Context, invoiceID uuid.UUID, expenseIDs []uuid.UUID) error {
	invoice, err := s.invoiceService.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	lines := invoice.Lines
	billed := make([]*models.Expense, 0, len(expenseIDs))
	for _, id := range expenseIDs {
		expense, err := s.expenseRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if expense == nil {
			return ErrExpenseNotFound
		}
		if !expense.IsBillable || expense.Status == models.ExpenseBilled {
			continue
		}
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
		billed = append(billed, expense)
	}
	if len(billed) == 0 {
		return nil
	}

	if err := s.invoiceService.Update(ctx, invoice, lines); err != nil {
		return err
	}
	for _, expense := range billed {
		expense.Status = models.ExpenseBilled
		if err := s.expenseRepo.Update(ctx, expense); err != nil {
			return err
		}
	}
	return nil
}
