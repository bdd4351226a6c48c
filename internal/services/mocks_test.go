package services

import (
	"context"
	"time"

	"invoicehub/internal/billing"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter repositories.InvoiceFilter, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListRecurringProfiles(ctx context.Context) ([]*models.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Invoice, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountRecurringInstances(ctx context.Context, profileID uuid.UUID) (int, error) {
	args := m.Called(ctx, profileID)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) LastRecurringInstanceDate(ctx context.Context, profileID uuid.UUID) (*time.Time, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockInvoiceRepository) NumberExists(ctx context.Context, number string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, number, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) SumByPeriod(ctx context.Context, projectID *int64, contactID *uuid.UUID, from, to time.Time) ([]repositories.CurrencySum, error) {
	args := m.Called(ctx, projectID, contactID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.CurrencySum), args.Error(1)
}

func (m *MockInvoiceRepository) SumByStatus(ctx context.Context, status int, projectID *int64, contactID *uuid.UUID) ([]repositories.CurrencySum, int, error) {
	args := m.Called(ctx, status, projectID, contactID)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]repositories.CurrencySum), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepository) NextSequenceID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountDaily(ctx context.Context, projectID *int64, day time.Time) (int, error) {
	args := m.Called(ctx, projectID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountMonthly(ctx context.Context, projectID *int64, month time.Time) (int, error) {
	args := m.Called(ctx, projectID, month)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountYearly(ctx context.Context, projectID *int64, year time.Time) (int, error) {
	args := m.Called(ctx, projectID, year)
	return args.Int(0), args.Error(1)
}

type MockLineRepository struct {
	mock.Mock
}

func (m *MockLineRepository) ReplaceForInvoice(ctx context.Context, invoiceID uuid.UUID, lines []*models.InvoiceLine) error {
	args := m.Called(ctx, invoiceID, lines)
	return args.Error(0)
}

func (m *MockLineRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceLine, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoiceLine), args.Error(1)
}

func (m *MockLineRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.InvoicePayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InvoicePayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoicePayment), args.Error(1)
}

func (m *MockPaymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoicePayment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoicePayment), args.Error(1)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.InvoiceComment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceComment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoiceComment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByEmailPrefix(ctx context.Context, prefix string) (*models.Contact, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contact), args.Error(1)
}

func (m *MockContactRepository) List(ctx context.Context, limit, offset int) ([]*models.Contact, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contact), args.Error(1)
}

type MockTimeEntryRepository struct {
	mock.Mock
}

func (m *MockTimeEntryRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.TimeEntry, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) ListByIssueIDs(ctx context.Context, issueIDs []int64) ([]*models.TimeEntry, error) {
	args := m.Called(ctx, issueIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TimeEntry), args.Error(1)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) List(ctx context.Context, filter repositories.ExpenseFilter, limit, offset int) ([]*models.Expense, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Expense), args.Error(1)
}

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) BillRate(ctx context.Context, userID uuid.UUID, projectID *int64) float64 {
	args := m.Called(ctx, userID, projectID)
	return args.Get(0).(float64)
}

// MockInvoiceService mocks the invoice service for the services that build on
// top of it.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, invoice *models.Invoice, lines []*models.InvoiceLine) error {
	args := m.Called(ctx, invoice, lines)
	return args.Error(0)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, invoice *models.Invoice, lines []*models.InvoiceLine) error {
	args := m.Called(ctx, invoice, lines)
	return args.Error(0)
}

func (m *MockInvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceService) List(ctx context.Context, filter repositories.InvoiceFilter, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Copy(ctx context.Context, sourceID uuid.UUID, authorID *uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, sourceID, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) CopyFromObject(ctx context.Context, objectType string, objectID uuid.UUID, authorID *uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, objectType, objectID, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) LinesFromTimeEntries(ctx context.Context, timeEntryIDs []uuid.UUID, grouping int, projectID *int64) ([]*models.InvoiceLine, error) {
	args := m.Called(ctx, timeEntryIDs, grouping, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoiceLine), args.Error(1)
}

func (m *MockInvoiceService) LinesFromIssues(ctx context.Context, issueIDs []int64, grouping int, projectID *int64) ([]*models.InvoiceLine, error) {
	args := m.Called(ctx, issueIDs, grouping, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoiceLine), args.Error(1)
}

func (m *MockInvoiceService) GenerateNumber(ctx context.Context, project *billing.ProjectRef) (string, error) {
	args := m.Called(ctx, project)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceService) ClientToken(invoice *models.Invoice) string {
	args := m.Called(invoice)
	return args.String(0)
}

func (m *MockInvoiceService) GetForClient(ctx context.Context, id uuid.UUID, token string) (*models.Invoice, error) {
	args := m.Called(ctx, id, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ExportCSV(ctx context.Context, filter repositories.InvoiceFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockInvoiceService) AddComment(ctx context.Context, invoiceID uuid.UUID, authorID *uuid.UUID, content string) (*models.InvoiceComment, error) {
	args := m.Called(ctx, invoiceID, authorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceComment), args.Error(1)
}

func (m *MockInvoiceService) ListComments(ctx context.Context, invoiceID uuid.UUID) ([]*models.InvoiceComment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InvoiceComment), args.Error(1)
}

// fakeCache is a no-op cache for tests that exercise repository paths.
type fakeCache struct{}

func (fakeCache) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	return nil, nil
}

func (fakeCache) SetInvoice(ctx context.Context, invoice *models.Invoice, ttl time.Duration) error {
	return nil
}

func (fakeCache) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error { return nil }

func (fakeCache) GetStatistics(ctx context.Context, key string) (map[string]interface{}, error) {
	return nil, nil
}

func (fakeCache) SetStatistics(ctx context.Context, key string, stats map[string]interface{}, ttl time.Duration) error {
	return nil
}

func (fakeCache) InvalidateStatistics(ctx context.Context) error { return nil }

func (fakeCache) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}

func (fakeCache) GetString(ctx context.Context, key string) (string, error) { return "", nil }

func (fakeCache) Delete(ctx context.Context, key string) error { return nil }
