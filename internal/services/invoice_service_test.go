package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/config"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func testBillingConfig() *config.BillingConfig {
	cfg := &config.BillingConfig{}
	cfg.Billing.TaxExclusive = true
	cfg.Billing.DefaultCurrency = "USD"
	cfg.Billing.SecretToken = "s3cret"
	cfg.Numbering.NumberFormat = "INV-{{id}}"
	return cfg
}

type InvoiceServiceTestSuite struct {
	suite.Suite
	invoiceRepo   *MockInvoiceRepository
	lineRepo      *MockLineRepository
	paymentRepo   *MockPaymentRepository
	commentRepo   *MockCommentRepository
	contactRepo   *MockContactRepository
	timeEntryRepo *MockTimeEntryRepository
	rateRepo      *MockRateRepository
	expenseRepo   *MockExpenseRepository
	service       InvoiceService
	ctx           context.Context
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.invoiceRepo = &MockInvoiceRepository{}
	suite.lineRepo = &MockLineRepository{}
	suite.paymentRepo = &MockPaymentRepository{}
	suite.commentRepo = &MockCommentRepository{}
	suite.contactRepo = &MockContactRepository{}
	suite.timeEntryRepo = &MockTimeEntryRepository{}
	suite.rateRepo = &MockRateRepository{}
	suite.expenseRepo = &MockExpenseRepository{}
	suite.service = NewInvoiceService(
		suite.invoiceRepo, suite.lineRepo, suite.paymentRepo, suite.commentRepo,
		suite.contactRepo, suite.timeEntryRepo, suite.rateRepo, suite.expenseRepo,
		fakeCache{}, testBillingConfig(),
	)
	suite.ctx = context.Background()

	suite.invoiceRepo.Test(suite.T())
}

func (suite *InvoiceServiceTestSuite) TearDownTest() {
	suite.invoiceRepo.AssertExpectations(suite.T())
	suite.lineRepo.AssertExpectations(suite.T())
	suite.paymentRepo.AssertExpectations(suite.T())
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (suite *InvoiceServiceTestSuite) TestCreate_GeneratesNumberAndAmount() {
	suite.invoiceRepo.On("NextSequenceID", suite.ctx).Return(int64(7), nil)
	suite.invoiceRepo.On("NumberExists", suite.ctx, "INV-07", mock.AnythingOfType("uuid.UUID")).Return(false, nil)
	suite.invoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)
	suite.lineRepo.On("ReplaceForInvoice", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.Anything).Return(nil)

	tax := 10.0
	invoice := &models.Invoice{Status: models.StatusDraft}
	lines := []*models.InvoiceLine{
		{Description: "Consulting", Quantity: 2, Price: 100},
		{Description: "Hosting", Quantity: 1, Price: 50, Tax: &tax},
	}

	err := suite.service.Create(suite.ctx, invoice, lines)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-07", invoice.Number)
	assert.Equal(suite.T(), int64(7), invoice.SequenceID)
	assert.Equal(suite.T(), "USD", invoice.Currency)
	// 200 + 50 subtotal plus 5 tax on the hosting line
	assert.Equal(suite.T(), 255.0, invoice.Amount)
	assert.Equal(suite.T(), 0.0, invoice.Balance)
	assert.Equal(suite.T(), models.StatusDraft, invoice.Status)
	assert.Equal(suite.T(), 1, lines[0].Position)
	assert.Equal(suite.T(), 2, lines[1].Position)
}

func (suite *InvoiceServiceTestSuite) TestCreate_RejectsDuplicateNumber() {
	suite.invoiceRepo.On("NextSequenceID", suite.ctx).Return(int64(3), nil)
	suite.invoiceRepo.On("NumberExists", suite.ctx, "INV-2024-001", mock.AnythingOfType("uuid.UUID")).Return(true, nil)

	invoice := &models.Invoice{
		Number:      "INV-2024-001",
		Currency:    "EUR",
		InvoiceDate: time.Now(),
		Status:      models.StatusDraft,
	}

	err := suite.service.Create(suite.ctx, invoice, nil)
	assert.Error(suite.T(), err)

	verr, ok := err.(*common.ValidationError)
	assert.True(suite.T(), ok)
	assert.True(suite.T(), strings.Contains(verr.Error(), "number"))
}

func (suite *InvoiceServiceTestSuite) TestCreate_RejectsInvalidDiscount() {
	suite.invoiceRepo.On("NextSequenceID", suite.ctx).Return(int64(1), nil)
	suite.invoiceRepo.On("NumberExists", suite.ctx, mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(false, nil)

	discount := 140.0
	invoice := &models.Invoice{
		Number:      "INV-01",
		Currency:    "USD",
		InvoiceDate: time.Now(),
		Status:      models.StatusDraft,
		Discount:    &discount,
	}

	err := suite.service.Create(suite.ctx, invoice, nil)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "discount")
}

func (suite *InvoiceServiceTestSuite) TestGetByID_LoadsRelations() {
	id := uuid.New()
	stored := &models.Invoice{ID: id, Number: "INV-01", Currency: "USD"}
	lines := []*models.InvoiceLine{{ID: uuid.New(), InvoiceID: id, Description: "Work", Quantity: 1, Price: 10}}
	payments := []*models.InvoicePayment{{ID: uuid.New(), InvoiceID: id, Amount: 10}}

	suite.invoiceRepo.On("GetByID", suite.ctx, id).Return(stored, nil)
	suite.lineRepo.On("ListByInvoice", suite.ctx, id).Return(lines, nil)
	suite.paymentRepo.On("ListByInvoice", suite.ctx, id).Return(payments, nil)

	invoice, err := suite.service.GetByID(suite.ctx, id)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), invoice.Lines, 1)
	assert.Len(suite.T(), invoice.Payments, 1)
}

func (suite *InvoiceServiceTestSuite) TestGetByID_NotFound() {
	id := uuid.New()
	suite.invoiceRepo.On("GetByID", suite.ctx, id).Return(nil, nil)

	_, err := suite.service.GetByID(suite.ctx, id)
	assert.Equal(suite.T(), ErrInvoiceNotFound, err)
}

func (suite *InvoiceServiceTestSuite) TestCopy_ResetsNumberAndPayments() {
	sourceID := uuid.New()
	paid := time.Now()
	source := &models.Invoice{
		ID:          sourceID,
		Number:      "INV-05",
		SequenceID:  5,
		Currency:    "USD",
		InvoiceDate: time.Now().AddDate(0, -1, 0),
		Status:      models.StatusPaid,
		Amount:      100,
		Balance:     100,
		PaidDate:    &paid,
	}
	lines := []*models.InvoiceLine{{ID: uuid.New(), InvoiceID: sourceID, Description: "Work", Quantity: 1, Price: 100}}
	payments := []*models.InvoicePayment{{ID: uuid.New(), InvoiceID: sourceID, Amount: 100, PaymentDate: paid}}

	suite.invoiceRepo.On("GetByID", suite.ctx, sourceID).Return(source, nil)
	suite.lineRepo.On("ListByInvoice", suite.ctx, sourceID).Return(lines, nil)
	suite.paymentRepo.On("ListByInvoice", suite.ctx, sourceID).Return(payments, nil)

	suite.invoiceRepo.On("NextSequenceID", suite.ctx).Return(int64(6), nil)
	suite.invoiceRepo.On("NumberExists", suite.ctx, "INV-06", mock.AnythingOfType("uuid.UUID")).Return(false, nil)
	suite.invoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)
	suite.lineRepo.On("ReplaceForInvoice", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.Anything).Return(nil)

	clone, err := suite.service.Copy(suite.ctx, sourceID, nil)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), sourceID, clone.ID)
	assert.Equal(suite.T(), "INV-06", clone.Number)
	assert.Equal(suite.T(), models.StatusDraft, clone.Status)
	assert.Equal(suite.T(), 0.0, clone.Balance)
	assert.Nil(suite.T(), clone.PaidDate)
	assert.Empty(suite.T(), clone.Payments)
	assert.Len(suite.T(), clone.Lines, 1)
	assert.NotEqual(suite.T(), lines[0].ID, clone.Lines[0].ID)
}

func (suite *InvoiceServiceTestSuite) TestClientToken_IsStableAndVerified() {
	id := uuid.New()
	stored := &models.Invoice{ID: id, Number: "INV-01", Currency: "USD"}

	suite.invoiceRepo.On("GetByID", suite.ctx, id).Return(stored, nil)
	suite.lineRepo.On("ListByInvoice", suite.ctx, id).Return([]*models.InvoiceLine{}, nil)
	suite.paymentRepo.On("ListByInvoice", suite.ctx, id).Return([]*models.InvoicePayment{}, nil)

	token := suite.service.ClientToken(stored)
	assert.Len(suite.T(), token, 32)
	assert.Equal(suite.T(), token, suite.service.ClientToken(stored))

	invoice, err := suite.service.GetForClient(suite.ctx, id, token)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, invoice.ID)
}

func (suite *InvoiceServiceTestSuite) TestGetForClient_RejectsBadToken() {
	id := uuid.New()
	stored := &models.Invoice{ID: id, Number: "INV-01", Currency: "USD"}

	suite.invoiceRepo.On("GetByID", suite.ctx, id).Return(stored, nil)
	suite.lineRepo.On("ListByInvoice", suite.ctx, id).Return([]*models.InvoiceLine{}, nil)
	suite.paymentRepo.On("ListByInvoice", suite.ctx, id).Return([]*models.InvoicePayment{}, nil)

	_, err := suite.service.GetForClient(suite.ctx, id, "wrong")
	assert.Equal(suite.T(), ErrInvalidToken, err)
}

func (suite *InvoiceServiceTestSuite) TestExportCSV_WritesHeaderAndRows() {
	contactID := uuid.New()
	company := "Acme Inc"
	invoices := []*models.Invoice{
		{
			ID:          uuid.New(),
			Number:      "INV-01",
			InvoiceDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			ContactID:   &contactID,
			Currency:    "USD",
			Amount:      150.5,
			Status:      models.StatusSent,
		},
	}

	suite.invoiceRepo.On("List", suite.ctx, mock.Anything, 10000, 0).Return(invoices, nil)
	suite.contactRepo.On("GetByID", suite.ctx, contactID).Return(&models.Contact{ID: contactID, Company: &company}, nil)

	data, err := suite.service.ExportCSV(suite.ctx, repositories.InvoiceFilter{})
	assert.NoError(suite.T(), err)

	out := string(data)
	csvLines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(suite.T(), csvLines, 2)
	assert.Contains(suite.T(), csvLines[0], "number")
	assert.Contains(suite.T(), csvLines[1], "INV-01")
	assert.Contains(suite.T(), csvLines[1], "Acme Inc")
	assert.Contains(suite.T(), csvLines[1], "150.50")
	assert.Contains(suite.T(), csvLines[1], "sent")
}

func (suite *InvoiceServiceTestSuite) TestLinesFromTimeEntries_GroupsByActivity() {
	entryIDs := []uuid.UUID{uuid.New(), uuid.New()}
	entries := []*models.TimeEntry{
		{ID: entryIDs[0], ActivityID: 1, ActivityName: "Development", Hours: 2, UserID: uuid.New()},
		{ID: entryIDs[1], ActivityID: 1, ActivityName: "Development", Hours: 3, UserID: uuid.New()},
	}

	suite.timeEntryRepo.On("ListByIDs", suite.ctx, entryIDs).Return(entries, nil)

	lines, err := suite.service.LinesFromTimeEntries(suite.ctx, entryIDs, 0, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), lines, 1)
	assert.Contains(suite.T(), lines[0].Description, "Development")
	assert.Equal(suite.T(), 5.0, lines[0].Quantity)
}

func (suite *InvoiceServiceTestSuite) TestLinesFromIssues_SumsLoggedTime() {
	issueIDs := []int64{101, 102}
	subject := "Fix login"
	entries := []*models.TimeEntry{
		{ID: uuid.New(), IssueID: &issueIDs[0], IssueSubject: &subject, ActivityID: 1, ActivityName: "Development", Hours: 4, UserID: uuid.New()},
		{ID: uuid.New(), IssueID: &issueIDs[1], ActivityID: 1, ActivityName: "Development", Hours: 1.5, UserID: uuid.New()},
	}

	suite.timeEntryRepo.On("ListByIssueIDs", suite.ctx, issueIDs).Return(entries, nil)

	lines, err := suite.service.LinesFromIssues(suite.ctx, issueIDs, 0, nil)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), lines, 1)
	assert.Contains(suite.T(), lines[0].Description, "Development")
	assert.Equal(suite.T(), 5.5, lines[0].Quantity)
}

func (suite *InvoiceServiceTestSuite) TestCopyFromObject_InvoiceFoldsLineDiscount() {
	sourceID := uuid.New()
	contactID := uuid.New()
	orderNumber := "PO-9"
	discount := 25.0
	source := &models.Invoice{
		ID:          sourceID,
		Number:      "INV-05",
		Currency:    "EUR",
		ContactID:   &contactID,
		OrderNumber: &orderNumber,
		InvoiceDate: time.Now(),
		Status:      models.StatusSent,
	}
	lines := []*models.InvoiceLine{
		{ID: uuid.New(), InvoiceID: sourceID, Description: "Licenses", Quantity: 2, Price: 200, Discount: &discount},
	}

	suite.invoiceRepo.On("GetByID", suite.ctx, sourceID).Return(source, nil)
	suite.lineRepo.On("ListByInvoice", suite.ctx, sourceID).Return(lines, nil)
	suite.paymentRepo.On("ListByInvoice", suite.ctx, sourceID).Return([]*models.InvoicePayment{}, nil)

	suite.invoiceRepo.On("NextSequenceID", suite.ctx).Return(int64(6), nil)
	suite.invoiceRepo.On("NumberExists", suite.ctx, "INV-06", mock.AnythingOfType("uuid.UUID")).Return(false, nil)
	suite.invoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)
	suite.lineRepo.On("ReplaceForInvoice", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.Anything).Return(nil)

	invoice, err := suite.service.CopyFromObject(suite.ctx, "invoice", sourceID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.StatusDraft, invoice.Status)
	assert.Equal(suite.T(), "INV-06", invoice.Number)
	assert.Equal(suite.T(), "EUR", invoice.Currency)
	assert.Equal(suite.T(), contactID, *invoice.ContactID)
	assert.Equal(suite.T(), orderNumber, *invoice.OrderNumber)
	assert.Len(suite.T(), invoice.Lines, 1)
	assert.Equal(suite.T(), 150.0, invoice.Lines[0].Price)
	assert.Equal(suite.T(), discount, *invoice.Lines[0].Discount)
	assert.Equal(suite.T(), 300.0, invoice.Amount)
}

func (suite *InvoiceServiceTestSuite) TestCopyFromObject_ExpenseBecomesSingleLine() {
	expenseID := uuid.New()
	contactID := uuid.New()
	projectID := int64(3)
	description := "Conference travel"
	expense := &models.Expense{
		ID:          expenseID,
		ProjectID:   &projectID,
		ContactID:   &contactID,
		Currency:    "USD",
		Price:       420.5,
		Description: &description,
		Status:      models.ExpenseNew,
		IsBillable:  true,
	}

	suite.expenseRepo.On("GetByID", suite.ctx, expenseID).Return(expense, nil)
	suite.invoiceRepo.On("NextSequenceID", suite.ctx).Return(int64(8), nil)
	suite.invoiceRepo.On("NumberExists", suite.ctx, "INV-08", mock.AnythingOfType("uuid.UUID")).Return(false, nil)
	suite.invoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)
	suite.lineRepo.On("ReplaceForInvoice", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.Anything).Return(nil)

	invoice, err := suite.service.CopyFromObject(suite.ctx, "expense", expenseID, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), projectID, *invoice.ProjectID)
	assert.Equal(suite.T(), contactID, *invoice.ContactID)
	assert.Len(suite.T(), invoice.Lines, 1)
	assert.Equal(suite.T(), description, invoice.Lines[0].Description)
	assert.Equal(suite.T(), 1.0, invoice.Lines[0].Quantity)
	assert.Equal(suite.T(), 420.5, invoice.Lines[0].Price)
	assert.Equal(suite.T(), 420.5, invoice.Amount)
}

func (suite *InvoiceServiceTestSuite) TestCopyFromObject_RejectsUnknownType() {
	_, err := suite.service.CopyFromObject(suite.ctx, "order", uuid.New(), nil)

	var verr *common.ValidationError
	assert.ErrorAs(suite.T(), err, &verr)
	assert.Contains(suite.T(), verr.Error(), "object_type")
}

func (suite *InvoiceServiceTestSuite) TestCreate_PrefillsSubjectFromFormat() {
	cfg := testBillingConfig()
	cfg.Numbering.SubjectFormat = "Invoice no. {{id}}"
	service := NewInvoiceService(
		suite.invoiceRepo, suite.lineRepo, suite.paymentRepo, suite.commentRepo,
		suite.contactRepo, suite.timeEntryRepo, suite.rateRepo, suite.expenseRepo,
		fakeCache{}, cfg,
	)

	suite.invoiceRepo.On("NextSequenceID", suite.ctx).Return(int64(7), nil)
	suite.invoiceRepo.On("NumberExists", suite.ctx, "INV-07", mock.AnythingOfType("uuid.UUID")).Return(false, nil)
	suite.invoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Invoice")).Return(nil)
	suite.lineRepo.On("ReplaceForInvoice", suite.ctx, mock.AnythingOfType("uuid.UUID"), mock.Anything).Return(nil)

	invoice := &models.Invoice{Status: models.StatusDraft}
	lines := []*models.InvoiceLine{{Description: "Work", Quantity: 1, Price: 10}}

	err := service.Create(suite.ctx, invoice, lines)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Invoice no. 07", *invoice.Subject)

	// An explicit subject wins over the configured format.
	preset := "Reissued"
	second := &models.Invoice{Status: models.StatusDraft, Subject: &preset}
	err = service.Create(suite.ctx, second, []*models.InvoiceLine{{Description: "Work", Quantity: 1, Price: 10}})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Reissued", *second.Subject)
}
