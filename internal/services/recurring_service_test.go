package services

import (
	"context"
	"testing"
	"time"

	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RecurringServiceTestSuite struct {
	suite.Suite
	invoiceRepo    *MockInvoiceRepository
	invoiceService *MockInvoiceService
	service        RecurringService
	ctx            context.Context
}

func (suite *RecurringServiceTestSuite) SetupTest() {
	suite.invoiceRepo = &MockInvoiceRepository{}
	suite.invoiceService = &MockInvoiceService{}
	suite.service = NewRecurringService(suite.invoiceRepo, suite.invoiceService)
	suite.ctx = context.Background()

	suite.invoiceRepo.Test(suite.T())
	suite.invoiceService.Test(suite.T())
}

func (suite *RecurringServiceTestSuite) TearDownTest() {
	suite.invoiceRepo.AssertExpectations(suite.T())
	suite.invoiceService.AssertExpectations(suite.T())
}

func TestRecurringServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecurringServiceTestSuite))
}

func recurringProfile(period string, occurrences, action int, invoiceDate time.Time) *models.Invoice {
	return &models.Invoice{
		ID:                   uuid.New(),
		Number:               "REC-01",
		Currency:             "USD",
		InvoiceDate:          invoiceDate,
		Status:               models.StatusSent,
		IsRecurring:          true,
		RecurringPeriod:      &period,
		RecurringOccurrences: occurrences,
		RecurringAction:      action,
	}
}

func (suite *RecurringServiceTestSuite) TestProcessProfiles_GeneratesDueInstance() {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	profile := recurringProfile("1month", 12, models.RecurringActionCreateDraft, now.AddDate(0, -2, 0))

	suite.invoiceRepo.On("ListRecurringProfiles", suite.ctx).Return([]*models.Invoice{profile}, nil)
	suite.invoiceRepo.On("CountRecurringInstances", suite.ctx, profile.ID).Return(2, nil)
	suite.invoiceRepo.On("LastRecurringInstanceDate", suite.ctx, profile.ID).Return(nil, nil)

	instance := &models.Invoice{ID: uuid.New(), Number: "INV-10", Status: models.StatusDraft}
	suite.invoiceService.On("Copy", suite.ctx, profile.ID, (*uuid.UUID)(nil)).Return(instance, nil)

	var updated *models.Invoice
	suite.invoiceService.On("Update", suite.ctx, mock.AnythingOfType("*models.Invoice"), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*models.Invoice)
	})

	created, err := suite.service.ProcessProfiles(suite.ctx, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)
	assert.Equal(suite.T(), models.StatusDraft, updated.Status)
	assert.Equal(suite.T(), profile.ID, *updated.RecurringProfileID)
}

func (suite *RecurringServiceTestSuite) TestProcessProfiles_SendActionMarksSent() {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	profile := recurringProfile("1week", 0, models.RecurringActionSend, now.AddDate(0, 0, -10))

	suite.invoiceRepo.On("ListRecurringProfiles", suite.ctx).Return([]*models.Invoice{profile}, nil)
	suite.invoiceRepo.On("LastRecurringInstanceDate", suite.ctx, profile.ID).Return(nil, nil)

	instance := &models.Invoice{ID: uuid.New(), Number: "INV-11", Status: models.StatusDraft}
	suite.invoiceService.On("Copy", suite.ctx, profile.ID, (*uuid.UUID)(nil)).Return(instance, nil)

	var updated *models.Invoice
	suite.invoiceService.On("Update", suite.ctx, mock.AnythingOfType("*models.Invoice"), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*models.Invoice)
	})

	created, err := suite.service.ProcessProfiles(suite.ctx, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)
	assert.Equal(suite.T(), models.StatusSent, updated.Status)
}

func (suite *RecurringServiceTestSuite) TestProcessProfiles_SkipsWhenIntervalNotElapsed() {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	profile := recurringProfile("1month", 0, models.RecurringActionCreateDraft, now.AddDate(0, 0, -5))
	lastRun := now.AddDate(0, 0, -5)

	suite.invoiceRepo.On("ListRecurringProfiles", suite.ctx).Return([]*models.Invoice{profile}, nil)
	suite.invoiceRepo.On("LastRecurringInstanceDate", suite.ctx, profile.ID).Return(&lastRun, nil)

	created, err := suite.service.ProcessProfiles(suite.ctx, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}

func (suite *RecurringServiceTestSuite) TestProcessProfiles_SkipsWhenOccurrenceCapReached() {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	profile := recurringProfile("1month", 3, models.RecurringActionCreateDraft, now.AddDate(0, -6, 0))

	suite.invoiceRepo.On("ListRecurringProfiles", suite.ctx).Return([]*models.Invoice{profile}, nil)
	suite.invoiceRepo.On("CountRecurringInstances", suite.ctx, profile.ID).Return(3, nil)

	created, err := suite.service.ProcessProfiles(suite.ctx, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}

func (suite *RecurringServiceTestSuite) TestProcessProfiles_SkipsUnknownPeriod() {
	now := time.Now()
	profile := recurringProfile("fortnightly", 0, models.RecurringActionCreateDraft, now.AddDate(0, -1, 0))

	suite.invoiceRepo.On("ListRecurringProfiles", suite.ctx).Return([]*models.Invoice{profile}, nil)

	created, err := suite.service.ProcessProfiles(suite.ctx, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}
