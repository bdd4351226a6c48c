package services

import (
	"context"
	"errors"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
)

// ErrTemplateNotFound is returned when a template lookup misses.
var ErrTemplateNotFound = errors.New("template not found")

type TemplateService interface {
	Create(ctx context.Context, template *models.InvoiceTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InvoiceTemplate, error)
	Update(ctx context.Context, template *models.InvoiceTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListForProject returns global templates plus those scoped to the
	// given project.
	ListForProject(ctx context.Context, projectID *int64) ([]*models.InvoiceTemplate, error)
	// ForInvoice resolves the template an invoice renders with, nil when
	// none is assigned.
	ForInvoice(ctx context.Context, invoice *models.Invoice) (*models.InvoiceTemplate, error)
}

type templateService struct {
	templateRepo repositories.TemplateRepository
}

func NewTemplateService(templateRepo repositories.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) Create(ctx context.Context, template *models.InvoiceTemplate) error {
	if template.Name == "" {
		return common.NewValidationError("name", "template name is required")
	}
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	return s.templateRepo.Create(ctx, template)
}

func (s *templateService) GetByID(ctx context.Context, id uuid.UUID) (*models.InvoiceTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

func (s *templateService) Update(ctx context.Context, template *models.InvoiceTemplate) error {
	if template.Name == "" {
		return common.NewValidationError("name", "template name is required")
	}
	existing, err := s.templateRepo.GetByID(ctx, template.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTemplateNotFound
	}
	return s.templateRepo.Update(ctx, template)
}

func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTemplateNotFound
	}
	return s.templateRepo.Delete(ctx, id)
}

func (s *templateService) ListForProject(ctx context.Context, projectID *int64) ([]*models.InvoiceTemplate, error) {
	return s.templateRepo.ListForProject(ctx, projectID)
}

func (s *templateService) ForInvoice(ctx context.Context, invoice *models.Invoice) (*models.InvoiceTemplate, error) {
	if invoice.TemplateID == nil {
		return nil, nil
	}
	return s.templateRepo.GetByID(ctx, *invoice.TemplateID)
}
