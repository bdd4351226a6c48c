package handlers

import (
	"net/http"
	"strconv"

	"invoicehub/internal/common"
	"invoicehub/internal/models"
	"invoicehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TemplateHandlers handles HTTP requests for invoice templates
type TemplateHandlers struct {
	templateService services.TemplateService
}

func NewTemplateHandlers(templateService services.TemplateService) *TemplateHandlers {
	return &TemplateHandlers{templateService: templateService}
}

type templateRequest struct {
	ProjectID   *int64  `json:"project_id"`
	Name        string  `json:"name"`
	Content     *string `json:"content"`
	Description *string `json:"description"`
}

// CreateTemplate handles POST /templates
func (h *TemplateHandlers) CreateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	template := &models.InvoiceTemplate{
		ID:          uuid.New(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Content:     req.Content,
		Description: req.Description,
	}
	if userID, ok := common.GetUserIDFromContext(ctx); ok {
		template.AuthorID = &userID
	}

	if err := h.templateService.Create(ctx, template); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, template)
}

// GetTemplate handles GET /templates/:id
func (h *TemplateHandlers) GetTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	template, err := h.templateService.GetByID(ctx, id)
	if err == services.ErrTemplateNotFound {
		return common.SendNotFoundError(c, "template")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve template: "+err.Error())
	}
	return c.JSON(http.StatusOK, template)
}

// ListTemplates handles GET /templates
func (h *TemplateHandlers) ListTemplates(c echo.Context) error {
	ctx := c.Request().Context()

	var projectID *int64
	if p := c.QueryParam("project_id"); p != "" {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return common.SendClientError(c, "invalid project_id")
		}
		projectID = &v
	}

	templates, err := h.templateService.ListForProject(ctx, projectID)
	if err != nil {
		return common.SendServerError(c, "Failed to list templates: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"templates": templates})
}

// UpdateTemplate handles PUT /templates/:id
func (h *TemplateHandlers) UpdateTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	existing, err := h.templateService.GetByID(ctx, id)
	if err == services.ErrTemplateNotFound {
		return common.SendNotFoundError(c, "template")
	}
	if err != nil {
		return common.SendServerError(c, "Failed to retrieve template: "+err.Error())
	}

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	template := *existing
	template.ProjectID = req.ProjectID
	template.Name = req.Name
	template.Content = req.Content
	template.Description = req.Description

	if err := h.templateService.Update(ctx, &template); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, &template)
}

// DeleteTemplate handles DELETE /templates/:id
func (h *TemplateHandlers) DeleteTemplate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.templateService.Delete(ctx, id); err != nil {
		if err == services.ErrTemplateNotFound {
			return common.SendNotFoundError(c, "template")
		}
		return common.SendServerError(c, "Failed to delete template: "+err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
