package handlers

import (
	"net/http"
	"strconv"

	"invoicehub/internal/common"
	"invoicehub/internal/statistics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StatisticsHandlers handles HTTP requests for invoice statistics
type StatisticsHandlers struct {
	statisticsService *statistics.StatisticsService
}

func NewStatisticsHandlers(statisticsService *statistics.StatisticsService) *StatisticsHandlers {
	return &StatisticsHandlers{statisticsService: statisticsService}
}

// GetStatistics handles GET /statistics
func (h *StatisticsHandlers) GetStatistics(c echo.Context) error {
	ctx := c.Request().Context()

	var projectID *int64
	if p := c.QueryParam("project_id"); p != "" {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return common.SendClientError(c, "invalid project_id")
		}
		projectID = &v
	}
	var contactID *uuid.UUID
	if p := c.QueryParam("contact_id"); p != "" {
		id, err := common.ValidateUUID(p, "contact_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		contactID = &id
	}

	summary, err := h.statisticsService.Summary(ctx, projectID, contactID)
	if err != nil {
		return common.SendServerError(c, "Failed to compute statistics: "+err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}
