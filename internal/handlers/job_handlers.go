package handlers

import (
	"net/http"

	"invoicehub/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

type JobHandlers struct {
	scheduler *background.JobScheduler
}

func NewJobHandlers(scheduler *background.JobScheduler) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// JobStatus handles GET /jobs/status
func (h *JobHandlers) JobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}
