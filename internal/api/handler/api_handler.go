package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/jobboard/internal/api/dto"
	"github.com/martijn/jobboard/internal/core/service"
)

type APIHandler struct {
	jobService *service.JobService
}

func NewAPIHandler(jobService *service.JobService) *APIHandler {
	return &APIHandler{
		jobService: jobService,
	}
}

// ListJobs handles GET /api/jobs
func (h *APIHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobService.ListJobs(c.Request.Context(), c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list jobs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	items := make([]dto.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, dto.JobResponse{
			ID:          j.ID,
			Title:       j.Title,
			Description: j.Description,
			Tags:        j.Tags,
			Salary:      j.Salary,
			Created:     j.Created,
			Author:      j.Author,
		})
	}

	c.JSON(http.StatusOK, items)
}
