package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"consolidation-service/internal/middleware"
	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"consolidation-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobsHandler handles HTTP requests for job runs and the stuck-job sweep
type JobsHandler struct {
	repo    repository.JobsRepositoryInterface
	sweeper *services.StuckJobSweeper
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(repo repository.JobsRepositoryInterface, sweeper *services.StuckJobSweeper) *JobsHandler {
	return &JobsHandler{repo: repo, sweeper: sweeper}
}

// ListJobs lists job runs of the tenant with optional phase/status filters
// GET /api/v1/jobs
func (h *JobsHandler) ListJobs(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	jobs, total, err := h.repo.List(c.Request.Context(), repository.JobListOptions{
		TenantID: tenantID,
		Phase:    c.Query("phase"),
		Status:   c.Query("status"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list job runs"},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.JobRunListResponse{
		Success: true,
		Data:    jobs,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// GetJob retrieves one job run
// GET /api/v1/jobs/:id
func (h *JobsHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid job run ID"},
		})
		return
	}

	job, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Job run not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: "Failed to get job run"},
		})
		return
	}

	c.JSON(http.StatusOK, models.JobRunResponse{Success: true, Data: job})
}

// TriggerSweep runs the stuck-job sweep immediately
// POST /api/v1/jobs/sweep
func (h *JobsHandler) TriggerSweep(c *gin.Context) {
	reclaimed, err := h.sweeper.SweepOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "SWEEP_FAILED", Message: "Failed to sweep stuck jobs"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    gin.H{"reclaimed": reclaimed},
	})
}
