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
	"gorm.io/gorm"
)

// ConsolidationHandler handles consolidation pass triggers and masterfile
// queries
type ConsolidationHandler struct {
	builder        *services.MasterFileBuilder
	masterfileRepo repository.MasterFileRepositoryInterface
}

// NewConsolidationHandler creates a new consolidation handler
func NewConsolidationHandler(builder *services.MasterFileBuilder, masterfileRepo repository.MasterFileRepositoryInterface) *ConsolidationHandler {
	return &ConsolidationHandler{builder: builder, masterfileRepo: masterfileRepo}
}

// TriggerPass runs a consolidation pass for the tenant
// POST /api/v1/consolidation/run
func (h *ConsolidationHandler) TriggerPass(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	result, err := h.builder.RunPass(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, services.ErrPassAlreadyRunning) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "PASS_ALREADY_RUNNING", Message: err.Error()},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PASS_FAILED", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: result})
}

// ListEntries lists consolidated masterfile entries
// GET /api/v1/masterfile
func (h *ConsolidationHandler) ListEntries(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	opts := repository.MasterFileListOptions{
		TenantID: tenantID,
		Brand:    c.Query("brand"),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	}
	if v := c.Query("publishEligible"); v != "" {
		eligible := v == "true"
		opts.PublishEligible = &eligible
	}

	entries, total, err := h.masterfileRepo.List(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list masterfile entries"},
		})
		return
	}

	if limit <= 0 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.MasterFileListResponse{
		Success: true,
		Data:    entries,
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

// GetEntry retrieves one masterfile entry by identity key
// GET /api/v1/masterfile/:identityKey
func (h *ConsolidationHandler) GetEntry(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)
	identityKey := c.Param("identityKey")

	entry, err := h.masterfileRepo.GetByIdentityKey(c.Request.Context(), tenantID, identityKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Masterfile entry not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: "Failed to get masterfile entry"},
		})
		return
	}

	c.JSON(http.StatusOK, models.MasterFileEntryResponse{Success: true, Data: entry})
}

// GetFacets returns publish-eligible entry counts per brand and category
// GET /api/v1/masterfile/facets
func (h *ConsolidationHandler) GetFacets(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	facets, err := h.masterfileRepo.FacetCounts(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FACETS_FAILED", Message: "Failed to compute facet counts"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: facets})
}
