package handlers

import (
	"errors"
	"net/http"

	"consolidation-service/internal/middleware"
	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"consolidation-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncHandler handles storefront sync triggers and publish record queries
type SyncHandler struct {
	syncService *services.SyncService
	publishRepo repository.PublishRepositoryInterface
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncService *services.SyncService, publishRepo repository.PublishRepositoryInterface) *SyncHandler {
	return &SyncHandler{syncService: syncService, publishRepo: publishRepo}
}

// TriggerSync runs one storefront sync batch for the tenant
// POST /api/v1/sync/run
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	result, err := h.syncService.RunSync(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "SYNC_FAILED", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: result})
}

// GetPublishRecord retrieves the publish record of a masterfile entry
// GET /api/v1/sync/records/:entryId
func (h *SyncHandler) GetPublishRecord(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid entry ID"},
		})
		return
	}

	record, err := h.publishRepo.GetByEntry(c.Request.Context(), tenantID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Publish record not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: "Failed to get publish record"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: record})
}
