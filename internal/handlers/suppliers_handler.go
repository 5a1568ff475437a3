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

// SuppliersHandler handles HTTP requests for suppliers and their field
// mappings
type SuppliersHandler struct {
	repo   repository.SuppliersRepositoryInterface
	mapper *services.FieldMapper
}

// NewSuppliersHandler creates a new suppliers handler
func NewSuppliersHandler(repo repository.SuppliersRepositoryInterface, mapper *services.FieldMapper) *SuppliersHandler {
	return &SuppliersHandler{repo: repo, mapper: mapper}
}

// CreateSupplier registers a new price-list supplier
// POST /api/v1/suppliers
func (h *SuppliersHandler) CreateSupplier(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	supplier := &models.Supplier{
		TenantID:      tenantID,
		Name:          req.Name,
		Code:          req.Code,
		Priority:      100,
		DecimalFormat: models.DecimalFormatPoint,
	}
	if req.Priority != nil {
		supplier.Priority = *req.Priority
	}
	if req.Delimiter != nil {
		supplier.Delimiter = *req.Delimiter
	}
	if req.Encoding != nil {
		supplier.Encoding = *req.Encoding
	}
	if req.DecimalFormat != "" {
		supplier.DecimalFormat = req.DecimalFormat
	}
	if req.CurrencyCode != nil {
		supplier.CurrencyCode = *req.CurrencyCode
	}

	if err := h.repo.Create(c.Request.Context(), supplier); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: "Failed to create supplier"},
		})
		return
	}

	c.JSON(http.StatusCreated, models.SupplierResponse{Success: true, Data: supplier})
}

// ListSuppliers lists all suppliers of the tenant
// GET /api/v1/suppliers
func (h *SuppliersHandler) ListSuppliers(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	suppliers, err := h.repo.List(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list suppliers"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SupplierListResponse{Success: true, Data: suppliers})
}

// GetSupplier retrieves one supplier with its field mappings
// GET /api/v1/suppliers/:id
func (h *SuppliersHandler) GetSupplier(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid supplier ID"},
		})
		return
	}

	supplier, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Supplier not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: "Failed to get supplier"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SupplierResponse{Success: true, Data: supplier})
}

// UpdateSupplier updates supplier settings
// PUT /api/v1/suppliers/:id
func (h *SuppliersHandler) UpdateSupplier(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid supplier ID"},
		})
		return
	}

	var req models.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	supplier, err := h.repo.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: "Supplier not found"},
		})
		return
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.Priority != nil {
		supplier.Priority = *req.Priority
	}
	if req.Active != nil {
		supplier.Active = req.Active
	}
	if req.Delimiter != nil {
		supplier.Delimiter = *req.Delimiter
	}
	if req.Encoding != nil {
		supplier.Encoding = *req.Encoding
	}
	if req.DecimalFormat != nil {
		supplier.DecimalFormat = *req.DecimalFormat
	}
	if req.CurrencyCode != nil {
		supplier.CurrencyCode = *req.CurrencyCode
	}

	if err := h.repo.Update(c.Request.Context(), supplier); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update supplier"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SupplierResponse{Success: true, Data: supplier})
}

// DeleteSupplier removes a supplier
// DELETE /api/v1/suppliers/:id
func (h *SuppliersHandler) DeleteSupplier(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid supplier ID"},
		})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), tenantID, id); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: "Failed to delete supplier"},
		})
		return
	}

	msg := "Supplier deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &msg})
}

// SaveFieldMappings replaces the full field mapping set of a supplier
// PUT /api/v1/suppliers/:id/mappings
func (h *SuppliersHandler) SaveFieldMappings(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid supplier ID"},
		})
		return
	}

	if _, err := h.repo.GetByID(c.Request.Context(), tenantID, id); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: "Supplier not found"},
		})
		return
	}

	var req models.SaveFieldMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	if err := h.mapper.SaveMappings(c.Request.Context(), id, req.Mappings); err != nil {
		var dup *services.DuplicateMappingError
		if errors.As(err, &dup) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "DUPLICATE_MAPPING", Message: dup.Error(), Field: dup.SourceColumn},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "SAVE_FAILED", Message: "Failed to save field mappings"},
		})
		return
	}

	msg := "Field mappings saved"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &msg})
}

// GetFieldMappings lists the field mappings of a supplier
// GET /api/v1/suppliers/:id/mappings
func (h *SuppliersHandler) GetFieldMappings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid supplier ID"},
		})
		return
	}

	mappings, err := h.repo.GetFieldMappings(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: "Failed to get field mappings"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: mappings})
}
