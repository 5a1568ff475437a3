package handlers

import (
	"errors"
	"net/http"

	"consolidation-service/internal/middleware"
	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RulesHandler handles HTTP requests for filter and markup rules
type RulesHandler struct {
	repo repository.RulesRepositoryInterface
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(repo repository.RulesRepositoryInterface) *RulesHandler {
	return &RulesHandler{repo: repo}
}

// CreateFilterRule creates a publication filter rule
// POST /api/v1/rules/filters
func (h *RulesHandler) CreateFilterRule(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.CreateFilterRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	if msg := validateFilterRuleValues(req.Dimension, req.BrandValue, req.CategoryValue); msg != "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: msg},
		})
		return
	}

	rule := &models.FilterRule{
		TenantID:      tenantID,
		Dimension:     req.Dimension,
		Action:        req.Action,
		BrandValue:    req.BrandValue,
		CategoryValue: req.CategoryValue,
		Priority:      100,
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}

	if err := h.repo.CreateFilterRule(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: "Failed to create filter rule"},
		})
		return
	}

	c.JSON(http.StatusCreated, models.FilterRuleResponse{Success: true, Data: rule})
}

func validateFilterRuleValues(dimension models.RuleDimension, brandValue, categoryValue string) string {
	switch dimension {
	case models.DimensionBrand:
		if brandValue == "" {
			return "brandValue is required for BRAND rules"
		}
	case models.DimensionCategory:
		if categoryValue == "" {
			return "categoryValue is required for CATEGORY rules"
		}
	case models.DimensionBrandCategory:
		if brandValue == "" || categoryValue == "" {
			return "brandValue and categoryValue are required for BRAND_CATEGORY rules"
		}
	default:
		return "dimension must be BRAND, CATEGORY or BRAND_CATEGORY"
	}
	return ""
}

// ListFilterRules lists all filter rules of the tenant
// GET /api/v1/rules/filters
func (h *RulesHandler) ListFilterRules(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	rules, err := h.repo.ListFilterRules(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list filter rules"},
		})
		return
	}

	c.JSON(http.StatusOK, models.FilterRuleListResponse{Success: true, Data: rules})
}

// UpdateFilterRule updates a filter rule
// PUT /api/v1/rules/filters/:id
func (h *RulesHandler) UpdateFilterRule(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid rule ID"},
		})
		return
	}

	var req models.UpdateFilterRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	rule, err := h.repo.GetFilterRule(c.Request.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "NOT_FOUND", Message: "Filter rule not found"},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "GET_FAILED", Message: "Failed to get filter rule"},
		})
		return
	}

	if req.Action != nil {
		rule.Action = *req.Action
	}
	if req.BrandValue != nil {
		rule.BrandValue = *req.BrandValue
	}
	if req.CategoryValue != nil {
		rule.CategoryValue = *req.CategoryValue
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Active != nil {
		rule.Active = req.Active
	}

	if msg := validateFilterRuleValues(rule.Dimension, rule.BrandValue, rule.CategoryValue); msg != "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: msg},
		})
		return
	}

	if err := h.repo.UpdateFilterRule(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "UPDATE_FAILED", Message: "Failed to update filter rule"},
		})
		return
	}

	c.JSON(http.StatusOK, models.FilterRuleResponse{Success: true, Data: rule})
}

// DeleteFilterRule deletes a filter rule
// DELETE /api/v1/rules/filters/:id
func (h *RulesHandler) DeleteFilterRule(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid rule ID"},
		})
		return
	}

	if err := h.repo.DeleteFilterRule(c.Request.Context(), tenantID, id); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: "Failed to delete filter rule"},
		})
		return
	}

	msg := "Filter rule deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &msg})
}

// CreateMarkupRule creates a markup rule
// POST /api/v1/rules/markups
func (h *RulesHandler) CreateMarkupRule(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	var req models.CreateMarkupRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	markup, err := decimal.NewFromString(req.Markup)
	if err != nil || markup.IsNegative() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: "markup must be a non-negative decimal fraction", Field: "markup"},
		})
		return
	}

	rule := &models.MarkupRule{
		TenantID: tenantID,
		Brand:    req.Brand,
		Category: req.Category,
		Markup:   markup,
	}

	if err := h.repo.CreateMarkupRule(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CREATE_FAILED", Message: "Failed to create markup rule"},
		})
		return
	}

	c.JSON(http.StatusCreated, models.MarkupRuleResponse{Success: true, Data: rule})
}

// ListMarkupRules lists all markup rules of the tenant
// GET /api/v1/rules/markups
func (h *RulesHandler) ListMarkupRules(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	rules, err := h.repo.ListMarkupRules(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list markup rules"},
		})
		return
	}

	c.JSON(http.StatusOK, models.MarkupRuleListResponse{Success: true, Data: rules})
}

// DeleteMarkupRule deletes a markup rule
// DELETE /api/v1/rules/markups/:id
func (h *RulesHandler) DeleteMarkupRule(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid rule ID"},
		})
		return
	}

	if err := h.repo.DeleteMarkupRule(c.Request.Context(), tenantID, id); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "DELETE_FAILED", Message: "Failed to delete markup rule"},
		})
		return
	}

	msg := "Markup rule deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &msg})
}
