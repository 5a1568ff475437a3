package repository

import (
	"context"
	"time"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RulesRepositoryInterface defines database operations for filter and
// markup rules
type RulesRepositoryInterface interface {
	ListActiveFilterRules(ctx context.Context, tenantID string) ([]models.FilterRule, error)
	ListFilterRules(ctx context.Context, tenantID string) ([]models.FilterRule, error)
	CreateFilterRule(ctx context.Context, rule *models.FilterRule) error
	UpdateFilterRule(ctx context.Context, rule *models.FilterRule) error
	GetFilterRule(ctx context.Context, tenantID string, id uuid.UUID) (*models.FilterRule, error)
	DeleteFilterRule(ctx context.Context, tenantID string, id uuid.UUID) error

	ListActiveMarkupRules(ctx context.Context, tenantID string) ([]models.MarkupRule, error)
	ListMarkupRules(ctx context.Context, tenantID string) ([]models.MarkupRule, error)
	CreateMarkupRule(ctx context.Context, rule *models.MarkupRule) error
	DeleteMarkupRule(ctx context.Context, tenantID string, id uuid.UUID) error
}

// RulesRepository handles database operations for filter and markup rules
type RulesRepository struct {
	db *gorm.DB
}

var _ RulesRepositoryInterface = (*RulesRepository)(nil)

// NewRulesRepository creates a new rules repository
func NewRulesRepository(db *gorm.DB) *RulesRepository {
	return &RulesRepository{db: db}
}

// ListActiveFilterRules retrieves all active filter rules ordered by priority
func (r *RulesRepository) ListActiveFilterRules(ctx context.Context, tenantID string) ([]models.FilterRule, error) {
	var rules []models.FilterRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (active IS NULL OR active = true)", tenantID).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	return rules, err
}

// ListFilterRules retrieves all filter rules for a tenant
func (r *RulesRepository) ListFilterRules(ctx context.Context, tenantID string) ([]models.FilterRule, error) {
	var rules []models.FilterRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	return rules, err
}

// CreateFilterRule creates a new filter rule
func (r *RulesRepository) CreateFilterRule(ctx context.Context, rule *models.FilterRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(rule).Error
}

// UpdateFilterRule saves filter rule changes
func (r *RulesRepository) UpdateFilterRule(ctx context.Context, rule *models.FilterRule) error {
	rule.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(rule).Error
}

// GetFilterRule retrieves a filter rule by ID
func (r *RulesRepository) GetFilterRule(ctx context.Context, tenantID string, id uuid.UUID) (*models.FilterRule, error) {
	var rule models.FilterRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteFilterRule soft-deletes a filter rule
func (r *RulesRepository) DeleteFilterRule(ctx context.Context, tenantID string, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.FilterRule{}).Error
}

// ListActiveMarkupRules retrieves all active markup rules for a tenant
func (r *RulesRepository) ListActiveMarkupRules(ctx context.Context, tenantID string) ([]models.MarkupRule, error) {
	var rules []models.MarkupRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (active IS NULL OR active = true)", tenantID).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}

// ListMarkupRules retrieves all markup rules for a tenant
func (r *RulesRepository) ListMarkupRules(ctx context.Context, tenantID string) ([]models.MarkupRule, error) {
	var rules []models.MarkupRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}

// CreateMarkupRule creates a new markup rule
func (r *RulesRepository) CreateMarkupRule(ctx context.Context, rule *models.MarkupRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(rule).Error
}

// DeleteMarkupRule soft-deletes a markup rule
func (r *RulesRepository) DeleteMarkupRule(ctx context.Context, tenantID string, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.MarkupRule{}).Error
}
