package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RuleDimension identifies which facet a filter rule matches on
type RuleDimension string

const (
	DimensionBrand         RuleDimension = "BRAND"
	DimensionCategory      RuleDimension = "CATEGORY"
	DimensionBrandCategory RuleDimension = "BRAND_CATEGORY"
)

// RuleAction decides whether a match includes or excludes a candidate
type RuleAction string

const (
	ActionInclude RuleAction = "INCLUDE"
	ActionExclude RuleAction = "EXCLUDE"
)

// FilterRule decides publication eligibility of consolidated entries.
// Rules of the same dimension are OR-combined; dimensions with at least one
// active rule are AND-combined. Exclude beats include within a dimension.
type FilterRule struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_filter_rules_tenant"`

	Dimension RuleDimension `json:"dimension" gorm:"type:varchar(20);not null"`
	Action    RuleAction    `json:"action" gorm:"type:varchar(10);not null"`

	// BrandValue is set for BRAND and BRAND_CATEGORY rules,
	// CategoryValue for CATEGORY and BRAND_CATEGORY rules
	BrandValue    string `json:"brandValue,omitempty" gorm:"type:varchar(255)"`
	CategoryValue string `json:"categoryValue,omitempty" gorm:"type:varchar(255)"`

	Priority int   `json:"priority" gorm:"not null;default:100;index"`
	Active   *bool `json:"active" gorm:"default:true"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName specifies the table name for FilterRule
func (FilterRule) TableName() string {
	return "filter_rules"
}

// IsActive reports whether the rule participates in evaluation
func (r *FilterRule) IsActive() bool {
	return r.Active == nil || *r.Active
}

// MarkupRule maps brand/category specificity to a purchase-to-sell
// multiplier. A rule with neither brand nor category is the tenant default;
// every deployment must configure one.
type MarkupRule struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_markup_rules_tenant"`

	Brand    *string `json:"brand,omitempty" gorm:"type:varchar(255)"`
	Category *string `json:"category,omitempty" gorm:"type:varchar(255)"`

	// Markup is a fraction: 0.20 means sell = purchase * 1.20
	Markup decimal.Decimal `json:"markup" gorm:"type:decimal(6,4);not null"`
	Active *bool           `json:"active" gorm:"default:true"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName specifies the table name for MarkupRule
func (MarkupRule) TableName() string {
	return "markup_rules"
}

// IsActive reports whether the markup rule is considered during resolution
func (m *MarkupRule) IsActive() bool {
	return m.Active == nil || *m.Active
}

// IsDefault reports whether this is the tenant-wide fallback rule
func (m *MarkupRule) IsDefault() bool {
	return m.Brand == nil && m.Category == nil
}

// CreateFilterRuleRequest represents a request to create a filter rule
type CreateFilterRuleRequest struct {
	Dimension     RuleDimension `json:"dimension" binding:"required"`
	Action        RuleAction    `json:"action" binding:"required"`
	BrandValue    string        `json:"brandValue,omitempty"`
	CategoryValue string        `json:"categoryValue,omitempty"`
	Priority      *int          `json:"priority,omitempty"`
}

// UpdateFilterRuleRequest represents a request to update a filter rule
type UpdateFilterRuleRequest struct {
	Action        *RuleAction `json:"action,omitempty"`
	BrandValue    *string     `json:"brandValue,omitempty"`
	CategoryValue *string     `json:"categoryValue,omitempty"`
	Priority      *int        `json:"priority,omitempty"`
	Active        *bool       `json:"active,omitempty"`
}

// CreateMarkupRuleRequest represents a request to create a markup rule
type CreateMarkupRuleRequest struct {
	Brand    *string `json:"brand,omitempty"`
	Category *string `json:"category,omitempty"`
	Markup   string  `json:"markup" binding:"required"`
}

type FilterRuleResponse struct {
	Success bool        `json:"success"`
	Data    *FilterRule `json:"data"`
	Message *string     `json:"message,omitempty"`
}

type FilterRuleListResponse struct {
	Success bool         `json:"success"`
	Data    []FilterRule `json:"data"`
}

type MarkupRuleResponse struct {
	Success bool        `json:"success"`
	Data    *MarkupRule `json:"data"`
	Message *string     `json:"message,omitempty"`
}

type MarkupRuleListResponse struct {
	Success bool         `json:"success"`
	Data    []MarkupRule `json:"data"`
}
