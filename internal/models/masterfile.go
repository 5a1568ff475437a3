package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MasterFileEntry is the consolidated, one-row-per-product catalog record.
// Written only by the consolidation pass; sync and enrichment write to
// PublishRecord, never back into this entry.
type MasterFileEntry struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_masterfile_tenant;index:idx_masterfile_tenant_key,unique"`

	// IdentityKey is "ean:<digits>" or "pn:<brand>|<partNumber>"
	IdentityKey string `json:"identityKey" gorm:"not null;index:idx_masterfile_tenant_key,unique"`

	Name     string `json:"name" gorm:"not null"`
	Brand    string `json:"brand" gorm:"index"`
	Category string `json:"category" gorm:"index"`

	BestPurchasePrice  decimal.Decimal `json:"bestPurchasePrice" gorm:"type:decimal(12,4);not null"`
	SellPrice          decimal.Decimal `json:"sellPrice" gorm:"type:decimal(12,2);not null"`
	CurrencyCode       string          `json:"currencyCode" gorm:"type:varchar(3);not null;default:'EUR'"`
	WinningSupplierID  uuid.UUID       `json:"winningSupplierId" gorm:"type:uuid;not null;index"`
	AggregatedQuantity int             `json:"aggregatedQuantity" gorm:"not null"`
	OfferCount         int             `json:"offerCount" gorm:"not null;default:0"`

	PublishEligible    bool      `json:"publishEligible" gorm:"not null;default:false;index"`
	LastConsolidatedAt time.Time `json:"lastConsolidatedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for MasterFileEntry
func (MasterFileEntry) TableName() string {
	return "masterfile_entries"
}

// PublishStatus represents the storefront sync status of a record
type PublishStatus string

const (
	PublishStatusPending  PublishStatus = "PENDING"
	PublishStatusUploaded PublishStatus = "UPLOADED"
	PublishStatusError    PublishStatus = "ERROR"
)

// PublishRecord is the output record of the enrichment + sync pass for one
// masterfile entry. Kept separate so downstream passes never mutate the
// consolidated entry itself.
type PublishRecord struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID          string    `json:"tenantId" gorm:"not null;index:idx_publish_tenant;index:idx_publish_tenant_entry,unique"`
	MasterFileEntryID uuid.UUID `json:"masterFileEntryId" gorm:"type:uuid;not null;index:idx_publish_tenant_entry,unique"`

	// Enrichment output: field name -> generated text
	Enrichment datatypes.JSON `json:"enrichment,omitempty" gorm:"type:jsonb"`

	Status      PublishStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ErrorDetail string        `json:"errorDetail,omitempty" gorm:"type:text"`
	ExternalRef string        `json:"externalRef,omitempty" gorm:"type:varchar(255)"`
	SyncedAt    *time.Time    `json:"syncedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for PublishRecord
func (PublishRecord) TableName() string {
	return "publish_records"
}

type MasterFileEntryResponse struct {
	Success bool             `json:"success"`
	Data    *MasterFileEntry `json:"data"`
	Message *string          `json:"message,omitempty"`
}

type MasterFileListResponse struct {
	Success    bool              `json:"success"`
	Data       []MasterFileEntry `json:"data"`
	Pagination *PaginationInfo   `json:"pagination"`
}

// PaginationInfo mirrors the list envelope used across the platform services
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
