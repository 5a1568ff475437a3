package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CanonicalField is a field name in the canonical price-list row schema.
// Every supplier column mapping targets one of these.
type CanonicalField string

const (
	FieldEAN        CanonicalField = "ean"
	FieldPartNumber CanonicalField = "partNumber"
	FieldName       CanonicalField = "name"
	FieldBrand      CanonicalField = "brand"
	FieldCategory   CanonicalField = "category"
	FieldPrice      CanonicalField = "price"
	FieldQuantity   CanonicalField = "quantity"
)

// CanonicalFields lists the full canonical schema in template order.
func CanonicalFields() []CanonicalField {
	return []CanonicalField{
		FieldEAN, FieldPartNumber, FieldName, FieldBrand,
		FieldCategory, FieldPrice, FieldQuantity,
	}
}

// DecimalFormat describes how a supplier writes decimal numbers
type DecimalFormat string

const (
	DecimalFormatPoint DecimalFormat = "POINT" // 1234.56 or 1,234.56
	DecimalFormatComma DecimalFormat = "COMMA" // 1234,56 or 1.234,56
)

// Supplier represents a wholesale price-list source
type Supplier struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_suppliers_tenant;index:idx_suppliers_tenant_code,unique"`
	Name     string    `json:"name" gorm:"not null"`
	Code     string    `json:"code" gorm:"not null;index:idx_suppliers_tenant_code,unique"`
	// Priority orders suppliers for tie-breaking; lower number wins
	Priority int   `json:"priority" gorm:"not null;default:100"`
	Active   *bool `json:"active" gorm:"default:true"`

	// Price-list format declared by the supplier
	Delimiter     string        `json:"delimiter" gorm:"type:varchar(4);default:';'"`
	Encoding      string        `json:"encoding" gorm:"type:varchar(32);default:'utf-8'"` // utf-8, iso-8859-1, windows-1252
	DecimalFormat DecimalFormat `json:"decimalFormat" gorm:"type:varchar(16);default:'POINT'"`
	CurrencyCode  string        `json:"currencyCode" gorm:"type:varchar(3);default:'EUR'"`

	FieldMappings []SupplierFieldMapping `json:"fieldMappings,omitempty" gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName specifies the table name for Supplier
func (Supplier) TableName() string {
	return "suppliers"
}

// IsActive reports whether the supplier participates in imports and passes
func (s *Supplier) IsActive() bool {
	return s.Active == nil || *s.Active
}

// SupplierFieldMapping maps one canonical field to a source column of the
// supplier's raw price list. Per supplier, no two canonical fields may
// target the same source column.
type SupplierFieldMapping struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SupplierID     uuid.UUID      `json:"supplierId" gorm:"type:uuid;not null;index:idx_field_mappings_supplier;index:idx_field_mappings_supplier_col,unique"`
	CanonicalField CanonicalField `json:"canonicalField" gorm:"type:varchar(64);not null"`
	SourceColumn   string         `json:"sourceColumn" gorm:"type:varchar(255);not null;index:idx_field_mappings_supplier_col,unique"`
	Position       int            `json:"position" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// TableName specifies the table name for SupplierFieldMapping
func (SupplierFieldMapping) TableName() string {
	return "supplier_field_mappings"
}

// CreateSupplierRequest represents a request to register a supplier
type CreateSupplierRequest struct {
	Name          string        `json:"name" binding:"required"`
	Code          string        `json:"code" binding:"required"`
	Priority      *int          `json:"priority,omitempty"`
	Delimiter     *string       `json:"delimiter,omitempty"`
	Encoding      *string       `json:"encoding,omitempty"`
	DecimalFormat DecimalFormat `json:"decimalFormat,omitempty"`
	CurrencyCode  *string       `json:"currencyCode,omitempty"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Name          *string        `json:"name,omitempty"`
	Priority      *int           `json:"priority,omitempty"`
	Active        *bool          `json:"active,omitempty"`
	Delimiter     *string        `json:"delimiter,omitempty"`
	Encoding      *string        `json:"encoding,omitempty"`
	DecimalFormat *DecimalFormat `json:"decimalFormat,omitempty"`
	CurrencyCode  *string        `json:"currencyCode,omitempty"`
}

// FieldMappingItem is one canonical-field-to-column entry in a mapping save
type FieldMappingItem struct {
	CanonicalField CanonicalField `json:"canonicalField" binding:"required"`
	SourceColumn   string         `json:"sourceColumn" binding:"required"`
}

// SaveFieldMappingsRequest replaces the full mapping set of a supplier
type SaveFieldMappingsRequest struct {
	Mappings []FieldMappingItem `json:"mappings" binding:"required,min=1"`
}

type SupplierResponse struct {
	Success bool      `json:"success"`
	Data    *Supplier `json:"data"`
	Message *string   `json:"message,omitempty"`
}

type SupplierListResponse struct {
	Success bool       `json:"success"`
	Data    []Supplier `json:"data"`
}
