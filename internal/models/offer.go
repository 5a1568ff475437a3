package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferValidationStatus classifies an offer's identity quality
type OfferValidationStatus string

const (
	OfferValid      OfferValidationStatus = "VALID"
	OfferInvalidEAN OfferValidationStatus = "INVALID_EAN"
	OfferEmptyEAN   OfferValidationStatus = "EMPTY_EAN"
)

// RejectReason identifies why a raw row was dropped during normalization
type RejectReason string

const (
	RejectEmptyEAN        RejectReason = "EMPTY_EAN"
	RejectNonNumericEAN   RejectReason = "NON_NUMERIC_EAN"
	RejectMissingPrice    RejectReason = "MISSING_PRICE"
	RejectMissingQuantity RejectReason = "MISSING_QUANTITY"
)

// SupplierOffer is one normalized price-list row. Offers are replaced
// wholesale per supplier on each import; aggregation always reads the
// current snapshot, never individual rows.
type SupplierOffer struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string    `json:"tenantId" gorm:"not null;index:idx_offers_tenant;index:idx_offers_tenant_supplier"`
	SupplierID uuid.UUID `json:"supplierId" gorm:"type:uuid;not null;index:idx_offers_tenant_supplier"`

	EAN        *string `json:"ean,omitempty" gorm:"index"`
	PartNumber string  `json:"partNumber" gorm:"not null"`
	Name       string  `json:"name" gorm:"not null"`
	Brand      string  `json:"brand"`
	Category   string  `json:"category"`

	PurchasePrice decimal.Decimal `json:"purchasePrice" gorm:"type:decimal(12,4);not null"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	CurrencyCode  string          `json:"currencyCode" gorm:"type:varchar(3);not null;default:'EUR'"`

	ValidationStatus OfferValidationStatus `json:"validationStatus" gorm:"type:varchar(20);not null;default:'VALID'"`

	// Position of the source row within its import, preserved so selection
	// has a stable final tie-break
	ImportSeq int       `json:"importSeq" gorm:"not null;default:0"`
	ImportRun uuid.UUID `json:"importRun" gorm:"type:uuid"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for SupplierOffer
func (SupplierOffer) TableName() string {
	return "supplier_offers"
}

// RowRejection records a dropped raw row for operator review
type RowRejection struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   string       `json:"tenantId" gorm:"not null;index"`
	SupplierID uuid.UUID    `json:"supplierId" gorm:"type:uuid;not null;index"`
	ImportRun  uuid.UUID    `json:"importRun" gorm:"type:uuid;index"`
	RowNumber  int          `json:"rowNumber" gorm:"not null"`
	Reason     RejectReason `json:"reason" gorm:"type:varchar(32);not null"`
	Sample     JSON         `json:"sample" gorm:"type:jsonb"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// TableName specifies the table name for RowRejection
func (RowRejection) TableName() string {
	return "row_rejections"
}
