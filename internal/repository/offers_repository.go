package repository

import (
	"context"
	"time"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OffersRepositoryInterface defines database operations for supplier offers
type OffersRepositoryInterface interface {
	ReplaceSupplierOffers(ctx context.Context, tenantID string, supplierID uuid.UUID, offers []models.SupplierOffer, rejections []models.RowRejection) error
	GetValidOffersBySupplier(ctx context.Context, tenantID string, supplierID uuid.UUID) ([]models.SupplierOffer, error)
	CountBySupplier(ctx context.Context, tenantID string, supplierID uuid.UUID) (int64, error)
	ListRejections(ctx context.Context, tenantID string, importRun uuid.UUID, limit int) ([]models.RowRejection, error)
}

// OffersRepository handles database operations for supplier offers
type OffersRepository struct {
	db *gorm.DB
}

var _ OffersRepositoryInterface = (*OffersRepository)(nil)

// NewOffersRepository creates a new offers repository
func NewOffersRepository(db *gorm.DB) *OffersRepository {
	return &OffersRepository{db: db}
}

const insertBatchSize = 500

// ReplaceSupplierOffers swaps out a supplier's offer snapshot in one
// transaction. Aggregation reads whole snapshots, so a half-imported price
// list must never be observable.
func (r *OffersRepository) ReplaceSupplierOffers(ctx context.Context, tenantID string, supplierID uuid.UUID, offers []models.SupplierOffer, rejections []models.RowRejection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID).
			Delete(&models.SupplierOffer{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for i := range offers {
			if offers[i].ID == uuid.Nil {
				offers[i].ID = uuid.New()
			}
			offers[i].TenantID = tenantID
			offers[i].SupplierID = supplierID
			offers[i].CreatedAt = now
		}
		if len(offers) > 0 {
			if err := tx.CreateInBatches(&offers, insertBatchSize).Error; err != nil {
				return err
			}
		}
		for i := range rejections {
			if rejections[i].ID == uuid.Nil {
				rejections[i].ID = uuid.New()
			}
			rejections[i].TenantID = tenantID
			rejections[i].SupplierID = supplierID
			rejections[i].CreatedAt = now
		}
		if len(rejections) > 0 {
			if err := tx.CreateInBatches(&rejections, insertBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetValidOffersBySupplier retrieves the current valid offer snapshot of one
// supplier, in import order
func (r *OffersRepository) GetValidOffersBySupplier(ctx context.Context, tenantID string, supplierID uuid.UUID) ([]models.SupplierOffer, error) {
	var offers []models.SupplierOffer
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND supplier_id = ? AND validation_status = ?", tenantID, supplierID, models.OfferValid).
		Order("import_seq ASC").
		Find(&offers).Error
	return offers, err
}

// CountBySupplier counts stored offers for a supplier
func (r *OffersRepository) CountBySupplier(ctx context.Context, tenantID string, supplierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SupplierOffer{}).
		Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID).
		Count(&count).Error
	return count, err
}

// ListRejections retrieves rejection samples of an import run for operator review
func (r *OffersRepository) ListRejections(ctx context.Context, tenantID string, importRun uuid.UUID, limit int) ([]models.RowRejection, error) {
	var rejections []models.RowRejection
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND import_run = ?", tenantID, importRun).
		Order("row_number ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&rejections).Error
	return rejections, err
}
