package repository

import (
	"context"
	"time"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuppliersRepositoryInterface defines database operations for suppliers
// and their field mappings
type SuppliersRepositoryInterface interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Supplier, error)
	ListActive(ctx context.Context, tenantID string) ([]models.Supplier, error)
	List(ctx context.Context, tenantID string) ([]models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, tenantID string, id uuid.UUID) error
	ReplaceFieldMappings(ctx context.Context, supplierID uuid.UUID, mappings []models.SupplierFieldMapping) error
	GetFieldMappings(ctx context.Context, supplierID uuid.UUID) ([]models.SupplierFieldMapping, error)
}

// SuppliersRepository handles database operations for suppliers
type SuppliersRepository struct {
	db *gorm.DB
}

var _ SuppliersRepositoryInterface = (*SuppliersRepository)(nil)

// NewSuppliersRepository creates a new suppliers repository
func NewSuppliersRepository(db *gorm.DB) *SuppliersRepository {
	return &SuppliersRepository{db: db}
}

// Create creates a new supplier
func (r *SuppliersRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	supplier.CreatedAt = time.Now()
	supplier.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(supplier).Error
}

// GetByID retrieves a supplier with its field mappings
func (r *SuppliersRepository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Preload("FieldMappings", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// ListActive retrieves all active suppliers for a tenant, ordered by priority
func (r *SuppliersRepository) ListActive(ctx context.Context, tenantID string) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (active IS NULL OR active = true)", tenantID).
		Order("priority ASC, created_at ASC").
		Find(&suppliers).Error
	return suppliers, err
}

// List retrieves all suppliers for a tenant
func (r *SuppliersRepository) List(ctx context.Context, tenantID string) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("priority ASC, created_at ASC").
		Find(&suppliers).Error
	return suppliers, err
}

// Update saves supplier changes
func (r *SuppliersRepository) Update(ctx context.Context, supplier *models.Supplier) error {
	supplier.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete soft-deletes a supplier
func (r *SuppliersRepository) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Supplier{}).Error
}

// ReplaceFieldMappings replaces the full mapping set of a supplier in one
// transaction. Either the whole new set is persisted or the prior set stays
// untouched; a partial mapping set is never visible.
func (r *SuppliersRepository) ReplaceFieldMappings(ctx context.Context, supplierID uuid.UUID, mappings []models.SupplierFieldMapping) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id = ?", supplierID).
			Delete(&models.SupplierFieldMapping{}).Error; err != nil {
			return err
		}
		if len(mappings) == 0 {
			return nil
		}
		for i := range mappings {
			mappings[i].ID = uuid.New()
			mappings[i].SupplierID = supplierID
			mappings[i].Position = i
			mappings[i].CreatedAt = time.Now()
		}
		return tx.Create(&mappings).Error
	})
}

// GetFieldMappings retrieves the mapping set of a supplier in saved order
func (r *SuppliersRepository) GetFieldMappings(ctx context.Context, supplierID uuid.UUID) ([]models.SupplierFieldMapping, error) {
	var mappings []models.SupplierFieldMapping
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("position ASC").
		Find(&mappings).Error
	return mappings, err
}
