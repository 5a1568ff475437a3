package repository

import (
	"context"
	"time"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublishRepositoryInterface defines database operations for publish records
type PublishRepositoryInterface interface {
	ListEligibleEntries(ctx context.Context, tenantID string, limit int) ([]models.MasterFileEntry, error)
	UpsertPending(ctx context.Context, tenantID string, entryID uuid.UUID) (*models.PublishRecord, error)
	MarkUploaded(ctx context.Context, id uuid.UUID, externalRef string, enrichment datatypes.JSON) error
	MarkError(ctx context.Context, id uuid.UUID, errorDetail string) error
	GetByEntry(ctx context.Context, tenantID string, entryID uuid.UUID) (*models.PublishRecord, error)
}

// PublishRepository handles database operations for publish records
type PublishRepository struct {
	db *gorm.DB
}

var _ PublishRepositoryInterface = (*PublishRepository)(nil)

// NewPublishRepository creates a new publish repository
func NewPublishRepository(db *gorm.DB) *PublishRepository {
	return &PublishRepository{db: db}
}

// ListEligibleEntries retrieves publish-eligible masterfile entries that have
// no uploaded record yet
func (r *PublishRepository) ListEligibleEntries(ctx context.Context, tenantID string, limit int) ([]models.MasterFileEntry, error) {
	var entries []models.MasterFileEntry
	query := r.db.WithContext(ctx).
		Model(&models.MasterFileEntry{}).
		Where("masterfile_entries.tenant_id = ? AND masterfile_entries.publish_eligible = true", tenantID).
		Joins("LEFT JOIN publish_records ON publish_records.master_file_entry_id = masterfile_entries.id AND publish_records.tenant_id = masterfile_entries.tenant_id").
		Where("publish_records.id IS NULL OR publish_records.status <> ? OR publish_records.updated_at < masterfile_entries.last_consolidated_at",
			models.PublishStatusUploaded).
		Order("masterfile_entries.last_consolidated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

// UpsertPending ensures a publish record exists for an entry and resets it
// to PENDING for the upcoming sync attempt
func (r *PublishRepository) UpsertPending(ctx context.Context, tenantID string, entryID uuid.UUID) (*models.PublishRecord, error) {
	record := &models.PublishRecord{
		ID:                uuid.New(),
		TenantID:          tenantID,
		MasterFileEntryID: entryID,
		Status:            models.PublishStatusPending,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "master_file_entry_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":       models.PublishStatusPending,
			"error_detail": "",
			"updated_at":   time.Now(),
		}),
	}).Create(record).Error
	if err != nil {
		return nil, err
	}
	return r.GetByEntry(ctx, tenantID, entryID)
}

// MarkUploaded records a successful storefront publish
func (r *PublishRepository) MarkUploaded(ctx context.Context, id uuid.UUID, externalRef string, enrichment datatypes.JSON) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.PublishRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.PublishStatusUploaded,
			"external_ref": externalRef,
			"enrichment":   enrichment,
			"error_detail": "",
			"synced_at":    &now,
			"updated_at":   now,
		}).Error
}

// MarkError records a per-record sync failure
func (r *PublishRepository) MarkError(ctx context.Context, id uuid.UUID, errorDetail string) error {
	return r.db.WithContext(ctx).
		Model(&models.PublishRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.PublishStatusError,
			"error_detail": errorDetail,
			"updated_at":   time.Now(),
		}).Error
}

// GetByEntry retrieves the publish record of a masterfile entry
func (r *PublishRepository) GetByEntry(ctx context.Context, tenantID string, entryID uuid.UUID) (*models.PublishRecord, error) {
	var record models.PublishRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND master_file_entry_id = ?", tenantID, entryID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
