package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consolidation-service/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache TTL constants
const (
	EntryCacheTTL = 5 * time.Minute // single entry cache
)

// MasterFileRepositoryInterface defines database operations for the
// consolidated catalog
type MasterFileRepositoryInterface interface {
	Upsert(ctx context.Context, entry *models.MasterFileEntry) error
	GetByIdentityKey(ctx context.Context, tenantID, identityKey string) (*models.MasterFileEntry, error)
	List(ctx context.Context, opts MasterFileListOptions) ([]models.MasterFileEntry, int64, error)
	FacetCounts(ctx context.Context, tenantID string) (*FacetCounts, error)
}

// MasterFileRepository handles database operations for masterfile entries
type MasterFileRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ MasterFileRepositoryInterface = (*MasterFileRepository)(nil)

// NewMasterFileRepository creates a new masterfile repository
func NewMasterFileRepository(db *gorm.DB, redis *redis.Client) *MasterFileRepository {
	return &MasterFileRepository{db: db, redis: redis}
}

func entryCacheKey(tenantID, identityKey string) string {
	return fmt.Sprintf("consolidation:entry:%s:%s", tenantID, identityKey)
}

// Upsert writes one consolidated entry, keyed by (tenant, identity key).
// Writes are idempotent per identity so a resumed pass can safely redo them.
func (r *MasterFileRepository) Upsert(ctx context.Context, entry *models.MasterFileEntry) error {
	entry.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "identity_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "brand", "category",
			"best_purchase_price", "sell_price", "currency_code",
			"winning_supplier_id", "aggregated_quantity", "offer_count",
			"publish_eligible", "last_consolidated_at", "updated_at",
		}),
	}).Create(entry).Error
	if err == nil && r.redis != nil {
		_ = r.redis.Del(ctx, entryCacheKey(entry.TenantID, entry.IdentityKey)).Err()
	}
	return err
}

// GetByIdentityKey retrieves one entry with read-through caching
func (r *MasterFileRepository) GetByIdentityKey(ctx context.Context, tenantID, identityKey string) (*models.MasterFileEntry, error) {
	cacheKey := entryCacheKey(tenantID, identityKey)

	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var entry models.MasterFileEntry
			if err := json.Unmarshal([]byte(val), &entry); err == nil {
				return &entry, nil
			}
		}
	}

	var entry models.MasterFileEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND identity_key = ?", tenantID, identityKey).
		First(&entry).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&entry); err == nil {
			_ = r.redis.Set(ctx, cacheKey, data, EntryCacheTTL).Err()
		}
	}

	return &entry, nil
}

// MasterFileListOptions contains options for listing consolidated entries
type MasterFileListOptions struct {
	TenantID        string
	Brand           string
	Category        string
	PublishEligible *bool
	Page            int
	Limit           int
}

// List retrieves consolidated entries with pagination and filtering
func (r *MasterFileRepository) List(ctx context.Context, opts MasterFileListOptions) ([]models.MasterFileEntry, int64, error) {
	var entries []models.MasterFileEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MasterFileEntry{}).
		Where("tenant_id = ?", opts.TenantID)
	if opts.Brand != "" {
		query = query.Where("brand = ?", opts.Brand)
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.PublishEligible != nil {
		query = query.Where("publish_eligible = ?", *opts.PublishEligible)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	err := query.
		Order("name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&entries).Error
	return entries, total, err
}

// FacetCounts holds post-filter counts per filterable dimension
type FacetCounts struct {
	Brands     map[string]int64 `json:"brands"`
	Categories map[string]int64 `json:"categories"`
}

// FacetCounts counts publish-eligible entries grouped by brand and category
func (r *MasterFileRepository) FacetCounts(ctx context.Context, tenantID string) (*FacetCounts, error) {
	facets := &FacetCounts{
		Brands:     make(map[string]int64),
		Categories: make(map[string]int64),
	}

	var rows []struct {
		Value string
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&models.MasterFileEntry{}).
		Select("brand as value, count(*) as count").
		Where("tenant_id = ? AND publish_eligible = true AND brand <> ''", tenantID).
		Group("brand").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		facets.Brands[row.Value] = row.Count
	}

	rows = rows[:0]
	if err := r.db.WithContext(ctx).Model(&models.MasterFileEntry{}).
		Select("category as value, count(*) as count").
		Where("tenant_id = ? AND publish_eligible = true AND category <> ''", tenantID).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		facets.Categories[row.Value] = row.Count
	}

	return facets, nil
}
