package repository

import (
	"context"
	"time"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobsRepositoryInterface defines database operations for job runs
type JobsRepositoryInterface interface {
	Start(ctx context.Context, tenantID string, phase models.JobPhase) (*models.JobRun, error)
	Finish(ctx context.Context, id uuid.UUID, status models.JobStatus, detail models.JSON) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobRun, error)
	List(ctx context.Context, opts JobListOptions) ([]models.JobRun, int64, error)
	HasRunning(ctx context.Context, tenantID string, phase models.JobPhase) (bool, error)
	ReclaimStale(ctx context.Context, threshold time.Duration) (int64, error)
}

// JobsRepository handles database operations for job runs
type JobsRepository struct {
	db *gorm.DB
}

var _ JobsRepositoryInterface = (*JobsRepository)(nil)

// NewJobsRepository creates a new jobs repository
func NewJobsRepository(db *gorm.DB) *JobsRepository {
	return &JobsRepository{db: db}
}

// Start creates a new job run in RUNNING state
func (r *JobsRepository) Start(ctx context.Context, tenantID string, phase models.JobPhase) (*models.JobRun, error) {
	job := &models.JobRun{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Phase:     phase,
		Status:    models.JobStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// Finish transitions a running job to a terminal status. The guard on the
// current status makes terminal states immutable: a job already closed (or
// reclaimed by the sweep) is never overwritten.
func (r *JobsRepository) Finish(ctx context.Context, id uuid.UUID, status models.JobStatus, detail models.JSON) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.JobRun{}).
		Where("id = ? AND status = ?", id, models.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":           status,
			"finished_at":      &now,
			"duration_seconds": gorm.Expr("EXTRACT(EPOCH FROM (? - started_at))::int", now),
			"detail":           detail,
			"updated_at":       now,
		}).Error
}

// GetByID retrieves a job run by ID
func (r *JobsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobRun, error) {
	var job models.JobRun
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// JobListOptions contains options for listing job runs
type JobListOptions struct {
	TenantID string
	Phase    string
	Status   string
	Limit    int
	Offset   int
}

// List retrieves job runs with pagination and filtering
func (r *JobsRepository) List(ctx context.Context, opts JobListOptions) ([]models.JobRun, int64, error) {
	var jobs []models.JobRun
	var total int64

	query := r.db.WithContext(ctx).Model(&models.JobRun{})
	if opts.TenantID != "" {
		query = query.Where("tenant_id = ?", opts.TenantID)
	}
	if opts.Phase != "" {
		query = query.Where("phase = ?", opts.Phase)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Order("started_at DESC").Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// HasRunning reports whether a run of the given phase is currently open
func (r *JobsRepository) HasRunning(ctx context.Context, tenantID string, phase models.JobPhase) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JobRun{}).
		Where("tenant_id = ? AND phase = ? AND status = ?", tenantID, phase, models.JobStatusRunning).
		Count(&count).Error
	return count > 0, err
}

// ReclaimStale force-transitions running jobs whose startedAt exceeds the
// staleness threshold to ERROR with a reclaimed-job detail. A single guarded
// UPDATE, so concurrent sweeps are safe and idempotent.
func (r *JobsRepository) ReclaimStale(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold)
	now := time.Now()
	detail := models.JSON{
		"reclaimed":   true,
		"reason":      "stuck job reclaimed by sweep",
		"reclaimedAt": now.Format(time.RFC3339),
	}

	res := r.db.WithContext(ctx).
		Model(&models.JobRun{}).
		Where("status = ? AND started_at < ?", models.JobStatusRunning, cutoff).
		Updates(map[string]interface{}{
			"status":           models.JobStatusError,
			"finished_at":      &now,
			"duration_seconds": gorm.Expr("EXTRACT(EPOCH FROM (? - started_at))::int", now),
			"detail":           detail,
			"updated_at":       now,
		})
	return res.RowsAffected, res.Error
}
