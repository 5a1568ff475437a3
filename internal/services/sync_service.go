package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consolidation-service/internal/clients"
	"consolidation-service/internal/events"
	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/datatypes"
)

// SyncResult summarizes one storefront sync run
type SyncResult struct {
	JobRunID      uuid.UUID        `json:"jobRunId"`
	Status        models.JobStatus `json:"status"`
	EligibleCount int              `json:"eligibleCount"`
	UploadedCount int              `json:"uploadedCount"`
	FailedCount   int              `json:"failedCount"`
	Failures      []string         `json:"failures,omitempty"`
	DurationMs    int64            `json:"durationMs"`
}

// SyncService pushes publish-eligible consolidated entries to the
// storefront: enrich, upload, record the outcome per entry. One failed
// entry never aborts the run.
type SyncService struct {
	publishRepo repository.PublishRepositoryInterface
	jobsRepo    repository.JobsRepositoryInterface
	enrichment  clients.EnrichmentClientInterface
	storefront  clients.StorefrontClientInterface
	publisher   *events.Publisher
	logger      *logrus.Logger

	limiter   *rate.Limiter
	batchSize int
}

// NewSyncService creates a new storefront sync service
func NewSyncService(
	publishRepo repository.PublishRepositoryInterface,
	jobsRepo repository.JobsRepositoryInterface,
	enrichment clients.EnrichmentClientInterface,
	storefront clients.StorefrontClientInterface,
	publisher *events.Publisher,
	logger *logrus.Logger,
	ratePerSecond float64,
	batchSize int,
) *SyncService {
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncService{
		publishRepo: publishRepo,
		jobsRepo:    jobsRepo,
		enrichment:  enrichment,
		storefront:  storefront,
		publisher:   publisher,
		logger:      logger,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		batchSize:   batchSize,
	}
}

// RunSync publishes one batch of eligible entries to the storefront.
// Per-entry failures are recorded on the publish record and downgrade the
// run to WARNING; the run only errors when the batch itself cannot be
// processed.
func (s *SyncService) RunSync(ctx context.Context, tenantID string) (*SyncResult, error) {
	job, err := s.jobsRepo.Start(ctx, tenantID, models.PhaseSyncShopify)
	if err != nil {
		return nil, fmt.Errorf("failed to start sync run: %w", err)
	}

	started := time.Now()
	result, runErr := s.runSync(ctx, tenantID)
	if runErr != nil {
		detail := models.JSON{"error": runErr.Error()}
		if finishErr := s.jobsRepo.Finish(ctx, job.ID, models.JobStatusError, detail); finishErr != nil {
			s.logger.WithError(finishErr).Error("Failed to close sync run")
		}
		return nil, runErr
	}

	result.JobRunID = job.ID
	result.DurationMs = time.Since(started).Milliseconds()
	result.Status = models.JobStatusSuccess
	if result.FailedCount > 0 {
		result.Status = models.JobStatusWarning
	}

	detail := models.JSON{
		"eligibleCount": result.EligibleCount,
		"uploadedCount": result.UploadedCount,
		"failedCount":   result.FailedCount,
		"durationMs":    result.DurationMs,
	}
	if len(result.Failures) > 0 {
		detail["failures"] = result.Failures
	}
	if err := s.jobsRepo.Finish(ctx, job.ID, result.Status, detail); err != nil {
		s.logger.WithError(err).Error("Failed to close sync run")
	}

	s.publisher.PublishSynced(tenantID, job.ID, result.UploadedCount, result.FailedCount)

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"job_run_id": job.ID,
		"status":     result.Status,
		"uploaded":   result.UploadedCount,
		"failed":     result.FailedCount,
	}).Info("Storefront sync finished")

	return result, nil
}

func (s *SyncService) runSync(ctx context.Context, tenantID string) (*SyncResult, error) {
	result := &SyncResult{}

	entries, err := s.publishRepo.ListEligibleEntries(ctx, tenantID, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible entries: %w", err)
	}
	result.EligibleCount = len(entries)

	for i := range entries {
		entry := &entries[i]
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		record, err := s.publishRepo.UpsertPending(ctx, tenantID, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare publish record for %s: %w", entry.IdentityKey, err)
		}

		if err := s.syncEntry(ctx, tenantID, entry, record); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", entry.IdentityKey, err))
			if markErr := s.publishRepo.MarkError(ctx, record.ID, err.Error()); markErr != nil {
				s.logger.WithError(markErr).Warn("Failed to record publish error")
			}
			continue
		}
		result.UploadedCount++
	}

	return result, nil
}

func (s *SyncService) syncEntry(ctx context.Context, tenantID string, entry *models.MasterFileEntry, record *models.PublishRecord) error {
	enrichment, err := s.enrichment.Enrich(ctx, tenantID, entry)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	externalRef, err := s.storefront.UploadProduct(ctx, entry, enrichment)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var enrichmentJSON datatypes.JSON
	if len(enrichment) > 0 {
		if data, err := json.Marshal(enrichment); err == nil {
			enrichmentJSON = data
		}
	}
	return s.publishRepo.MarkUploaded(ctx, record.ID, externalRef, enrichmentJSON)
}
