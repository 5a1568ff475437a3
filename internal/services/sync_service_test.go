package services

import (
	"context"
	"errors"
	"testing"

	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"consolidation-service/internal/clients"
)

// MockPublishRepository is a mock implementation of PublishRepositoryInterface
type MockPublishRepository struct {
	mock.Mock
}

var _ repository.PublishRepositoryInterface = (*MockPublishRepository)(nil)

func (m *MockPublishRepository) ListEligibleEntries(ctx context.Context, tenantID string, limit int) ([]models.MasterFileEntry, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]models.MasterFileEntry), args.Error(1)
}

func (m *MockPublishRepository) UpsertPending(ctx context.Context, tenantID string, entryID uuid.UUID) (*models.PublishRecord, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublishRecord), args.Error(1)
}

func (m *MockPublishRepository) MarkUploaded(ctx context.Context, id uuid.UUID, externalRef string, enrichment datatypes.JSON) error {
	args := m.Called(ctx, id, externalRef, enrichment)
	return args.Error(0)
}

func (m *MockPublishRepository) MarkError(ctx context.Context, id uuid.UUID, errorDetail string) error {
	args := m.Called(ctx, id, errorDetail)
	return args.Error(0)
}

func (m *MockPublishRepository) GetByEntry(ctx context.Context, tenantID string, entryID uuid.UUID) (*models.PublishRecord, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublishRecord), args.Error(1)
}

// MockEnrichmentClient is a mock implementation of EnrichmentClientInterface
type MockEnrichmentClient struct {
	mock.Mock
}

var _ clients.EnrichmentClientInterface = (*MockEnrichmentClient)(nil)

func (m *MockEnrichmentClient) Enrich(ctx context.Context, tenantID string, entry *models.MasterFileEntry) (map[string]string, error) {
	args := m.Called(ctx, tenantID, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// MockStorefrontClient is a mock implementation of StorefrontClientInterface
type MockStorefrontClient struct {
	mock.Mock
}

var _ clients.StorefrontClientInterface = (*MockStorefrontClient)(nil)

func (m *MockStorefrontClient) UploadProduct(ctx context.Context, entry *models.MasterFileEntry, enrichment map[string]string) (string, error) {
	args := m.Called(ctx, entry, enrichment)
	return args.String(0), args.Error(1)
}

func eligibleEntry(identityKey string) models.MasterFileEntry {
	return models.MasterFileEntry{
		ID:              uuid.New(),
		TenantID:        "tenant-123",
		IdentityKey:     identityKey,
		Name:            "HP 255 G8",
		SellPrice:       decimal.RequireFromString("467.88"),
		PublishEligible: true,
	}
}

func TestRunSync_UploadsEligibleEntries(t *testing.T) {
	ctx := context.Background()
	entry := eligibleEntry("ean:4711636118521")

	publishRepo := new(MockPublishRepository)
	jobsRepo := new(MockJobsRepository)
	enrichment := new(MockEnrichmentClient)
	storefront := new(MockStorefrontClient)

	job := &models.JobRun{ID: uuid.New(), Status: models.JobStatusRunning}
	jobsRepo.On("Start", ctx, "tenant-123", models.PhaseSyncShopify).Return(job, nil)
	jobsRepo.On("Finish", ctx, job.ID, models.JobStatusSuccess, mock.Anything).Return(nil)

	publishRepo.On("ListEligibleEntries", ctx, "tenant-123", 50).
		Return([]models.MasterFileEntry{entry}, nil)
	record := &models.PublishRecord{ID: uuid.New(), MasterFileEntryID: entry.ID, Status: models.PublishStatusPending}
	publishRepo.On("UpsertPending", ctx, "tenant-123", entry.ID).Return(record, nil)

	enriched := map[string]string{"title": "HP 255 G8 Notebook 15.6\""}
	enrichment.On("Enrich", ctx, "tenant-123", mock.Anything).Return(enriched, nil)
	storefront.On("UploadProduct", ctx, mock.Anything, enriched).Return("8800042", nil)
	publishRepo.On("MarkUploaded", ctx, record.ID, "8800042", mock.Anything).Return(nil)

	svc := NewSyncService(publishRepo, jobsRepo, enrichment, storefront, nil, testLogger(), 100, 50)
	result, err := svc.RunSync(ctx, "tenant-123")

	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSuccess, result.Status)
	assert.Equal(t, 1, result.EligibleCount)
	assert.Equal(t, 1, result.UploadedCount)
	assert.Equal(t, 0, result.FailedCount)
	publishRepo.AssertExpectations(t)
	jobsRepo.AssertExpectations(t)
}

func TestRunSync_UploadFailureIsRecordedNotFatal(t *testing.T) {
	ctx := context.Background()
	good := eligibleEntry("ean:4711636118521")
	bad := eligibleEntry("ean:4711636118522")

	publishRepo := new(MockPublishRepository)
	jobsRepo := new(MockJobsRepository)
	enrichment := new(MockEnrichmentClient)
	storefront := new(MockStorefrontClient)

	job := &models.JobRun{ID: uuid.New(), Status: models.JobStatusRunning}
	jobsRepo.On("Start", ctx, "tenant-123", models.PhaseSyncShopify).Return(job, nil)
	jobsRepo.On("Finish", ctx, job.ID, models.JobStatusWarning, mock.Anything).Return(nil)

	publishRepo.On("ListEligibleEntries", ctx, "tenant-123", 50).
		Return([]models.MasterFileEntry{good, bad}, nil)

	goodRecord := &models.PublishRecord{ID: uuid.New(), MasterFileEntryID: good.ID}
	badRecord := &models.PublishRecord{ID: uuid.New(), MasterFileEntryID: bad.ID}
	publishRepo.On("UpsertPending", ctx, "tenant-123", good.ID).Return(goodRecord, nil)
	publishRepo.On("UpsertPending", ctx, "tenant-123", bad.ID).Return(badRecord, nil)

	enrichment.On("Enrich", ctx, "tenant-123", mock.Anything).Return(map[string]string{}, nil)
	storefront.On("UploadProduct", ctx, mock.MatchedBy(func(e *models.MasterFileEntry) bool {
		return e.ID == good.ID
	}), mock.Anything).Return("8800042", nil)
	storefront.On("UploadProduct", ctx, mock.MatchedBy(func(e *models.MasterFileEntry) bool {
		return e.ID == bad.ID
	}), mock.Anything).Return("", errors.New("429 too many requests"))

	publishRepo.On("MarkUploaded", ctx, goodRecord.ID, "8800042", mock.Anything).Return(nil)
	publishRepo.On("MarkError", ctx, badRecord.ID, mock.Anything).Return(nil)

	svc := NewSyncService(publishRepo, jobsRepo, enrichment, storefront, nil, testLogger(), 100, 50)
	result, err := svc.RunSync(ctx, "tenant-123")

	require.NoError(t, err)
	assert.Equal(t, models.JobStatusWarning, result.Status)
	assert.Equal(t, 1, result.UploadedCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "ean:4711636118522")
	publishRepo.AssertExpectations(t)
}

func TestRunSync_NothingEligible(t *testing.T) {
	ctx := context.Background()

	publishRepo := new(MockPublishRepository)
	jobsRepo := new(MockJobsRepository)

	job := &models.JobRun{ID: uuid.New(), Status: models.JobStatusRunning}
	jobsRepo.On("Start", ctx, "tenant-123", models.PhaseSyncShopify).Return(job, nil)
	jobsRepo.On("Finish", ctx, job.ID, models.JobStatusSuccess, mock.Anything).Return(nil)
	publishRepo.On("ListEligibleEntries", ctx, "tenant-123", 50).
		Return([]models.MasterFileEntry{}, nil)

	svc := NewSyncService(publishRepo, jobsRepo, new(MockEnrichmentClient), new(MockStorefrontClient), nil, testLogger(), 100, 50)
	result, err := svc.RunSync(ctx, "tenant-123")

	require.NoError(t, err)
	assert.Equal(t, 0, result.EligibleCount)
	assert.Equal(t, 0, result.UploadedCount)
}
