package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"consolidation-service/internal/events"
	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PassResult summarizes one completed consolidation pass
type PassResult struct {
	JobRunID        uuid.UUID        `json:"jobRunId"`
	Status          models.JobStatus `json:"status"`
	SupplierCount   int              `json:"supplierCount"`
	OfferCount      int              `json:"offerCount"`
	IdentityCount   int              `json:"identityCount"`
	EligibleCount   int              `json:"eligibleCount"`
	SkippedNoMarkup int              `json:"skippedNoMarkup"`
	Warnings        []string         `json:"warnings,omitempty"`
	DurationMs      int64            `json:"durationMs"`
}

// MasterFileBuilder runs the consolidation pass: load every active
// supplier's offer snapshot, aggregate by identity, pick the best offer,
// price it, evaluate filter rules and upsert the consolidated entries.
type MasterFileBuilder struct {
	suppliersRepo  repository.SuppliersRepositoryInterface
	offersRepo     repository.OffersRepositoryInterface
	masterfileRepo repository.MasterFileRepositoryInterface
	rulesRepo      repository.RulesRepositoryInterface
	jobsRepo       repository.JobsRepositoryInterface
	pricing        *PricingCalculator
	filters        *FilterEngine
	gate           *TenantPassGate
	publisher      *events.Publisher
	logger         *logrus.Logger

	workers             int
	supplierLoadTimeout time.Duration
	defaultCurrency     string
}

// NewMasterFileBuilder creates a new masterfile builder
func NewMasterFileBuilder(
	suppliersRepo repository.SuppliersRepositoryInterface,
	offersRepo repository.OffersRepositoryInterface,
	masterfileRepo repository.MasterFileRepositoryInterface,
	rulesRepo repository.RulesRepositoryInterface,
	jobsRepo repository.JobsRepositoryInterface,
	gate *TenantPassGate,
	publisher *events.Publisher,
	logger *logrus.Logger,
	workers int,
	supplierLoadTimeout time.Duration,
	defaultCurrency string,
) *MasterFileBuilder {
	if workers <= 0 {
		workers = 8
	}
	return &MasterFileBuilder{
		suppliersRepo:       suppliersRepo,
		offersRepo:          offersRepo,
		masterfileRepo:      masterfileRepo,
		rulesRepo:           rulesRepo,
		jobsRepo:            jobsRepo,
		pricing:             NewPricingCalculator(),
		filters:             NewFilterEngine(),
		gate:                gate,
		publisher:           publisher,
		logger:              logger,
		workers:             workers,
		supplierLoadTimeout: supplierLoadTimeout,
		defaultCurrency:     defaultCurrency,
	}
}

// RunPass executes one full consolidation pass for a tenant. At most one
// pass per tenant runs at a time; a second trigger returns
// ErrPassAlreadyRunning. The pass recomputes every consolidated entry from
// the current offer snapshots.
func (b *MasterFileBuilder) RunPass(ctx context.Context, tenantID string) (*PassResult, error) {
	release, err := b.gate.TryAcquire(tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := b.jobsRepo.Start(ctx, tenantID, models.PhaseConsolidate)
	if err != nil {
		return nil, fmt.Errorf("failed to start consolidation run: %w", err)
	}

	started := time.Now()
	result, runErr := b.runPass(ctx, tenantID, job.ID)
	if runErr != nil {
		detail := models.JSON{"error": runErr.Error()}
		if finishErr := b.jobsRepo.Finish(ctx, job.ID, models.JobStatusError, detail); finishErr != nil {
			b.logger.WithError(finishErr).Error("Failed to close consolidation run")
		}
		return nil, runErr
	}

	result.JobRunID = job.ID
	result.DurationMs = time.Since(started).Milliseconds()
	result.Status = models.JobStatusSuccess
	if len(result.Warnings) > 0 {
		result.Status = models.JobStatusWarning
	}

	detail := models.JSON{
		"supplierCount":   result.SupplierCount,
		"offerCount":      result.OfferCount,
		"identityCount":   result.IdentityCount,
		"eligibleCount":   result.EligibleCount,
		"skippedNoMarkup": result.SkippedNoMarkup,
		"durationMs":      result.DurationMs,
	}
	if len(result.Warnings) > 0 {
		detail["warnings"] = result.Warnings
	}
	if err := b.jobsRepo.Finish(ctx, job.ID, result.Status, detail); err != nil {
		b.logger.WithError(err).Error("Failed to close consolidation run")
	}

	b.publisher.PublishConsolidated(tenantID, job.ID, result.IdentityCount, result.EligibleCount)

	b.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"job_run_id": job.ID,
		"status":     result.Status,
		"identities": result.IdentityCount,
		"eligible":   result.EligibleCount,
	}).Info("Consolidation pass finished")

	return result, nil
}

func (b *MasterFileBuilder) runPass(ctx context.Context, tenantID string, jobRunID uuid.UUID) (*PassResult, error) {
	result := &PassResult{}

	suppliers, err := b.suppliersRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	result.SupplierCount = len(suppliers)

	supplierPriority := make(map[uuid.UUID]int, len(suppliers))
	for _, s := range suppliers {
		supplierPriority[s.ID] = s.Priority
	}

	// Load each supplier's snapshot under its own timeout. A supplier that
	// cannot be loaded in time is skipped and downgrades the run to WARNING
	// rather than failing the whole pass.
	var offers []models.SupplierOffer
	for _, supplier := range suppliers {
		loadCtx, cancel := context.WithTimeout(ctx, b.supplierLoadTimeout)
		supplierOffers, err := b.offersRepo.GetValidOffersBySupplier(loadCtx, tenantID, supplier.ID)
		cancel()
		if err != nil {
			warning := fmt.Sprintf("supplier %s (%s) skipped: %v", supplier.Code, supplier.ID, err)
			result.Warnings = append(result.Warnings, warning)
			b.logger.WithError(err).WithFields(logrus.Fields{
				"tenant_id":   tenantID,
				"supplier_id": supplier.ID,
			}).Warn("Skipping supplier in consolidation pass")
			continue
		}
		offers = append(offers, supplierOffers...)
	}
	result.OfferCount = len(offers)

	markupRules, err := b.rulesRepo.ListActiveMarkupRules(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load markup rules: %w", err)
	}
	filterRules, err := b.rulesRepo.ListActiveFilterRules(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load filter rules: %w", err)
	}

	aggregates := Aggregate(offers)
	result.IdentityCount = len(aggregates)

	now := time.Now()

	type upsertOutcome struct {
		eligible bool
		skipped  bool
		err      error
	}

	jobs := make(chan *AggregatedIdentity)
	outcomes := make(chan upsertOutcome, len(aggregates))

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for agg := range jobs {
				eligible, skipped, err := b.consolidateIdentity(ctx, tenantID, agg, supplierPriority, markupRules, filterRules, now)
				outcomes <- upsertOutcome{eligible: eligible, skipped: skipped, err: err}
			}
		}()
	}

	for _, agg := range aggregates {
		jobs <- agg
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil && firstErr == nil {
			firstErr = outcome.err
		}
		if outcome.skipped {
			result.SkippedNoMarkup++
		}
		if outcome.eligible {
			result.EligibleCount++
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if result.SkippedNoMarkup > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d identities skipped: no markup rule matched and no default rule configured", result.SkippedNoMarkup))
	}

	return result, nil
}

func (b *MasterFileBuilder) consolidateIdentity(
	ctx context.Context,
	tenantID string,
	agg *AggregatedIdentity,
	supplierPriority map[uuid.UUID]int,
	markupRules []models.MarkupRule,
	filterRules []models.FilterRule,
	consolidatedAt time.Time,
) (eligible, skipped bool, err error) {
	best := SelectBestOffer(agg, supplierPriority)
	if best == nil {
		return false, false, nil
	}

	markup, err := b.pricing.ResolveMarkup(markupRules, agg.Brand, agg.Category)
	if err != nil {
		// No applicable markup means the identity cannot be priced; it is
		// skipped rather than written with a bogus sell price
		return false, true, nil
	}

	currency := best.CurrencyCode
	if currency == "" {
		currency = b.defaultCurrency
	}
	sellPrice := b.pricing.SellPrice(best.PurchasePrice, markup, currency)
	eligible = b.filters.Evaluate(filterRules, agg.Brand, agg.Category)

	entry := &models.MasterFileEntry{
		ID:                 uuid.New(),
		TenantID:           tenantID,
		IdentityKey:        agg.Key,
		Name:               agg.Name,
		Brand:              agg.Brand,
		Category:           agg.Category,
		BestPurchasePrice:  best.PurchasePrice,
		SellPrice:          sellPrice,
		CurrencyCode:       currency,
		WinningSupplierID:  best.SupplierID,
		AggregatedQuantity: agg.TotalQuantity,
		OfferCount:         len(agg.Offers),
		PublishEligible:    eligible,
		LastConsolidatedAt: consolidatedAt,
		CreatedAt:          consolidatedAt,
	}
	if err := b.masterfileRepo.Upsert(ctx, entry); err != nil {
		return false, false, fmt.Errorf("failed to upsert entry %s: %w", agg.Key, err)
	}
	return eligible, false, nil
}
