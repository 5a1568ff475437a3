package services

import (
	"consolidation-service/internal/models"
	"github.com/google/uuid"
)

// SelectBestOffer picks the winning offer of an aggregated identity.
// The comparison is a total order (lowest purchase price, then highest
// available quantity, then lowest configured supplier priority number, then
// earliest insertion order), so re-running selection on an unchanged offer
// set always yields the same winner.
//
// supplierPriority maps supplier ID to its configured priority; unknown
// suppliers rank last.
func SelectBestOffer(agg *AggregatedIdentity, supplierPriority map[uuid.UUID]int) *models.SupplierOffer {
	if agg == nil || len(agg.Offers) == 0 {
		return nil
	}

	priorityOf := func(offer *models.SupplierOffer) int {
		if p, ok := supplierPriority[offer.SupplierID]; ok {
			return p
		}
		return int(^uint(0) >> 1)
	}

	best := &agg.Offers[0]
	for i := 1; i < len(agg.Offers); i++ {
		candidate := &agg.Offers[i]
		switch {
		case candidate.PurchasePrice.LessThan(best.PurchasePrice):
			best = candidate
		case candidate.PurchasePrice.Equal(best.PurchasePrice):
			switch {
			case candidate.Quantity > best.Quantity:
				best = candidate
			case candidate.Quantity == best.Quantity && priorityOf(candidate) < priorityOf(best):
				best = candidate
				// equal on all three: the earlier offer (lower index) stays,
				// which is the insertion-order tie-break
			}
		}
	}
	return best
}
