package services

import (
	"fmt"
	"strings"

	"consolidation-service/internal/models"
)

// AggregatedIdentity groups every current valid offer sharing one product
// identity across suppliers. Contributing offers keep insertion order
// (supplier processing order, then import order within a supplier).
type AggregatedIdentity struct {
	Key           string
	Name          string
	Brand         string
	Category      string
	Offers        []models.SupplierOffer
	TotalQuantity int
}

// IdentityKey derives the grouping key of an offer. EAN is the primary
// identity space; offers without an EAN fall back to the normalized
// (brand, part number) tuple. The two spaces never merge: an EAN key can
// never collide with a part-number key.
func IdentityKey(offer *models.SupplierOffer) string {
	if offer.EAN != nil && *offer.EAN != "" {
		return "ean:" + *offer.EAN
	}
	return fmt.Sprintf("pn:%s|%s", normalizeToken(offer.Brand), normalizeToken(offer.PartNumber))
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Aggregate folds the complete valid-offer snapshot into a fresh aggregate
// map. It is a pure recomputation: the previous aggregate is discarded
// entirely, never patched, so partial updates cannot drift. The offers slice
// must already be in supplier processing order.
func Aggregate(offers []models.SupplierOffer) map[string]*AggregatedIdentity {
	aggregates := make(map[string]*AggregatedIdentity)
	for _, offer := range offers {
		if offer.ValidationStatus != models.OfferValid {
			continue
		}
		key := IdentityKey(&offer)
		agg, ok := aggregates[key]
		if !ok {
			agg = &AggregatedIdentity{
				Key:      key,
				Name:     offer.Name,
				Brand:    offer.Brand,
				Category: offer.Category,
			}
			aggregates[key] = agg
		}
		agg.Offers = append(agg.Offers, offer)
		// Name/brand/category of the first offer win; later suppliers only
		// fill gaps
		if agg.Name == "" {
			agg.Name = offer.Name
		}
		if agg.Brand == "" {
			agg.Brand = offer.Brand
		}
		if agg.Category == "" {
			agg.Category = offer.Category
		}
	}
	// totalQuantity is recomputed from membership, never incrementally
	// mutated
	for _, agg := range aggregates {
		total := 0
		for _, offer := range agg.Offers {
			total += offer.Quantity
		}
		agg.TotalQuantity = total
	}
	return aggregates
}
