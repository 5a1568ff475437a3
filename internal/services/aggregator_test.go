package services

import (
	"testing"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validOffer(supplierID uuid.UUID, ean string, price string, qty int) models.SupplierOffer {
	var eanPtr *string
	if ean != "" {
		eanPtr = &ean
	}
	return models.SupplierOffer{
		ID:               uuid.New(),
		SupplierID:       supplierID,
		EAN:              eanPtr,
		PartNumber:       "PN-1",
		Name:             "Widget",
		Brand:            "ACME",
		Category:         "Widgets",
		PurchasePrice:    decimal.RequireFromString(price),
		Quantity:         qty,
		ValidationStatus: models.OfferValid,
	}
}

func TestIdentityKey_EANAndPartNumberSpacesNeverMerge(t *testing.T) {
	withEAN := validOffer(uuid.New(), "4711636118521", "10.00", 1)
	withoutEAN := validOffer(uuid.New(), "", "10.00", 1)
	withoutEAN.Brand = "ACME"
	withoutEAN.PartNumber = "4711636118521"

	assert.Equal(t, "ean:4711636118521", IdentityKey(&withEAN))
	assert.Equal(t, "pn:acme|4711636118521", IdentityKey(&withoutEAN))
	assert.NotEqual(t, IdentityKey(&withEAN), IdentityKey(&withoutEAN))
}

func TestIdentityKey_NormalizesBrandAndPartNumber(t *testing.T) {
	a := validOffer(uuid.New(), "", "10.00", 1)
	a.Brand = "  ACME  Corp "
	a.PartNumber = "HP-255"
	b := validOffer(uuid.New(), "", "10.00", 1)
	b.Brand = "acme corp"
	b.PartNumber = "hp-255"

	assert.Equal(t, IdentityKey(&a), IdentityKey(&b))
}

func TestAggregate_SumsQuantitiesAcrossSuppliers(t *testing.T) {
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()
	offers := []models.SupplierOffer{
		validOffer(s1, "4711636118521", "50.00", 3),
		validOffer(s2, "4711636118521", "45.00", 2),
		validOffer(s3, "4711636118521", "47.50", 7),
	}

	aggregates := Aggregate(offers)
	require.Len(t, aggregates, 1)

	agg := aggregates["ean:4711636118521"]
	require.NotNil(t, agg)
	assert.Equal(t, 12, agg.TotalQuantity)
	assert.Len(t, agg.Offers, 3)
}

func TestAggregate_SkipsNonValidOffers(t *testing.T) {
	s1 := uuid.New()
	bad := validOffer(s1, "4711636118521", "50.00", 3)
	bad.ValidationStatus = models.OfferInvalidEAN
	good := validOffer(s1, "4711636118521", "45.00", 2)

	aggregates := Aggregate([]models.SupplierOffer{bad, good})
	agg := aggregates["ean:4711636118521"]
	require.NotNil(t, agg)
	assert.Equal(t, 2, agg.TotalQuantity)
	assert.Len(t, agg.Offers, 1)
}

func TestAggregate_FirstOfferWinsMetadataWithGapFilling(t *testing.T) {
	s1, s2 := uuid.New(), uuid.New()
	first := validOffer(s1, "4711636118521", "50.00", 3)
	first.Name = "Widget Basic"
	first.Brand = ""
	second := validOffer(s2, "4711636118521", "45.00", 2)
	second.Name = "Widget Deluxe Edition"
	second.Brand = "ACME"

	aggregates := Aggregate([]models.SupplierOffer{first, second})
	agg := aggregates["ean:4711636118521"]
	require.NotNil(t, agg)
	assert.Equal(t, "Widget Basic", agg.Name, "first supplier's name wins")
	assert.Equal(t, "ACME", agg.Brand, "later suppliers fill missing fields")
}

func TestAggregate_IsPureRecomputation(t *testing.T) {
	s1 := uuid.New()
	offers := []models.SupplierOffer{
		validOffer(s1, "4711636118521", "50.00", 3),
	}

	before := Aggregate(offers)
	assert.Equal(t, 3, before["ean:4711636118521"].TotalQuantity)

	// A changed snapshot yields a fresh result with no residue of the prior
	// aggregate
	offers[0].Quantity = 9
	after := Aggregate(offers)
	assert.Equal(t, 9, after["ean:4711636118521"].TotalQuantity)
}
