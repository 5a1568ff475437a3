package services

import (
	"testing"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEANStatus(t *testing.T) {
	assert.Equal(t, models.OfferEmptyEAN, EANStatus(""))
	assert.Equal(t, models.OfferEmptyEAN, EANStatus("   "))
	assert.Equal(t, models.OfferInvalidEAN, EANStatus("12AB34"))
	assert.Equal(t, models.OfferInvalidEAN, EANStatus("4711-636"))
	assert.Equal(t, models.OfferValid, EANStatus("4711636118521"))
	assert.Equal(t, models.OfferValid, EANStatus("  4711636118521  "))
	// Short and leading-zero codes are accepted, no length enforcement
	assert.Equal(t, models.OfferValid, EANStatus("12345"))
	assert.Equal(t, models.OfferValid, EANStatus("0004711"))
}

func TestParseDecimal_PointFormat(t *testing.T) {
	d, ok := ParseDecimal("1234.56", models.DecimalFormatPoint)
	require.True(t, ok)
	assert.Equal(t, "1234.56", d.String())

	d, ok = ParseDecimal("1,234.56", models.DecimalFormatPoint)
	require.True(t, ok)
	assert.Equal(t, "1234.56", d.String())

	_, ok = ParseDecimal("", models.DecimalFormatPoint)
	assert.False(t, ok)

	_, ok = ParseDecimal("abc", models.DecimalFormatPoint)
	assert.False(t, ok)
}

func TestParseDecimal_CommaFormat(t *testing.T) {
	d, ok := ParseDecimal("1234,56", models.DecimalFormatComma)
	require.True(t, ok)
	assert.Equal(t, "1234.56", d.String())

	d, ok = ParseDecimal("1.234,56", models.DecimalFormatComma)
	require.True(t, ok)
	assert.Equal(t, "1234.56", d.String())
}

func testSupplier() *models.Supplier {
	return &models.Supplier{
		ID:            uuid.New(),
		TenantID:      "tenant-123",
		Name:          "ACME Wholesale",
		Code:          "ACME",
		Priority:      10,
		DecimalFormat: models.DecimalFormatPoint,
		CurrencyCode:  "EUR",
	}
}

func TestNormalizeRow_ValidRow(t *testing.T) {
	n := NewNormalizer()
	supplier := testSupplier()
	run := uuid.New()

	row := map[models.CanonicalField]string{
		models.FieldEAN:        "4711636118521",
		models.FieldPartNumber: "HP-255-G8",
		models.FieldName:       "HP 255 G8 Notebook",
		models.FieldBrand:      "HP",
		models.FieldCategory:   "Notebooks",
		models.FieldPrice:      "389.90",
		models.FieldQuantity:   "12",
	}

	offer, rejection := n.NormalizeRow(supplier, run, row, 2, 0)
	require.Nil(t, rejection)
	require.NotNil(t, offer)
	assert.Equal(t, "4711636118521", *offer.EAN)
	assert.Equal(t, models.OfferValid, offer.ValidationStatus)
	assert.Equal(t, "389.9", offer.PurchasePrice.String())
	assert.Equal(t, 12, offer.Quantity)
	assert.Equal(t, "EUR", offer.CurrencyCode)
	assert.Equal(t, run, offer.ImportRun)
}

func TestNormalizeRow_EmptyMappedEANRejects(t *testing.T) {
	n := NewNormalizer()
	supplier := testSupplier()

	row := map[models.CanonicalField]string{
		models.FieldEAN:        "   ",
		models.FieldPartNumber: "HP-255-G8",
		models.FieldPrice:      "389.90",
		models.FieldQuantity:   "12",
	}

	offer, rejection := n.NormalizeRow(supplier, uuid.New(), row, 3, 0)
	assert.Nil(t, offer)
	require.NotNil(t, rejection)
	assert.Equal(t, models.RejectEmptyEAN, rejection.Reason)
	assert.Equal(t, 3, rejection.RowNumber)
}

func TestNormalizeRow_NonNumericEANRejects(t *testing.T) {
	n := NewNormalizer()
	supplier := testSupplier()

	row := map[models.CanonicalField]string{
		models.FieldEAN:        "12AB34",
		models.FieldPartNumber: "HP-255-G8",
		models.FieldPrice:      "389.90",
		models.FieldQuantity:   "12",
	}

	offer, rejection := n.NormalizeRow(supplier, uuid.New(), row, 4, 0)
	assert.Nil(t, offer)
	require.NotNil(t, rejection)
	assert.Equal(t, models.RejectNonNumericEAN, rejection.Reason)
}

func TestNormalizeRow_UnmappedEANFallsBackToPartNumber(t *testing.T) {
	n := NewNormalizer()
	supplier := testSupplier()

	// No EAN key at all: the supplier maps no EAN column
	row := map[models.CanonicalField]string{
		models.FieldPartNumber: "HP-255-G8",
		models.FieldBrand:      "HP",
		models.FieldPrice:      "389.90",
		models.FieldQuantity:   "12",
	}

	offer, rejection := n.NormalizeRow(supplier, uuid.New(), row, 2, 0)
	require.Nil(t, rejection)
	require.NotNil(t, offer)
	assert.Nil(t, offer.EAN)
	assert.Equal(t, models.OfferValid, offer.ValidationStatus)
}

func TestNormalizeRow_NoIdentityAtAllRejects(t *testing.T) {
	n := NewNormalizer()
	supplier := testSupplier()

	row := map[models.CanonicalField]string{
		models.FieldName:     "Mystery item",
		models.FieldPrice:    "9.99",
		models.FieldQuantity: "1",
	}

	offer, rejection := n.NormalizeRow(supplier, uuid.New(), row, 5, 0)
	assert.Nil(t, offer)
	require.NotNil(t, rejection)
	assert.Equal(t, models.RejectEmptyEAN, rejection.Reason)
}

func TestNormalizeRow_MissingPriceAndQuantity(t *testing.T) {
	n := NewNormalizer()
	supplier := testSupplier()

	row := map[models.CanonicalField]string{
		models.FieldEAN:        "4711636118521",
		models.FieldPartNumber: "HP-255-G8",
		models.FieldQuantity:   "12",
	}
	offer, rejection := n.NormalizeRow(supplier, uuid.New(), row, 2, 0)
	assert.Nil(t, offer)
	require.NotNil(t, rejection)
	assert.Equal(t, models.RejectMissingPrice, rejection.Reason)

	row = map[models.CanonicalField]string{
		models.FieldEAN:        "4711636118521",
		models.FieldPartNumber: "HP-255-G8",
		models.FieldPrice:      "389.90",
		models.FieldQuantity:   "many",
	}
	offer, rejection = n.NormalizeRow(supplier, uuid.New(), row, 3, 0)
	assert.Nil(t, offer)
	require.NotNil(t, rejection)
	assert.Equal(t, models.RejectMissingQuantity, rejection.Reason)
}

func TestNormalizeRow_CommaDecimalSupplier(t *testing.T) {
	n := NewNormalizer()
	supplier := testSupplier()
	supplier.DecimalFormat = models.DecimalFormatComma

	row := map[models.CanonicalField]string{
		models.FieldEAN:        "4711636118521",
		models.FieldPartNumber: "HP-255-G8",
		models.FieldPrice:      "1.389,90",
		models.FieldQuantity:   "12",
	}

	offer, rejection := n.NormalizeRow(supplier, uuid.New(), row, 2, 0)
	require.Nil(t, rejection)
	require.NotNil(t, offer)
	assert.Equal(t, "1389.9", offer.PurchasePrice.String())
}
