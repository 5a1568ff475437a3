package services

import (
	"strings"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Normalizer turns canonical rows into SupplierOffers, validating EANs and
// coercing numerics per the supplier's declared format.
type Normalizer struct{}

// NewNormalizer creates a new row normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// EANStatus classifies an EAN string after trimming. Any all-digit value is
// accepted regardless of length: suppliers send truncated and
// leading-zero-stripped codes, so checksum/GTIN-13 enforcement would reject
// real data.
func EANStatus(raw string) models.OfferValidationStatus {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.OfferEmptyEAN
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return models.OfferInvalidEAN
		}
	}
	return models.OfferValid
}

// ParseDecimal parses a numeric string using the supplier-declared decimal
// convention, stripping the matching thousands separator first.
func ParseDecimal(raw string, format models.DecimalFormat) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	switch format {
	case models.DecimalFormatComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeRow validates one canonical row and produces either a
// SupplierOffer or a rejection with its reason and a row sample for operator
// review.
//
// A supplier that maps no EAN column at all yields offers with a nil EAN;
// those group in the part-number identity space. A mapped but empty or
// non-numeric EAN rejects the row instead. rowNumber is the 1-based position
// in the source file, seq the accepted-row counter preserved for
// deterministic tie-breaking.
func (n *Normalizer) NormalizeRow(supplier *models.Supplier, importRun uuid.UUID, row map[models.CanonicalField]string, rowNumber, seq int) (*models.SupplierOffer, *models.RowRejection) {
	reject := func(reason models.RejectReason) *models.RowRejection {
		sample := make(models.JSON, len(row))
		for field, value := range row {
			sample[string(field)] = value
		}
		return &models.RowRejection{
			SupplierID: supplier.ID,
			ImportRun:  importRun,
			RowNumber:  rowNumber,
			Reason:     reason,
			Sample:     sample,
		}
	}

	var ean *string
	if eanRaw, mapped := row[models.FieldEAN]; mapped {
		switch EANStatus(eanRaw) {
		case models.OfferEmptyEAN:
			return nil, reject(models.RejectEmptyEAN)
		case models.OfferInvalidEAN:
			return nil, reject(models.RejectNonNumericEAN)
		}
		trimmed := strings.TrimSpace(eanRaw)
		ean = &trimmed
	} else if strings.TrimSpace(row[models.FieldPartNumber]) == "" {
		// No EAN mapping and no part number leaves the row without any
		// identity, in either space
		return nil, reject(models.RejectEmptyEAN)
	}

	price, ok := ParseDecimal(row[models.FieldPrice], supplier.DecimalFormat)
	if !ok {
		return nil, reject(models.RejectMissingPrice)
	}

	qtyDec, ok := ParseDecimal(row[models.FieldQuantity], supplier.DecimalFormat)
	if !ok {
		return nil, reject(models.RejectMissingQuantity)
	}
	quantity := int(qtyDec.IntPart())

	offer := &models.SupplierOffer{
		SupplierID:       supplier.ID,
		EAN:              ean,
		PartNumber:       strings.TrimSpace(row[models.FieldPartNumber]),
		Name:             strings.TrimSpace(row[models.FieldName]),
		Brand:            strings.TrimSpace(row[models.FieldBrand]),
		Category:         strings.TrimSpace(row[models.FieldCategory]),
		PurchasePrice:    price,
		Quantity:         quantity,
		CurrencyCode:     supplier.CurrencyCode,
		ValidationStatus: models.OfferValid,
		ImportSeq:        seq,
		ImportRun:        importRun,
	}
	return offer, nil
}
