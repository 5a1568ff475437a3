package services

import (
	"context"
	"strings"

	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"github.com/google/uuid"
)

// FieldMapper translates supplier-native column names into the canonical
// row schema and owns the mapping-save invariant.
type FieldMapper struct {
	suppliersRepo repository.SuppliersRepositoryInterface
}

// NewFieldMapper creates a new field mapper
func NewFieldMapper(suppliersRepo repository.SuppliersRepositoryInterface) *FieldMapper {
	return &FieldMapper{suppliersRepo: suppliersRepo}
}

// ValidateMappings checks the no-two-fields-per-column invariant. Columns
// are compared case-insensitively because spreadsheet headers round-trip
// through tools that rewrite their casing.
func ValidateMappings(items []models.FieldMappingItem) error {
	byColumn := make(map[string][]models.CanonicalField)
	for _, item := range items {
		col := strings.ToLower(strings.TrimSpace(item.SourceColumn))
		byColumn[col] = append(byColumn[col], item.CanonicalField)
	}
	for col, fields := range byColumn {
		if len(fields) > 1 {
			return &DuplicateMappingError{SourceColumn: col, Fields: fields}
		}
	}
	return nil
}

// SaveMappings validates and atomically replaces a supplier's mapping set.
// On a duplicate the prior set stays untouched.
func (m *FieldMapper) SaveMappings(ctx context.Context, supplierID uuid.UUID, items []models.FieldMappingItem) error {
	if err := ValidateMappings(items); err != nil {
		return err
	}
	mappings := make([]models.SupplierFieldMapping, 0, len(items))
	for _, item := range items {
		mappings = append(mappings, models.SupplierFieldMapping{
			CanonicalField: item.CanonicalField,
			SourceColumn:   strings.TrimSpace(item.SourceColumn),
		})
	}
	return m.suppliersRepo.ReplaceFieldMappings(ctx, supplierID, mappings)
}

// Translate maps one raw row (source column -> raw string) into a canonical
// row (canonical field -> raw string). Missing source columns yield absent
// keys, never empty strings.
func Translate(mappings []models.SupplierFieldMapping, rawRow map[string]string) map[models.CanonicalField]string {
	canonical := make(map[models.CanonicalField]string, len(mappings))
	for _, mapping := range mappings {
		value, ok := rawRow[strings.ToLower(mapping.SourceColumn)]
		if !ok {
			value, ok = rawRow[mapping.SourceColumn]
		}
		if ok {
			canonical[mapping.CanonicalField] = value
		}
	}
	return canonical
}
