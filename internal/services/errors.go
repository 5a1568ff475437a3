package services

import (
	"errors"
	"fmt"

	"consolidation-service/internal/models"
)

// DuplicateMappingError reports two canonical fields targeting the same
// source column in a mapping save. The save is rejected as a whole.
type DuplicateMappingError struct {
	SourceColumn string
	Fields       []models.CanonicalField
}

func (e *DuplicateMappingError) Error() string {
	return fmt.Sprintf("duplicate field mapping: canonical fields %v map to the same source column %q", e.Fields, e.SourceColumn)
}

// ErrNoMarkupRule is returned when markup resolution finds no applicable
// rule and the tenant has no default configured.
var ErrNoMarkupRule = errors.New("no markup rule matches and no default markup rule is configured")

// ErrPassAlreadyRunning is returned when a consolidation pass is requested
// while another one holds the tenant's pass slot.
var ErrPassAlreadyRunning = errors.New("a consolidation pass is already running for this tenant")
