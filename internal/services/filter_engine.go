package services

import (
	"strings"

	"consolidation-service/internal/models"
)

// FilterEngine decides publish eligibility from tenant filter rules
type FilterEngine struct{}

// NewFilterEngine creates a new filter engine
func NewFilterEngine() *FilterEngine {
	return &FilterEngine{}
}

type dimensionRules struct {
	includes []models.FilterRule
	excludes []models.FilterRule
}

// Evaluate returns whether an entry with the given brand and category is
// eligible for publication. Rules are partitioned by dimension; within a
// dimension any matching exclude rule blocks the entry, otherwise an
// include set (when present) must contain it. A dimension with no active
// rules imposes no restriction. All dimensions must pass.
func (f *FilterEngine) Evaluate(rules []models.FilterRule, brand, category string) bool {
	byDimension := map[models.RuleDimension]*dimensionRules{}
	for _, rule := range rules {
		if !rule.IsActive() {
			continue
		}
		bucket, ok := byDimension[rule.Dimension]
		if !ok {
			bucket = &dimensionRules{}
			byDimension[rule.Dimension] = bucket
		}
		if rule.Action == models.ActionExclude {
			bucket.excludes = append(bucket.excludes, rule)
		} else {
			bucket.includes = append(bucket.includes, rule)
		}
	}

	for dimension, bucket := range byDimension {
		for _, rule := range bucket.excludes {
			if ruleMatches(dimension, &rule, brand, category) {
				return false
			}
		}
		if len(bucket.includes) > 0 {
			matched := false
			for _, rule := range bucket.includes {
				if ruleMatches(dimension, &rule, brand, category) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

func ruleMatches(dimension models.RuleDimension, rule *models.FilterRule, brand, category string) bool {
	switch dimension {
	case models.DimensionBrand:
		return strings.EqualFold(rule.BrandValue, brand)
	case models.DimensionCategory:
		return strings.EqualFold(rule.CategoryValue, category)
	case models.DimensionBrandCategory:
		return strings.EqualFold(rule.BrandValue, brand) && strings.EqualFold(rule.CategoryValue, category)
	}
	return false
}
