package services

import (
	"testing"

	"consolidation-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func brandRule(action models.RuleAction, brand string) models.FilterRule {
	return models.FilterRule{
		Dimension:  models.DimensionBrand,
		Action:     action,
		BrandValue: brand,
	}
}

func categoryRule(action models.RuleAction, category string) models.FilterRule {
	return models.FilterRule{
		Dimension:     models.DimensionCategory,
		Action:        action,
		CategoryValue: category,
	}
}

func brandCategoryRule(action models.RuleAction, brand, category string) models.FilterRule {
	return models.FilterRule{
		Dimension:     models.DimensionBrandCategory,
		Action:        action,
		BrandValue:    brand,
		CategoryValue: category,
	}
}

func TestEvaluate_NoRulesMeansEligible(t *testing.T) {
	f := NewFilterEngine()
	assert.True(t, f.Evaluate(nil, "HP", "Notebooks"))
}

func TestEvaluate_IncludesAreORedWithinADimension(t *testing.T) {
	f := NewFilterEngine()
	rules := []models.FilterRule{
		brandRule(models.ActionInclude, "HP"),
		brandRule(models.ActionInclude, "Lenovo"),
	}

	assert.True(t, f.Evaluate(rules, "HP", "Notebooks"))
	assert.True(t, f.Evaluate(rules, "Lenovo", "Notebooks"))
	assert.False(t, f.Evaluate(rules, "Apple", "Notebooks"))
}

func TestEvaluate_DimensionsAreANDed(t *testing.T) {
	f := NewFilterEngine()
	rules := []models.FilterRule{
		brandRule(models.ActionInclude, "HP"),
		categoryRule(models.ActionInclude, "Notebooks"),
	}

	assert.True(t, f.Evaluate(rules, "HP", "Notebooks"))
	assert.False(t, f.Evaluate(rules, "HP", "Tablets"), "category include set must also match")
	assert.False(t, f.Evaluate(rules, "Lenovo", "Notebooks"), "brand include set must also match")
}

func TestEvaluate_ExcludeBeatsInclude(t *testing.T) {
	f := NewFilterEngine()
	rules := []models.FilterRule{
		brandRule(models.ActionInclude, "HP"),
		brandRule(models.ActionExclude, "HP"),
	}

	assert.False(t, f.Evaluate(rules, "HP", "Notebooks"))
}

func TestEvaluate_BrandCategoryIsItsOwnDimension(t *testing.T) {
	f := NewFilterEngine()
	rules := []models.FilterRule{
		brandCategoryRule(models.ActionExclude, "HP", "Tablets"),
	}

	assert.False(t, f.Evaluate(rules, "HP", "Tablets"))
	assert.True(t, f.Evaluate(rules, "HP", "Notebooks"), "pair exclude only hits the exact pair")
	assert.True(t, f.Evaluate(rules, "Lenovo", "Tablets"))
}

func TestEvaluate_InactiveRulesImposeNothing(t *testing.T) {
	f := NewFilterEngine()
	inactive := false
	rule := brandRule(models.ActionExclude, "HP")
	rule.Active = &inactive

	assert.True(t, f.Evaluate([]models.FilterRule{rule}, "HP", "Notebooks"))

	// Deactivating the only include rule of a dimension lifts the
	// restriction entirely instead of excluding everything
	include := brandRule(models.ActionInclude, "Lenovo")
	include.Active = &inactive
	assert.True(t, f.Evaluate([]models.FilterRule{include}, "HP", "Notebooks"))
}

func TestEvaluate_MatchingIsCaseInsensitive(t *testing.T) {
	f := NewFilterEngine()
	rules := []models.FilterRule{
		brandRule(models.ActionInclude, "HP"),
	}

	assert.True(t, f.Evaluate(rules, "hp", "Notebooks"))
}
