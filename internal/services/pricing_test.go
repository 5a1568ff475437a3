package services

import (
	"testing"

	"consolidation-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markupRule(brand, category *string, markup string) models.MarkupRule {
	return models.MarkupRule{
		Brand:    brand,
		Category: category,
		Markup:   decimal.RequireFromString(markup),
	}
}

func TestResolveMarkup_SpecificityOrder(t *testing.T) {
	p := NewPricingCalculator()
	rules := []models.MarkupRule{
		markupRule(nil, nil, "0.50"),
		markupRule(nil, strPtr("Notebooks"), "0.30"),
		markupRule(strPtr("HP"), nil, "0.25"),
		markupRule(strPtr("HP"), strPtr("Notebooks"), "0.15"),
	}

	m, err := p.ResolveMarkup(rules, "HP", "Notebooks")
	require.NoError(t, err)
	assert.Equal(t, "0.15", m.String(), "brand+category beats everything")

	m, err = p.ResolveMarkup(rules, "HP", "Tablets")
	require.NoError(t, err)
	assert.Equal(t, "0.25", m.String(), "brand beats category")

	m, err = p.ResolveMarkup(rules, "Lenovo", "Notebooks")
	require.NoError(t, err)
	assert.Equal(t, "0.3", m.String())

	m, err = p.ResolveMarkup(rules, "Lenovo", "Tablets")
	require.NoError(t, err)
	assert.Equal(t, "0.5", m.String(), "default rule as last resort")
}

func TestResolveMarkup_MatchingIsCaseInsensitive(t *testing.T) {
	p := NewPricingCalculator()
	rules := []models.MarkupRule{
		markupRule(strPtr("HP"), nil, "0.25"),
		markupRule(nil, nil, "0.50"),
	}

	m, err := p.ResolveMarkup(rules, "hp", "")
	require.NoError(t, err)
	assert.Equal(t, "0.25", m.String())
}

func TestResolveMarkup_InactiveRulesIgnored(t *testing.T) {
	p := NewPricingCalculator()
	inactive := false
	brandRule := markupRule(strPtr("HP"), nil, "0.25")
	brandRule.Active = &inactive
	rules := []models.MarkupRule{
		brandRule,
		markupRule(nil, nil, "0.50"),
	}

	m, err := p.ResolveMarkup(rules, "HP", "")
	require.NoError(t, err)
	assert.Equal(t, "0.5", m.String())
}

func TestResolveMarkup_NoDefaultIsAnError(t *testing.T) {
	p := NewPricingCalculator()
	rules := []models.MarkupRule{
		markupRule(strPtr("HP"), nil, "0.25"),
	}

	_, err := p.ResolveMarkup(rules, "Lenovo", "Tablets")
	assert.ErrorIs(t, err, ErrNoMarkupRule)

	_, err = p.ResolveMarkup(nil, "HP", "Notebooks")
	assert.ErrorIs(t, err, ErrNoMarkupRule)
}

func TestSellPrice_AppliesMarkup(t *testing.T) {
	p := NewPricingCalculator()

	sell := p.SellPrice(decimal.RequireFromString("100.00"), decimal.RequireFromString("0.20"), "EUR")
	assert.Equal(t, "120", sell.String())
	assert.Equal(t, "120.00", sell.StringFixed(2))
}

func TestSellPrice_RoundsHalfUpAtMinorUnit(t *testing.T) {
	p := NewPricingCalculator()

	// 33.33 * 1.15 = 38.3295 -> 38.33
	sell := p.SellPrice(decimal.RequireFromString("33.33"), decimal.RequireFromString("0.15"), "EUR")
	assert.Equal(t, "38.33", sell.StringFixed(2))

	// 10.05 * 1.10 = 11.055 -> half up -> 11.06
	sell = p.SellPrice(decimal.RequireFromString("10.05"), decimal.RequireFromString("0.10"), "EUR")
	assert.Equal(t, "11.06", sell.StringFixed(2))
}

func TestSellPrice_ZeroDecimalCurrencies(t *testing.T) {
	p := NewPricingCalculator()

	// 1000 * 1.155 = 1155, 999 * 1.1 = 1098.9 -> 1099
	sell := p.SellPrice(decimal.RequireFromString("999"), decimal.RequireFromString("0.10"), "JPY")
	assert.Equal(t, "1099", sell.String())

	// 500.5 JPY parses but rounds to a whole yen: 500.5 * 1.0 = 500.5 -> 501
	sell = p.SellPrice(decimal.RequireFromString("500.5"), decimal.Zero, "JPY")
	assert.Equal(t, "501", sell.String())
}

func TestSellPrice_UnknownCurrencyDefaultsToTwoDecimals(t *testing.T) {
	p := NewPricingCalculator()

	sell := p.SellPrice(decimal.RequireFromString("10.005"), decimal.Zero, "XYZ")
	assert.Equal(t, "10.01", sell.StringFixed(2))
}
