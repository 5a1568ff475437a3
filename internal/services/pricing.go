package services

import (
	"strings"

	"consolidation-service/internal/models"
	"github.com/shopspring/decimal"
)

// minorUnits maps ISO 4217 currency codes to their minor-unit exponent.
// Currencies not listed use two decimal places.
var minorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
}

// PricingCalculator resolves markup rules and computes sell prices
type PricingCalculator struct{}

// NewPricingCalculator creates a new pricing calculator
func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// ResolveMarkup finds the applicable markup for a brand/category pair.
// Most specific active rule wins: brand+category, then brand, then
// category, then the tenant default. Returns ErrNoMarkupRule only when no
// default rule exists.
func (p *PricingCalculator) ResolveMarkup(rules []models.MarkupRule, brand, category string) (decimal.Decimal, error) {
	var brandMatch, categoryMatch, defaultRule *models.MarkupRule

	for i := range rules {
		rule := &rules[i]
		if !rule.IsActive() {
			continue
		}
		brandOK := rule.Brand != nil && strings.EqualFold(*rule.Brand, brand)
		categoryOK := rule.Category != nil && strings.EqualFold(*rule.Category, category)
		switch {
		case rule.Brand != nil && rule.Category != nil:
			if brandOK && categoryOK {
				return rule.Markup, nil
			}
		case rule.Brand != nil:
			if brandOK && brandMatch == nil {
				brandMatch = rule
			}
		case rule.Category != nil:
			if categoryOK && categoryMatch == nil {
				categoryMatch = rule
			}
		default:
			if defaultRule == nil {
				defaultRule = rule
			}
		}
	}

	if brandMatch != nil {
		return brandMatch.Markup, nil
	}
	if categoryMatch != nil {
		return categoryMatch.Markup, nil
	}
	if defaultRule != nil {
		return defaultRule.Markup, nil
	}
	return decimal.Zero, ErrNoMarkupRule
}

// SellPrice applies a markup fraction to a purchase price and rounds
// half-up at the currency's minor-unit precision.
func (p *PricingCalculator) SellPrice(purchase, markup decimal.Decimal, currencyCode string) decimal.Decimal {
	exponent, ok := minorUnits[strings.ToUpper(currencyCode)]
	if !ok {
		exponent = 2
	}
	raw := purchase.Mul(decimal.NewFromInt(1).Add(markup))
	// decimal.Round rounds half away from zero; prices are non-negative so
	// this is round-half-up at the minor unit
	return raw.Round(exponent)
}
