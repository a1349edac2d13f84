package domain

import "github.com/shopspring/decimal"

// RuleType discriminates how a pricing rule adjusts a price.
type RuleType string

const (
	RulePercentage RuleType = "percentage"
	RuleFixed      RuleType = "fixed"
	RuleDynamic    RuleType = "dynamic"
)

// RuleConditions narrows the products a rule applies to. Nil fields match
// everything.
type RuleConditions struct {
	CategoryID *string  `bson:"categoryId,omitempty" json:"category_id,omitempty"`
	MinPrice   *float64 `bson:"minPrice,omitempty" json:"min_price,omitempty"`
	MaxPrice   *float64 `bson:"maxPrice,omitempty" json:"max_price,omitempty"`
	// StockLevel matches products holding at least this much available stock,
	// so overstocked items can be discounted.
	StockLevel *int `bson:"stockLevel,omitempty" json:"stock_level,omitempty"`
}

// PricingRule is read-only repricing configuration. Rules are applied in
// registration order: percentage rules compound multiplicatively, fixed rules
// add, dynamic rules are a placeholder and change nothing.
type PricingRule struct {
	ID         string          `bson:"_id" json:"id"`
	Name       string          `bson:"name" json:"name"`
	Type       RuleType        `bson:"type" json:"type"`
	Value      float64         `bson:"value" json:"value"`
	Conditions *RuleConditions `bson:"conditions,omitempty" json:"conditions,omitempty"`
	Enabled    bool            `bson:"enabled" json:"enabled"`
}

// Matches reports whether the rule's conditions hold for the product and its
// current available stock.
func (r PricingRule) Matches(p Product, availableStock int) bool {
	if r.Conditions == nil {
		return true
	}
	c := r.Conditions
	if c.CategoryID != nil && *c.CategoryID != p.CategoryID {
		return false
	}
	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}
	if c.StockLevel != nil && availableStock < *c.StockLevel {
		return false
	}
	return true
}

// ApplyRules folds the rules over the price in order and rounds the result to
// two decimals. Callers must still bound-check the result with
// WithinPriceBounds before persisting it.
func ApplyRules(price float64, rules []PricingRule) float64 {
	result := decimal.NewFromFloat(price)
	hundred := decimal.NewFromInt(100)

	for _, rule := range rules {
		switch rule.Type {
		case RulePercentage:
			factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(rule.Value).Div(hundred))
			result = result.Mul(factor)
		case RuleFixed:
			result = result.Add(decimal.NewFromFloat(rule.Value))
		case RuleDynamic:
			// Placeholder: demand-driven pricing is not implemented yet.
		}
	}

	f, _ := result.Round(2).Float64()
	return f
}

// PriceBoundRatio caps how far repricing may move a price from its original
// value in either direction.
const PriceBoundRatio = 0.5

// WithinPriceBounds reports whether newPrice stays within ±50% of oldPrice.
func WithinPriceBounds(oldPrice, newPrice float64) bool {
	if oldPrice <= 0 {
		return false
	}
	return newPrice >= oldPrice*(1-PriceBoundRatio) && newPrice <= oldPrice*(1+PriceBoundRatio)
}

// PercentChange returns the relative change from oldPrice to newPrice in
// percent. A zero old price yields zero to avoid a meaningless division.
func PercentChange(oldPrice, newPrice float64) float64 {
	if oldPrice == 0 {
		return 0
	}
	change := decimal.NewFromFloat(newPrice).
		Sub(decimal.NewFromFloat(oldPrice)).
		Div(decimal.NewFromFloat(oldPrice)).
		Mul(decimal.NewFromInt(100))
	f, _ := change.Round(4).Float64()
	return f
}
