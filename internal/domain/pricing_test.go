package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyRules(t *testing.T) {
	t.Run("single percentage rule", func(t *testing.T) {
		rules := []PricingRule{{Type: RulePercentage, Value: -10}}
		assert.Equal(t, 90.00, ApplyRules(100.00, rules))
	})

	t.Run("percentage rules compound multiplicatively", func(t *testing.T) {
		rules := []PricingRule{
			{Type: RulePercentage, Value: -10},
			{Type: RulePercentage, Value: -10},
		}
		assert.Equal(t, 81.00, ApplyRules(100.00, rules))
	})

	t.Run("fixed rule applies to already-reduced price", func(t *testing.T) {
		rules := []PricingRule{
			{Type: RulePercentage, Value: -10},
			{Type: RuleFixed, Value: -200},
		}
		result := ApplyRules(100.00, rules)
		assert.Equal(t, -110.00, result)
		assert.False(t, WithinPriceBounds(100.00, result))
	})

	t.Run("dynamic rule is a no-op", func(t *testing.T) {
		rules := []PricingRule{{Type: RuleDynamic, Value: 42}}
		assert.Equal(t, 100.00, ApplyRules(100.00, rules))
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		rules := []PricingRule{{Type: RulePercentage, Value: -33.333}}
		assert.Equal(t, 66.67, ApplyRules(100.00, rules))
	})
}

func TestWithinPriceBounds(t *testing.T) {
	t.Run("accepts prices inside the band", func(t *testing.T) {
		assert.True(t, WithinPriceBounds(100, 50))
		assert.True(t, WithinPriceBounds(100, 150))
		assert.True(t, WithinPriceBounds(100, 100))
	})

	t.Run("rejects prices outside the band", func(t *testing.T) {
		assert.False(t, WithinPriceBounds(100, 49.99))
		assert.False(t, WithinPriceBounds(100, 150.01))
	})

	t.Run("rejects non-positive originals", func(t *testing.T) {
		assert.False(t, WithinPriceBounds(0, 10))
	})
}

func TestPricingRuleMatches(t *testing.T) {
	category := "kitchens"
	minPrice := 50.0
	maxPrice := 500.0
	stockLevel := 20

	rule := PricingRule{
		Type:  RulePercentage,
		Value: -5,
		Conditions: &RuleConditions{
			CategoryID: &category,
			MinPrice:   &minPrice,
			MaxPrice:   &maxPrice,
			StockLevel: &stockLevel,
		},
	}

	product := Product{CategoryID: "kitchens", Price: 100}

	t.Run("matches when all conditions hold", func(t *testing.T) {
		assert.True(t, rule.Matches(product, 25))
	})

	t.Run("fails on category mismatch", func(t *testing.T) {
		other := product
		other.CategoryID = "bedrooms"
		assert.False(t, rule.Matches(other, 25))
	})

	t.Run("fails below min price", func(t *testing.T) {
		cheap := product
		cheap.Price = 10
		assert.False(t, rule.Matches(cheap, 25))
	})

	t.Run("fails above max price", func(t *testing.T) {
		dear := product
		dear.Price = 1000
		assert.False(t, rule.Matches(dear, 25))
	})

	t.Run("fails below stock level", func(t *testing.T) {
		assert.False(t, rule.Matches(product, 5))
	})

	t.Run("nil conditions match everything", func(t *testing.T) {
		assert.True(t, PricingRule{Type: RuleFixed}.Matches(product, 0))
	})
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(ErrValidation))
	assert.False(t, IsRetryable(ErrTerminal))
	assert.True(t, IsRetryable(ErrTransient))
	assert.True(t, IsRetryable(ErrNotFound))
}
