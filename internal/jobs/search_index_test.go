package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events"
)

func TestDeriveTerms(t *testing.T) {
	p := &domain.Product{
		ID:          "p1",
		Title:       "Shaker Kitchen Unit",
		Description: "A classic oak door in a warm finish",
		CategoryID:  "kitchens",
		Colour:      "Sage Green",
		Style:       "Shaker",
		Finish:      "Matt",
		Range:       "Heritage",
		Price:       749.99,
	}

	terms := deriveTerms(p, true)

	t.Run("title words are all indexed", func(t *testing.T) {
		assert.Contains(t, terms, "shaker")
		assert.Contains(t, terms, "kitchen")
		assert.Contains(t, terms, "unit")
	})

	t.Run("short description words are dropped", func(t *testing.T) {
		assert.Contains(t, terms, "classic")
		assert.Contains(t, terms, "oak")
		assert.NotContains(t, terms, "a")
		assert.NotContains(t, terms, "in")
	})

	t.Run("facet values become hyphenated terms", func(t *testing.T) {
		assert.Contains(t, terms, "kitchens")
		assert.Contains(t, terms, "sage-green")
		assert.Contains(t, terms, "matt")
		assert.Contains(t, terms, "heritage")
	})

	t.Run("price bucket and stock terms are derived", func(t *testing.T) {
		assert.Contains(t, terms, "price-500-1000")
		assert.Contains(t, terms, "in-stock")
		assert.NotContains(t, terms, "out-of-stock")
	})

	t.Run("terms are unique", func(t *testing.T) {
		seen := map[string]struct{}{}
		for _, term := range terms {
			_, dup := seen[term]
			assert.False(t, dup, "duplicate term %q", term)
			seen[term] = struct{}{}
		}
	})
}

func TestPriceBucket(t *testing.T) {
	assert.Equal(t, "price-under-100", priceBucket(99.99))
	assert.Equal(t, "price-100-500", priceBucket(100))
	assert.Equal(t, "price-500-1000", priceBucket(500))
	assert.Equal(t, "price-1000-5000", priceBucket(1000))
	assert.Equal(t, "price-over-5000", priceBucket(5000))
}

func TestSearchIndexJob(t *testing.T) {
	ctx := context.Background()

	newJob := func(t *testing.T, mem cache.Store, products ...*domain.Product) (*SearchIndexJob, func(topic string) int) {
		t.Helper()
		inv := newFakeInventoryStore()
		for _, p := range products {
			_, err := inv.Create(ctx, domain.Inventory{ProductID: p.ID, AvailableStock: 5})
			require.NoError(t, err)
		}
		ev, counts := newCapturingEvents(t)
		return NewSearchIndexJob(syncConfig(), &fakeProducts{products: products}, inv, mem, ev, zap.NewNop()), counts
	}

	t.Run("writes a document and term sets per product", func(t *testing.T) {
		mem := cache.NewMemory()
		job, _ := newJob(t, mem, product("p1"))

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Counters["indexed"])
		assert.Positive(t, res.Counters["terms"])

		var doc searchDoc
		require.NoError(t, mem.Get(ctx, cache.SearchDocKey("p1"), &doc))
		assert.Equal(t, "Shaker Kitchen", doc.Title)
		assert.True(t, doc.InStock)

		members, err := mem.SMembers(ctx, cache.SearchTermKey("shaker"))
		require.NoError(t, err)
		assert.Contains(t, members, "p1")
	})

	t.Run("clears stale index keys before rebuilding", func(t *testing.T) {
		mem := cache.NewMemory()
		require.NoError(t, mem.Set(ctx, cache.SearchDocKey("ghost"), "stale", 0))
		require.NoError(t, mem.SAdd(ctx, cache.SearchTermKey("ghost"), "ghost"))

		job, _ := newJob(t, mem, product("p1"))
		_, err := job.Execute(ctx)

		require.NoError(t, err)
		ok, _ := mem.Exists(ctx, cache.SearchDocKey("ghost"))
		assert.False(t, ok)
		members, err := mem.SMembers(ctx, cache.SearchTermKey("ghost"))
		require.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("collects distinct facet values", func(t *testing.T) {
		p1 := product("p1")
		p1.CategoryID = "kitchens"
		p1.Colour = "White"
		p2 := product("p2")
		p2.CategoryID = "bedrooms"
		p2.Colour = "White"

		mem := cache.NewMemory()
		job, _ := newJob(t, mem, p1, p2)
		_, err := job.Execute(ctx)

		require.NoError(t, err)
		categories, err := mem.SMembers(ctx, cache.SearchMetaKey("categories"))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"kitchens", "bedrooms"}, categories)

		colours, err := mem.SMembers(ctx, cache.SearchMetaKey("colours"))
		require.NoError(t, err)
		assert.Equal(t, []string{"White"}, colours)
	})

	t.Run("a product without an inventory row is indexed as out of stock", func(t *testing.T) {
		mem := cache.NewMemory()
		ev, _ := newCapturingEvents(t)
		job := NewSearchIndexJob(syncConfig(), &fakeProducts{products: []*domain.Product{product("p1")}}, newFakeInventoryStore(), mem, ev, zap.NewNop())

		_, err := job.Execute(ctx)

		require.NoError(t, err)
		members, err := mem.SMembers(ctx, cache.SearchTermKey("out-of-stock"))
		require.NoError(t, err)
		assert.Contains(t, members, "p1")
	})

	t.Run("announces the rebuild", func(t *testing.T) {
		job, counts := newJob(t, cache.NewMemory(), product("p1"))

		_, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicSearchIndexRebuilt))
	})
}
