package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events"
)

type fakePurgeStore struct {
	mu       sync.Mutex
	inactive []*domain.Product
	byID     map[string]*domain.Product
	soft     []string
	hard     []string
}

func newFakePurgeStore(inactive ...*domain.Product) *fakePurgeStore {
	return &fakePurgeStore{inactive: inactive, byID: map[string]*domain.Product{}}
}

func (f *fakePurgeStore) FindInactiveSince(_ context.Context, _ time.Time) ([]*domain.Product, error) {
	return f.inactive, nil
}

func (f *fakePurgeStore) FindByIDs(_ context.Context, ids []string) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePurgeStore) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.soft = append(f.soft, id)
	return nil
}

func (f *fakePurgeStore) HardDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hard = append(f.hard, id)
	return nil
}

type fakeZeroStock struct {
	ids []string
}

func (f *fakeZeroStock) FindZeroStockSince(_ context.Context, _ time.Time) ([]string, error) {
	return f.ids, nil
}

type fakeRefs struct {
	orders  map[string]bool
	reviews map[string]int
}

func (f *fakeRefs) HasOrderHistory(_ context.Context, productID string) (bool, error) {
	return f.orders[productID], nil
}

func (f *fakeRefs) ReviewCount(_ context.Context, productID string) (int, error) {
	return f.reviews[productID], nil
}

type fakeArchive struct {
	mu       sync.Mutex
	archives []domain.ProductArchive
}

func (f *fakeArchive) Insert(_ context.Context, a domain.ProductArchive) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archives = append(f.archives, a)
	return nil
}

func TestPurgeJob(t *testing.T) {
	ctx := context.Background()

	newJob := func(t *testing.T, cfg Config, store *fakePurgeStore, zero *fakeZeroStock, refs *fakeRefs) (*PurgeJob, *fakeArchive, func(topic string) int) {
		t.Helper()
		archive := &fakeArchive{}
		ev, counts := newCapturingEvents(t)
		job := NewPurgeJob(cfg, store, zero, refs, archive, cache.NewMemory(), ev, zap.NewNop())
		return job, archive, counts
	}

	emptyRefs := func() *fakeRefs {
		return &fakeRefs{orders: map[string]bool{}, reviews: map[string]int{}}
	}

	t.Run("archives and soft-deletes stale products by default", func(t *testing.T) {
		store := newFakePurgeStore(product("p1"))
		job, archive, counts := newJob(t, syncConfig(), store, &fakeZeroStock{}, emptyRefs())

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Counters["archived"])
		assert.Equal(t, []string{"p1"}, store.soft)
		assert.Empty(t, store.hard)
		require.Len(t, archive.archives, 1)
		assert.Equal(t, "p1", archive.archives[0].ProductID)
		assert.Equal(t, "p1", archive.archives[0].Snapshot.ID)
		assert.Equal(t, 1, counts(events.TopicProductArchived))
	})

	t.Run("hard delete removes without archiving or events", func(t *testing.T) {
		cfg := syncConfig()
		cfg.Purge.HardDelete = true
		store := newFakePurgeStore(product("p1"))
		job, archive, counts := newJob(t, cfg, store, &fakeZeroStock{}, emptyRefs())

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Counters["purged"])
		assert.Equal(t, []string{"p1"}, store.hard)
		assert.Empty(t, store.soft)
		assert.Empty(t, archive.archives)
		assert.Zero(t, counts(events.TopicProductArchived))
	})

	t.Run("products with order history are never purged", func(t *testing.T) {
		store := newFakePurgeStore(product("p1"))
		refs := emptyRefs()
		refs.orders["p1"] = true
		job, archive, _ := newJob(t, syncConfig(), store, &fakeZeroStock{}, refs)

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Counters["skippedOrderHistory"])
		assert.Empty(t, store.soft)
		assert.Empty(t, archive.archives)
	})

	t.Run("products with many reviews are never purged", func(t *testing.T) {
		store := newFakePurgeStore(product("p1"))
		refs := emptyRefs()
		refs.reviews["p1"] = 6
		job, _, _ := newJob(t, syncConfig(), store, &fakeZeroStock{}, refs)

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Counters["skippedReviews"])
		assert.Empty(t, store.soft)
	})

	t.Run("a handful of reviews does not protect a product", func(t *testing.T) {
		store := newFakePurgeStore(product("p1"))
		refs := emptyRefs()
		refs.reviews["p1"] = 5
		job, _, _ := newJob(t, syncConfig(), store, &fakeZeroStock{}, refs)

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Counters["archived"])
	})

	t.Run("zero-stock candidates are merged and deduplicated", func(t *testing.T) {
		p1 := product("p1")
		p2 := product("p2")
		store := newFakePurgeStore(p1)
		store.byID["p1"] = p1
		store.byID["p2"] = p2
		job, _, _ := newJob(t, syncConfig(), store, &fakeZeroStock{ids: []string{"p1", "p2"}}, emptyRefs())

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalChecked)
		assert.ElementsMatch(t, []string{"p1", "p2"}, store.soft)
	})

	t.Run("purging clears the product cache entry", func(t *testing.T) {
		store := newFakePurgeStore(product("p1"))
		archive := &fakeArchive{}
		ev, _ := newCapturingEvents(t)
		mem := cache.NewMemory()
		require.NoError(t, mem.Set(ctx, cache.ProductKey("p1"), "cached", 0))

		job := NewPurgeJob(syncConfig(), store, &fakeZeroStock{}, emptyRefs(), archive, mem, ev, zap.NewNop())
		_, err := job.Execute(ctx)

		require.NoError(t, err)
		ok, _ := mem.Exists(ctx, cache.ProductKey("p1"))
		assert.False(t, ok)
	})
}
