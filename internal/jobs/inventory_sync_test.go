package jobs

import (
	"context"
	"fmt"
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

type fakeProducts struct {
	products []*domain.Product
	err      error
}

func (f *fakeProducts) FindActive(_ context.Context) ([]*domain.Product, error) {
	return f.products, f.err
}

type fakeInventoryStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Inventory
}

func newFakeInventoryStore() *fakeInventoryStore {
	return &fakeInventoryStore{rows: map[string]*domain.Inventory{}}
}

func (f *fakeInventoryStore) FindByProductID(_ context.Context, productID string) (*domain.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.rows[productID]
	if !ok {
		return nil, fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
	}
	copied := *inv
	return &copied, nil
}

func (f *fakeInventoryStore) Create(_ context.Context, inv domain.Inventory) (*domain.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.UpdatedAt = time.Now().UTC()
	f.rows[inv.ProductID] = &inv
	return &inv, nil
}

func product(id string) *domain.Product {
	return &domain.Product{ID: id, Title: "Shaker Kitchen", Price: 100, IsActive: true}
}

func syncConfig() Config {
	cfg := defaultConfig()
	cfg.ItemsPerSecond = 0
	return cfg
}

func TestInventorySyncJob(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing inventory rows", func(t *testing.T) {
		inv := newFakeInventoryStore()
		ev, _ := newCapturingEvents(t)
		job := NewInventorySyncJob(syncConfig(), &fakeProducts{products: []*domain.Product{product("p1"), product("p2")}}, inv, cache.NewMemory(), ev, zap.NewNop())

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalChecked)
		assert.Equal(t, 2, res.Counters["created"])
		row, err := inv.FindByProductID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 10, row.LowStockThreshold)
	})

	t.Run("low-stock alerts are suppressed within the window and fire again after it", func(t *testing.T) {
		inv := newFakeInventoryStore()
		_, err := inv.Create(ctx, domain.Inventory{ProductID: "p1", AvailableStock: 5, LowStockThreshold: 10})
		require.NoError(t, err)

		cfg := syncConfig()
		cfg.Inventory.LowStockSuppression = 50 * time.Millisecond

		ev, counts := newCapturingEvents(t)
		job := NewInventorySyncJob(cfg, &fakeProducts{products: []*domain.Product{product("p1")}}, inv, cache.NewMemory(), ev, zap.NewNop())

		// First run alerts.
		_, err = job.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicProductLowStock))

		// Second run inside the window stays quiet.
		_, err = job.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicProductLowStock))

		// After the window expires the alert fires again.
		time.Sleep(60 * time.Millisecond)
		_, err = job.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, counts(events.TopicProductLowStock))
	})

	t.Run("zero stock raises out-of-stock, not low-stock", func(t *testing.T) {
		inv := newFakeInventoryStore()
		_, err := inv.Create(ctx, domain.Inventory{ProductID: "p1", AvailableStock: 0, LowStockThreshold: 10})
		require.NoError(t, err)

		ev, counts := newCapturingEvents(t)
		job := NewInventorySyncJob(syncConfig(), &fakeProducts{products: []*domain.Product{product("p1")}}, inv, cache.NewMemory(), ev, zap.NewNop())

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicProductOutOfStock))
		assert.Zero(t, counts(events.TopicProductLowStock))
		assert.Equal(t, 1, res.Counters["outOfStockAlerts"])
	})

	t.Run("out-of-stock suppression spans consecutive runs", func(t *testing.T) {
		inv := newFakeInventoryStore()
		_, err := inv.Create(ctx, domain.Inventory{ProductID: "p1", AvailableStock: 0})
		require.NoError(t, err)

		ev, counts := newCapturingEvents(t)
		job := NewInventorySyncJob(syncConfig(), &fakeProducts{products: []*domain.Product{product("p1")}}, inv, cache.NewMemory(), ev, zap.NewNop())

		for i := 0; i < 3; i++ {
			_, err := job.Execute(ctx)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, counts(events.TopicProductOutOfStock))
	})

	t.Run("healthy stock stays silent", func(t *testing.T) {
		inv := newFakeInventoryStore()
		_, err := inv.Create(ctx, domain.Inventory{ProductID: "p1", AvailableStock: 50, LowStockThreshold: 10})
		require.NoError(t, err)

		ev, counts := newCapturingEvents(t)
		job := NewInventorySyncJob(syncConfig(), &fakeProducts{products: []*domain.Product{product("p1")}}, inv, cache.NewMemory(), ev, zap.NewNop())

		res, err := job.Execute(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Counters["synced"])
		assert.Zero(t, counts(events.TopicProductLowStock))
		assert.Zero(t, counts(events.TopicProductOutOfStock))
	})

	t.Run("candidate query failure is fatal and reported", func(t *testing.T) {
		ev, counts := newCapturingEvents(t)
		job := NewInventorySyncJob(syncConfig(), &fakeProducts{err: domain.ErrTransient}, newFakeInventoryStore(), cache.NewMemory(), ev, zap.NewNop())

		_, err := job.Execute(ctx)

		require.Error(t, err)
		assert.Equal(t, 1, counts(events.TopicJobFailed))
	})
}
