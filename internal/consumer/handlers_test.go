package consumer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/bus"
	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// fakeInventory is an in-memory InventoryAdjuster with the same guard
// semantics as the mongo repository.
type fakeInventory struct {
	mu        sync.Mutex
	available map[string]int
	reserved  map[string]int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{available: map[string]int{}, reserved: map[string]int{}}
}

func (f *fakeInventory) Adjust(_ context.Context, productID string, availableDelta, reservedDelta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.available[productID]+availableDelta < 0 || f.reserved[productID]+reservedDelta < 0 {
		return domain.ErrInsufficientStock
	}
	f.available[productID] += availableDelta
	f.reserved[productID] += reservedDelta
	return nil
}

// fakeTx runs the function without a real transaction but mimics the
// all-or-nothing contract by snapshotting and restoring the fake inventory.
type fakeTx struct {
	inv *fakeInventory
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error) {
	f.inv.mu.Lock()
	availableSnap := make(map[string]int, len(f.inv.available))
	reservedSnap := make(map[string]int, len(f.inv.reserved))
	for k, v := range f.inv.available {
		availableSnap[k] = v
	}
	for k, v := range f.inv.reserved {
		reservedSnap[k] = v
	}
	f.inv.mu.Unlock()

	result, err := fn(ctx)
	if err != nil {
		f.inv.mu.Lock()
		f.inv.available = availableSnap
		f.inv.reserved = reservedSnap
		f.inv.mu.Unlock()
	}
	return result, err
}

type fakeHistory struct {
	mu      sync.Mutex
	records []domain.PriceHistory
	err     error
}

func (f *fakeHistory) Insert(_ context.Context, h domain.PriceHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, h)
	return nil
}

func newCapturingEvents(t *testing.T) (*producer.Events, func(topic string) int) {
	t.Helper()
	transport := bus.NewInProcess(zap.NewNop())
	counts := map[string]int{}
	var mu sync.Mutex
	for _, topic := range events.AllTopics() {
		transport.Subscribe(topic, func(ctx context.Context, env events.Envelope) error {
			mu.Lock()
			counts[env.Topic]++
			mu.Unlock()
			return nil
		})
	}
	p := producer.New("test", transport, producer.Config{DeliveryTimeout: time.Second}, zap.NewNop())
	return producer.NewEvents(p), func(topic string) int {
		mu.Lock()
		defer mu.Unlock()
		return counts[topic]
	}
}

func TestProductUpdatedHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidates product and list caches", func(t *testing.T) {
		store := cache.NewMemory()
		require.NoError(t, store.Set(ctx, cache.ProductKey("p1"), "cached", 0))
		require.NoError(t, store.Set(ctx, "products:list:page1", "cached", 0))

		h := NewProductUpdatedHandler(store, zap.NewNop())
		err := h.Handle(ctx, events.Envelope{
			Topic: events.TopicProductUpdated,
			Value: payload.ProductUpdated{ProductID: "p1", ChangedFields: []string{"title"}},
		})

		require.NoError(t, err)
		ok, _ := store.Exists(ctx, cache.ProductKey("p1"))
		assert.False(t, ok)
		ok, _ = store.Exists(ctx, "products:list:page1")
		assert.False(t, ok)
	})

	t.Run("invalidates category caches only when the category changed", func(t *testing.T) {
		store := cache.NewMemory()
		require.NoError(t, store.Set(ctx, "category:kitchens:page1", "cached", 0))

		h := NewProductUpdatedHandler(store, zap.NewNop())

		err := h.Handle(ctx, events.Envelope{
			Value: payload.ProductUpdated{ProductID: "p1", ChangedFields: []string{"title"}, CategoryID: "kitchens"},
		})
		require.NoError(t, err)
		ok, _ := store.Exists(ctx, "category:kitchens:page1")
		assert.True(t, ok)

		err = h.Handle(ctx, events.Envelope{
			Value: payload.ProductUpdated{ProductID: "p1", ChangedFields: []string{"categoryId"}, CategoryID: "kitchens"},
		})
		require.NoError(t, err)
		ok, _ = store.Exists(ctx, "category:kitchens:page1")
		assert.False(t, ok)
	})
}

func TestInventoryUpdatedHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("emits out-of-stock on a positive-to-zero transition", func(t *testing.T) {
		ev, counts := newCapturingEvents(t)
		h := NewInventoryUpdatedHandler(cache.NewMemory(), ev, zap.NewNop())

		err := h.Handle(ctx, events.Envelope{
			Metadata: events.NewMetadataBuilder("test").Build(),
			Value:    payload.InventoryUpdated{ProductID: "p1", AvailableStock: 0, PreviousStock: 5},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicProductOutOfStock))
		assert.Zero(t, counts(events.TopicProductLowStock))
	})

	t.Run("emits low-stock at or below the threshold", func(t *testing.T) {
		ev, counts := newCapturingEvents(t)
		h := NewInventoryUpdatedHandler(cache.NewMemory(), ev, zap.NewNop())

		err := h.Handle(ctx, events.Envelope{
			Metadata: events.NewMetadataBuilder("test").Build(),
			Value: payload.InventoryUpdated{
				ProductID: "p1", AvailableStock: 5, PreviousStock: 20, LowStockThreshold: 10,
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicProductLowStock))
		assert.Zero(t, counts(events.TopicProductOutOfStock))
	})

	t.Run("emits back-in-stock on a zero-to-positive transition", func(t *testing.T) {
		ev, counts := newCapturingEvents(t)
		h := NewInventoryUpdatedHandler(cache.NewMemory(), ev, zap.NewNop())

		err := h.Handle(ctx, events.Envelope{
			Metadata: events.NewMetadataBuilder("test").Build(),
			Value:    payload.InventoryUpdated{ProductID: "p1", AvailableStock: 3, PreviousStock: 0},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicProductBackInStock))
	})
}

func TestPriceChangedHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("persists history and stays quiet under the threshold", func(t *testing.T) {
		ev, counts := newCapturingEvents(t)
		history := &fakeHistory{}
		h := NewPriceChangedHandler(cache.NewMemory(), history, ev, zap.NewNop())

		err := h.Handle(ctx, events.Envelope{
			Metadata: events.NewMetadataBuilder("test").Build(),
			Value:    payload.PriceChanged{ProductID: "p1", OldPrice: 100, NewPrice: 95},
		})

		require.NoError(t, err)
		require.Len(t, history.records, 1)
		assert.Equal(t, -5.0, history.records[0].PercentChange)
		assert.Zero(t, counts(events.TopicPricingSignificantChange))
	})

	t.Run("announces significant changes", func(t *testing.T) {
		ev, counts := newCapturingEvents(t)
		h := NewPriceChangedHandler(cache.NewMemory(), &fakeHistory{}, ev, zap.NewNop())

		err := h.Handle(ctx, events.Envelope{
			Metadata: events.NewMetadataBuilder("test").Build(),
			Value:    payload.PriceChanged{ProductID: "p1", OldPrice: 100, NewPrice: 80},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, counts(events.TopicPricingSignificantChange))
	})

	t.Run("history write failure propagates for retry", func(t *testing.T) {
		ev, _ := newCapturingEvents(t)
		history := &fakeHistory{err: domain.ErrTransient}
		h := NewPriceChangedHandler(cache.NewMemory(), history, ev, zap.NewNop())

		err := h.Handle(ctx, events.Envelope{
			Metadata: events.NewMetadataBuilder("test").Build(),
			Value:    payload.PriceChanged{ProductID: "p1", OldPrice: 100, NewPrice: 95},
		})

		assert.ErrorIs(t, err, domain.ErrTransient)
	})
}

func TestOrderHandlers(t *testing.T) {
	ctx := context.Background()

	newHandlers := func(inv *fakeInventory) *OrderHandlers {
		return NewOrderHandlers(inv, &fakeTx{inv: inv}, cache.NewMemory(), zap.NewNop())
	}

	t.Run("order created moves stock from available to reserved", func(t *testing.T) {
		inv := newFakeInventory()
		inv.available["p1"] = 10
		h := newHandlers(inv)

		err := h.HandleCreated(ctx, events.Envelope{
			Value: payload.OrderCreated{OrderID: "o1", Items: []payload.OrderItem{{ProductID: "p1", Quantity: 4}}},
		})

		require.NoError(t, err)
		assert.Equal(t, 6, inv.available["p1"])
		assert.Equal(t, 4, inv.reserved["p1"])
	})

	t.Run("order cancelled releases the reservation", func(t *testing.T) {
		inv := newFakeInventory()
		inv.available["p1"] = 6
		inv.reserved["p1"] = 4
		h := newHandlers(inv)

		err := h.HandleCancelled(ctx, events.Envelope{
			Value: payload.OrderCancelled{OrderID: "o1", Items: []payload.OrderItem{{ProductID: "p1", Quantity: 4}}},
		})

		require.NoError(t, err)
		assert.Equal(t, 10, inv.available["p1"])
		assert.Zero(t, inv.reserved["p1"])
	})

	t.Run("insufficient stock is terminal and leaves everything unchanged", func(t *testing.T) {
		inv := newFakeInventory()
		inv.available["p1"] = 10
		inv.available["p2"] = 1
		h := newHandlers(inv)

		err := h.HandleCreated(ctx, events.Envelope{
			Value: payload.OrderCreated{OrderID: "o1", Items: []payload.OrderItem{
				{ProductID: "p1", Quantity: 4},
				{ProductID: "p2", Quantity: 5},
			}},
		})

		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.False(t, domain.IsRetryable(err))
		assert.Equal(t, 10, inv.available["p1"])
		assert.Zero(t, inv.reserved["p1"])
		assert.Equal(t, 1, inv.available["p2"])
	})
}
