package consumer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
)

// InventoryAdjuster is the slice of the store the order handlers need.
// Adjust must guarantee available stock never goes negative.
type InventoryAdjuster interface {
	Adjust(ctx context.Context, productID string, availableDelta, reservedDelta int) error
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (any, error)
}

// OrderHandlers reserve and release stock for order lifecycle events. All
// line items of one order move in a single transaction, so a failed line
// (for example insufficient stock) leaves every reservation untouched.
type OrderHandlers struct {
	inventory InventoryAdjuster
	tx        TxRunner
	cache     cache.Store
	log       *zap.Logger
}

func NewOrderHandlers(inventory InventoryAdjuster, tx TxRunner, store cache.Store, log *zap.Logger) *OrderHandlers {
	return &OrderHandlers{inventory: inventory, tx: tx, cache: store, log: log}
}

// HandleCreated moves each line item's quantity from available to reserved.
func (h *OrderHandlers) HandleCreated(ctx context.Context, env events.Envelope) error {
	pl, err := decodePayload[payload.OrderCreated](env)
	if err != nil {
		return err
	}
	return h.applyItems(ctx, pl.OrderID, pl.Items, -1)
}

// HandleCancelled returns each line item's quantity from reserved to
// available.
func (h *OrderHandlers) HandleCancelled(ctx context.Context, env events.Envelope) error {
	pl, err := decodePayload[payload.OrderCancelled](env)
	if err != nil {
		return err
	}
	return h.applyItems(ctx, pl.OrderID, pl.Items, +1)
}

// applyItems adjusts all items atomically. direction -1 reserves, +1
// releases.
func (h *OrderHandlers) applyItems(ctx context.Context, orderID string, items []payload.OrderItem, direction int) error {
	_, err := h.tx.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		for _, item := range items {
			availableDelta := direction * item.Quantity
			reservedDelta := -direction * item.Quantity
			if err := h.inventory.Adjust(txCtx, item.ProductID, availableDelta, reservedDelta); err != nil {
				return nil, fmt.Errorf("order %s item %s: %w", orderID, item.ProductID, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	for _, item := range items {
		if cacheErr := h.cache.Del(ctx, cache.ProductKey(item.ProductID)); cacheErr != nil {
			h.log.Warn("failed to invalidate product cache",
				zap.String("productId", item.ProductID), zap.Error(cacheErr))
		}
	}

	h.log.Debug("order stock adjusted",
		zap.String("orderId", orderID),
		zap.Int("items", len(items)),
		zap.Int("direction", direction),
	)
	return nil
}
