package consumer

import (
	"context"

	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// InventoryUpdatedHandler invalidates caches and derives stock-level alerts.
// The derived publications are fire-and-forget: a failed alert is logged and
// never fails the inventory update itself.
type InventoryUpdatedHandler struct {
	cache  cache.Store
	events *producer.Events
	log    *zap.Logger
}

func NewInventoryUpdatedHandler(store cache.Store, ev *producer.Events, log *zap.Logger) *InventoryUpdatedHandler {
	return &InventoryUpdatedHandler{cache: store, events: ev, log: log}
}

func (h *InventoryUpdatedHandler) Handle(ctx context.Context, env events.Envelope) error {
	pl, err := decodePayload[payload.InventoryUpdated](env)
	if err != nil {
		return err
	}

	if err := h.cache.Del(ctx, cache.ProductKey(pl.ProductID)); err != nil {
		return err
	}
	if _, err := h.cache.DelPattern(ctx, cache.ProductListPattern()); err != nil {
		return err
	}

	overlay := producer.WithMetadata(derivedFrom(env.Metadata))

	if pl.AvailableStock <= 0 && pl.PreviousStock > 0 {
		if err := h.events.OutOfStock(ctx, payload.OutOfStock{ProductID: pl.ProductID}, overlay); err != nil {
			h.log.Warn("failed to publish out-of-stock alert",
				zap.String("productId", pl.ProductID), zap.Error(err))
		}
	} else if pl.AvailableStock > 0 && pl.PreviousStock <= 0 {
		if err := h.events.BackInStock(ctx, payload.BackInStock{
			ProductID:      pl.ProductID,
			AvailableStock: pl.AvailableStock,
		}, overlay); err != nil {
			h.log.Warn("failed to publish back-in-stock alert",
				zap.String("productId", pl.ProductID), zap.Error(err))
		}
	}

	if pl.LowStockThreshold > 0 && pl.AvailableStock > 0 && pl.AvailableStock <= pl.LowStockThreshold {
		if err := h.events.LowStock(ctx, payload.LowStock{
			ProductID:      pl.ProductID,
			AvailableStock: pl.AvailableStock,
			Threshold:      pl.LowStockThreshold,
		}, overlay); err != nil {
			h.log.Warn("failed to publish low-stock alert",
				zap.String("productId", pl.ProductID), zap.Error(err))
		}
	}

	return nil
}
