package consumer

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
)

// ProductUpdatedHandler keeps the read caches honest after a product change.
type ProductUpdatedHandler struct {
	cache cache.Store
	log   *zap.Logger
}

func NewProductUpdatedHandler(store cache.Store, log *zap.Logger) *ProductUpdatedHandler {
	return &ProductUpdatedHandler{cache: store, log: log}
}

func (h *ProductUpdatedHandler) Handle(ctx context.Context, env events.Envelope) error {
	pl, err := decodePayload[payload.ProductUpdated](env)
	if err != nil {
		return err
	}

	if err := h.cache.Del(ctx, cache.ProductKey(pl.ProductID)); err != nil {
		return err
	}
	if _, err := h.cache.DelPattern(ctx, cache.ProductListPattern()); err != nil {
		return err
	}

	// Category and colour listings only go stale when those fields moved.
	if lo.Contains(pl.ChangedFields, "categoryId") && pl.CategoryID != "" {
		if _, err := h.cache.DelPattern(ctx, cache.CategoryPattern(pl.CategoryID)); err != nil {
			return err
		}
	}
	if lo.Contains(pl.ChangedFields, "colour") && pl.Colour != "" {
		if _, err := h.cache.DelPattern(ctx, cache.ColourPattern(pl.Colour)); err != nil {
			return err
		}
	}

	h.log.Debug("product caches invalidated", zap.String("productId", pl.ProductID))
	return nil
}
