package consumer

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// significantChangePercent is the absolute percentage move that triggers the
// extra notification event.
const significantChangePercent = 10.0

// PriceHistoryWriter is the slice of the store this handler needs.
type PriceHistoryWriter interface {
	Insert(ctx context.Context, h domain.PriceHistory) error
}

// PriceChangedHandler invalidates caches, appends the price-history record
// and announces significant moves. History write and event emission are
// deliberately not one transaction: the price change already happened
// upstream and is never rolled back from here.
type PriceChangedHandler struct {
	cache   cache.Store
	history PriceHistoryWriter
	events  *producer.Events
	log     *zap.Logger
}

func NewPriceChangedHandler(store cache.Store, history PriceHistoryWriter, ev *producer.Events, log *zap.Logger) *PriceChangedHandler {
	return &PriceChangedHandler{cache: store, history: history, events: ev, log: log}
}

func (h *PriceChangedHandler) Handle(ctx context.Context, env events.Envelope) error {
	pl, err := decodePayload[payload.PriceChanged](env)
	if err != nil {
		return err
	}

	if err := h.cache.Del(ctx, cache.ProductKey(pl.ProductID)); err != nil {
		return err
	}
	if _, err := h.cache.DelPattern(ctx, cache.ProductListPattern()); err != nil {
		return err
	}

	percentChange := domain.PercentChange(pl.OldPrice, pl.NewPrice)

	if math.Abs(percentChange) >= significantChangePercent {
		overlay := producer.WithMetadata(derivedFrom(env.Metadata))
		if err := h.events.SignificantPriceChange(ctx, payload.SignificantPriceChange{
			ProductID:     pl.ProductID,
			OldPrice:      pl.OldPrice,
			NewPrice:      pl.NewPrice,
			PercentChange: percentChange,
		}, overlay); err != nil {
			h.log.Warn("failed to publish significant price change",
				zap.String("productId", pl.ProductID), zap.Error(err))
		}
	}

	// Retryable: a duplicate history row on retry beats a missing one.
	return h.history.Insert(ctx, domain.PriceHistory{
		ProductID:     pl.ProductID,
		OldPrice:      pl.OldPrice,
		NewPrice:      pl.NewPrice,
		PercentChange: percentChange,
		Reason:        pl.Reason,
	})
}
