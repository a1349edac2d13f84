package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// ActiveProductSource lists the products a maintenance sweep operates on.
type ActiveProductSource interface {
	FindActive(ctx context.Context) ([]*domain.Product, error)
}

// InventoryAccess is the slice of the inventory store the sync job needs.
type InventoryAccess interface {
	FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error)
	Create(ctx context.Context, inv domain.Inventory) (*domain.Inventory, error)
}

// InventorySyncJob walks every active product, creates missing inventory
// rows and raises stock alerts. Alerts are gated by TTL suppression flags in
// the cache so a product that stays out of stock does not alert on every
// 15-minute run.
type InventorySyncJob struct {
	base
	cfg       Config
	products  ActiveProductSource
	inventory InventoryAccess
	cache     cache.Store
	events    *producer.Events
}

func NewInventorySyncJob(
	cfg Config,
	products ActiveProductSource,
	inventory InventoryAccess,
	store cache.Store,
	events *producer.Events,
	log *zap.Logger,
) *InventorySyncJob {
	j := &InventorySyncJob{
		cfg:       cfg,
		products:  products,
		inventory: inventory,
		cache:     store,
		events:    events,
	}
	j.name = "inventory-sync"
	j.schedule = Schedule{Every: cfg.Inventory.Interval, RunAtStart: true}
	j.reportTTL = cfg.Inventory.ReportTTL
	j.reporter = newReporter(store, events, log)
	j.log = log
	return j
}

func (j *InventorySyncJob) Execute(ctx context.Context) (Result, error) {
	return j.run(ctx, func(ctx context.Context, res *Result) error {
		products, err := j.products.FindActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to load active products: %w", err)
		}
		res.TotalChecked = len(products)

		limiter := j.cfg.limiter()
		_, failed, err := forEachBatch(ctx, products, j.cfg.BatchSize, limiter, func(ctx context.Context, p *domain.Product) error {
			if err := j.syncProduct(ctx, p, res); err != nil {
				j.log.Warn("failed to sync inventory",
					zap.String("productId", p.ID), zap.Error(err))
				return err
			}
			return nil
		})
		res.Errors = failed
		return err
	})
}

func (j *InventorySyncJob) syncProduct(ctx context.Context, p *domain.Product, res *Result) error {
	inv, err := j.inventory.FindByProductID(ctx, p.ID)
	if errors.Is(err, domain.ErrNotFound) {
		inv, err = j.inventory.Create(ctx, domain.Inventory{
			ProductID:         p.ID,
			LowStockThreshold: j.cfg.Inventory.LowStockThreshold,
		})
		if err == nil {
			res.Counters["created"]++
		}
	}
	if err != nil {
		return err
	}

	threshold := inv.LowStockThreshold
	if threshold <= 0 {
		threshold = j.cfg.Inventory.LowStockThreshold
	}

	switch {
	case inv.AvailableStock == 0:
		if j.raiseAlert(ctx, cache.OutOfStockAlertKey(p.ID), j.cfg.Inventory.OutOfStockSuppression, func(ctx context.Context) error {
			return j.events.OutOfStock(ctx, payload.OutOfStock{ProductID: p.ID})
		}) {
			res.Counters["outOfStockAlerts"]++
		}
	case inv.AvailableStock <= threshold:
		if j.raiseAlert(ctx, cache.LowStockAlertKey(p.ID), j.cfg.Inventory.LowStockSuppression, func(ctx context.Context) error {
			return j.events.LowStock(ctx, payload.LowStock{
				ProductID:      p.ID,
				AvailableStock: inv.AvailableStock,
				Threshold:      threshold,
			})
		}) {
			res.Counters["lowStockAlerts"]++
		}
	}

	res.Counters["synced"]++
	return nil
}

// raiseAlert emits the alert only when the suppression flag was not already
// set. It reports whether an alert went out. Alert delivery is best-effort:
// a publish failure is logged and the suppression flag is cleared so the
// next run can try again.
func (j *InventorySyncJob) raiseAlert(ctx context.Context, key string, window time.Duration, emit func(ctx context.Context) error) bool {
	set, err := j.cache.SetNX(ctx, key, time.Now().UTC(), window)
	if err != nil {
		j.log.Warn("failed to check alert suppression", zap.String("key", key), zap.Error(err))
		return false
	}
	if !set {
		return false
	}
	if err := emit(ctx); err != nil {
		j.log.Warn("failed to publish stock alert", zap.String("key", key), zap.Error(err))
		if delErr := j.cache.Del(ctx, key); delErr != nil {
			j.log.Warn("failed to clear suppression flag", zap.String("key", key), zap.Error(delErr))
		}
		return false
	}
	return true
}
