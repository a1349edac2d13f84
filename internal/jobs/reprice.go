package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// PricingRuleSource loads the enabled repricing rules.
type PricingRuleSource interface {
	FindEnabled(ctx context.Context) ([]domain.PricingRule, error)
}

// StockReader answers stock-level rule conditions.
type StockReader interface {
	FindByProductID(ctx context.Context, productID string) (*domain.Inventory, error)
}

// PriceWriter persists a repriced product.
type PriceWriter interface {
	UpdatePrice(ctx context.Context, id string, newPrice float64) error
}

// RepriceJob applies the enabled pricing rules to every active product.
// Rules are loaded through a short-TTL cache; a result outside the allowed
// price bounds is rejected and the product left unchanged.
type RepriceJob struct {
	base
	cfg      Config
	products ActiveProductSource
	stock    StockReader
	rules    PricingRuleSource
	writer   PriceWriter
	cache    cache.Store
	events   *producer.Events
}

func NewRepriceJob(
	cfg Config,
	products ActiveProductSource,
	stock StockReader,
	rules PricingRuleSource,
	writer PriceWriter,
	store cache.Store,
	events *producer.Events,
	log *zap.Logger,
) *RepriceJob {
	j := &RepriceJob{
		cfg:      cfg,
		products: products,
		stock:    stock,
		rules:    rules,
		writer:   writer,
		cache:    store,
		events:   events,
	}
	j.name = "reprice-products"
	j.schedule = Schedule{Every: cfg.Reprice.Interval}
	j.reportTTL = cfg.Reprice.ReportTTL
	j.reporter = newReporter(store, events, log)
	j.log = log
	return j
}

func (j *RepriceJob) Execute(ctx context.Context) (Result, error) {
	return j.run(ctx, func(ctx context.Context, res *Result) error {
		rules, err := j.loadRules(ctx)
		if err != nil {
			return fmt.Errorf("failed to load pricing rules: %w", err)
		}
		if len(rules) == 0 {
			j.log.Info("no pricing rules enabled, nothing to do")
			return nil
		}

		products, err := j.products.FindActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to load active products: %w", err)
		}
		res.TotalChecked = len(products)

		limiter := j.cfg.limiter()
		_, failed, err := forEachBatch(ctx, products, j.cfg.BatchSize, limiter, func(ctx context.Context, p *domain.Product) error {
			if err := j.repriceProduct(ctx, p, rules, res); err != nil {
				j.log.Warn("failed to reprice product",
					zap.String("productId", p.ID), zap.Error(err))
				return err
			}
			return nil
		})
		res.Errors = failed
		if err != nil {
			return err
		}

		if res.Counters["repriced"] > 0 {
			if _, err := j.cache.DelPattern(ctx, cache.ProductListPattern()); err != nil {
				j.log.Warn("failed to invalidate product lists", zap.Error(err))
			}
		}
		return nil
	})
}

// loadRules reads the enabled rules through the cache. A cache failure falls
// through to the store; only a store failure is fatal.
func (j *RepriceJob) loadRules(ctx context.Context) ([]domain.PricingRule, error) {
	var rules []domain.PricingRule
	err := j.cache.Get(ctx, cache.PricingRulesKey(), &rules)
	if err == nil {
		return rules, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		j.log.Warn("failed to read cached pricing rules", zap.Error(err))
	}

	rules, err = j.rules.FindEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if err := j.cache.Set(ctx, cache.PricingRulesKey(), rules, j.cfg.Reprice.RulesCacheTTL); err != nil {
		j.log.Warn("failed to cache pricing rules", zap.Error(err))
	}
	return rules, nil
}

func (j *RepriceJob) repriceProduct(ctx context.Context, p *domain.Product, rules []domain.PricingRule, res *Result) error {
	availableStock := 0
	inv, err := j.stock.FindByProductID(ctx, p.ID)
	switch {
	case err == nil:
		availableStock = inv.AvailableStock
	case errors.Is(err, domain.ErrNotFound):
		// No inventory row yet; stock-level conditions see zero stock.
	default:
		return err
	}

	applicable := lo.Filter(rules, func(r domain.PricingRule, _ int) bool {
		return r.Matches(*p, availableStock)
	})
	if len(applicable) == 0 {
		return nil
	}

	newPrice := domain.ApplyRules(p.Price, applicable)
	if newPrice == p.Price {
		return nil
	}

	if !domain.WithinPriceBounds(p.Price, newPrice) {
		j.log.Warn("repriced value outside allowed bounds, keeping original price",
			zap.String("productId", p.ID),
			zap.Float64("oldPrice", p.Price),
			zap.Float64("newPrice", newPrice),
		)
		res.Counters["rejected"]++
		return nil
	}

	pct := domain.PercentChange(p.Price, newPrice)
	if math.Abs(pct) >= j.cfg.Reprice.SignificantChangePercent {
		if err := j.events.SignificantPriceChange(ctx, payload.SignificantPriceChange{
			ProductID:     p.ID,
			OldPrice:      p.Price,
			NewPrice:      newPrice,
			PercentChange: pct,
		}); err != nil {
			j.log.Warn("failed to announce significant price change",
				zap.String("productId", p.ID), zap.Error(err))
		}
	}

	if err := j.writer.UpdatePrice(ctx, p.ID, newPrice); err != nil {
		return err
	}
	if err := j.cache.Del(ctx, cache.ProductKey(p.ID)); err != nil {
		j.log.Warn("failed to invalidate product cache",
			zap.String("productId", p.ID), zap.Error(err))
	}

	if err := j.events.PricingRulesApplied(ctx, payload.PricingRulesApplied{
		ProductID: p.ID,
		RuleIDs:   lo.Map(applicable, func(r domain.PricingRule, _ int) string { return r.ID }),
		OldPrice:  p.Price,
		NewPrice:  newPrice,
	}); err != nil {
		j.log.Warn("failed to announce applied rules",
			zap.String("productId", p.ID), zap.Error(err))
	}

	res.Counters["repriced"]++
	return nil
}
