package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/domain"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

const purgeReason = "stale product purge"

// PurgeProductStore is the slice of the product store the purge job needs.
type PurgeProductStore interface {
	FindInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}

// ZeroStockSource lists products whose stock has sat at zero since a cutoff.
type ZeroStockSource interface {
	FindZeroStockSince(ctx context.Context, cutoff time.Time) ([]string, error)
}

// ReferenceChecker answers the referential-safety questions asked before a
// product may be removed.
type ReferenceChecker interface {
	HasOrderHistory(ctx context.Context, productID string) (bool, error)
	ReviewCount(ctx context.Context, productID string) (int, error)
}

// ArchiveWriter persists the snapshot taken before a soft delete.
type ArchiveWriter interface {
	Insert(ctx context.Context, archive domain.ProductArchive) error
}

// PurgeJob removes stale products: long-inactive ones and ones out of stock
// for a long time. Products referenced by orders or carrying more than a few
// reviews are never touched. The default path archives a snapshot and
// soft-deletes; hard deletion is opt-in per configuration.
type PurgeJob struct {
	base
	cfg      Config
	products PurgeProductStore
	stock    ZeroStockSource
	refs     ReferenceChecker
	archive  ArchiveWriter
	cache    cache.Store
	events   *producer.Events
}

func NewPurgeJob(
	cfg Config,
	products PurgeProductStore,
	stock ZeroStockSource,
	refs ReferenceChecker,
	archive ArchiveWriter,
	store cache.Store,
	events *producer.Events,
	log *zap.Logger,
) *PurgeJob {
	j := &PurgeJob{
		cfg:      cfg,
		products: products,
		stock:    stock,
		refs:     refs,
		archive:  archive,
		cache:    store,
		events:   events,
	}
	j.name = "purge-outdated-products"
	j.schedule = Schedule{Every: cfg.Purge.Interval}
	j.reportTTL = cfg.Purge.ReportTTL
	j.reporter = newReporter(store, events, log)
	j.log = log
	return j
}

func (j *PurgeJob) Execute(ctx context.Context) (Result, error) {
	return j.run(ctx, func(ctx context.Context, res *Result) error {
		candidates, err := j.selectCandidates(ctx)
		if err != nil {
			return fmt.Errorf("failed to select purge candidates: %w", err)
		}
		res.TotalChecked = len(candidates)

		limiter := j.cfg.limiter()
		_, failed, err := forEachBatch(ctx, candidates, j.cfg.BatchSize, limiter, func(ctx context.Context, p *domain.Product) error {
			if err := j.purgeProduct(ctx, p, res); err != nil {
				j.log.Warn("failed to purge product",
					zap.String("productId", p.ID), zap.Error(err))
				return err
			}
			return nil
		})
		res.Errors = failed
		if err != nil {
			return err
		}

		if res.Counters["archived"]+res.Counters["purged"] > 0 {
			if _, err := j.cache.DelPattern(ctx, cache.ProductListPattern()); err != nil {
				j.log.Warn("failed to invalidate product lists", zap.Error(err))
			}
		}
		return nil
	})
}

// selectCandidates merges the long-inactive products with the long
// zero-stock ones, deduplicated by id.
func (j *PurgeJob) selectCandidates(ctx context.Context) ([]*domain.Product, error) {
	now := time.Now().UTC()

	inactive, err := j.products.FindInactiveSince(ctx, now.AddDate(0, 0, -j.cfg.Purge.InactiveDays))
	if err != nil {
		return nil, err
	}

	zeroIDs, err := j.stock.FindZeroStockSince(ctx, now.AddDate(0, 0, -j.cfg.Purge.ZeroStockDays))
	if err != nil {
		return nil, err
	}
	zeroStock, err := j.products.FindByIDs(ctx, zeroIDs)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var candidates []*domain.Product
	for _, p := range append(inactive, zeroStock...) {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		candidates = append(candidates, p)
	}
	return candidates, nil
}

func (j *PurgeJob) purgeProduct(ctx context.Context, p *domain.Product, res *Result) error {
	hasOrders, err := j.refs.HasOrderHistory(ctx, p.ID)
	if err != nil {
		return err
	}
	if hasOrders {
		res.Counters["skippedOrderHistory"]++
		return nil
	}

	reviews, err := j.refs.ReviewCount(ctx, p.ID)
	if err != nil {
		return err
	}
	if reviews > j.cfg.Purge.MaxReviews {
		res.Counters["skippedReviews"]++
		return nil
	}

	if j.cfg.Purge.HardDelete {
		if err := j.products.HardDelete(ctx, p.ID); err != nil {
			return err
		}
		res.Counters["purged"]++
	} else {
		if err := j.archive.Insert(ctx, domain.ProductArchive{
			ID:         uuid.New().String(),
			ProductID:  p.ID,
			Snapshot:   *p,
			Reason:     purgeReason,
			ArchivedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		if err := j.products.SoftDelete(ctx, p.ID); err != nil {
			return err
		}
		if err := j.events.ProductArchived(ctx, payload.ProductArchived{
			ProductID: p.ID,
			Reason:    purgeReason,
		}); err != nil {
			j.log.Warn("failed to announce archived product",
				zap.String("productId", p.ID), zap.Error(err))
		}
		res.Counters["archived"]++
	}

	if err := j.cache.Del(ctx, cache.ProductKey(p.ID)); err != nil {
		j.log.Warn("failed to invalidate product cache",
			zap.String("productId", p.ID), zap.Error(err))
	}
	return nil
}
