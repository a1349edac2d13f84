package jobs

import (
	"context"

	"go.uber.org/fx"

	"github.com/neel2751/lomashwood-product-service/internal/store"
)

// Module provides the four maintenance jobs and the scheduler that drives
// them over the application lifecycle.
func Module() fx.Option {
	return fx.Module("jobs",
		fx.Provide(
			newConfig,
			fx.Annotate(NewInventorySyncJob, fx.As(new(Job)), fx.ResultTags(`group:"jobs"`)),
			fx.Annotate(NewRepriceJob, fx.As(new(Job)), fx.ResultTags(`group:"jobs"`)),
			fx.Annotate(NewSearchIndexJob, fx.As(new(Job)), fx.ResultTags(`group:"jobs"`)),
			fx.Annotate(NewPurgeJob, fx.As(new(Job)), fx.ResultTags(`group:"jobs"`)),
			fx.Annotate(NewScheduler, fx.ParamTags(`group:"jobs"`)),

			func(r *store.ProductRepository) ActiveProductSource { return r },
			func(r *store.ProductRepository) PurgeProductStore { return r },
			func(r *store.ProductRepository) PriceWriter { return r },
			func(r *store.InventoryRepository) InventoryAccess { return r },
			func(r *store.InventoryRepository) StockReader { return r },
			func(r *store.InventoryRepository) ZeroStockSource { return r },
			func(r *store.PricingRuleRepository) PricingRuleSource { return r },
			func(r *store.ArchiveRepository) ArchiveWriter { return r },
			func(r *store.RefRepository) ReferenceChecker { return r },
		),
		fx.Invoke(registerScheduler),
	)
}

func registerScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}
