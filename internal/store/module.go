package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/fx"
)

// Module provides the mongo client, the TxManager and every repository.
func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			newConfig,
			provideClient,
			NewTxManager,
			NewProductRepository,
			NewInventoryRepository,
			NewPriceHistoryRepository,
			NewArchiveRepository,
			NewPricingRuleRepository,
			NewRefRepository,
		),
	)
}

// provideClient creates the client immediately (the driver dials lazily) and
// verifies connectivity on fx start.
func provideClient(lc fx.Lifecycle, cfg Config) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
			defer cancel()
			if err := client.Ping(pingCtx, nil); err != nil {
				return fmt.Errorf("failed to ping mongo: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return client, nil
}
