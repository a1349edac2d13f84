package cache

import "go.uber.org/fx"

// Module provides the Store, redis-backed unless configured in-memory.
func Module() fx.Option {
	return fx.Module("cache",
		fx.Provide(
			newConfig,
			func(cfg Config) Store {
				if cfg.InMemory {
					return NewMemory()
				}
				return NewRedis(cfg)
			},
		),
	)
}
