package producer

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/neel2751/lomashwood-product-service/internal/bus"
	"github.com/neel2751/lomashwood-product-service/pkg/core/config"
)

// Module provides the Producer and the typed domain publisher facade.
func Module() fx.Option {
	return fx.Module("producer",
		fx.Provide(
			newConfig,
			func(app config.AppConfig, transport bus.Transport, cfg Config, log *zap.Logger) Producer {
				return New(app.ServiceName, transport, cfg, log)
			},
			NewEvents,
		),
	)
}
