package main

import (
	"go.uber.org/fx"

	"github.com/neel2751/lomashwood-product-service/internal/bus"
	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/consumer"
	"github.com/neel2751/lomashwood-product-service/internal/jobs"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
	"github.com/neel2751/lomashwood-product-service/internal/store"
	"github.com/neel2751/lomashwood-product-service/pkg/core/config"
	"github.com/neel2751/lomashwood-product-service/pkg/core/logger"
)

func main() {
	fx.New(
		logger.NewZapLoggingModule(),
		config.NewAppConfigModule(),
		config.NewViperModule(),
		store.Module(),
		cache.Module(),
		bus.Module(),
		producer.Module(),
		consumer.Module(),
		jobs.Module(),
	).Run()
}
