// Package store implements the transactional persistence layer on MongoDB.
// Consumers depend on narrow interfaces they declare themselves; this package
// provides the concrete repositories.
package store

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	collProducts     = "products"
	collInventory    = "inventory"
	collPriceHistory = "price_history"
	collArchive      = "product_archive"
	collPricingRules = "pricing_rules"
	collOrders       = "orders"
	collReviews      = "reviews"
)

type Config struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	// PingTimeout bounds the startup connectivity check.
	PingTimeout time.Duration `mapstructure:"pingTimeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		URI:         "mongodb://localhost:27017",
		Database:    "lomashwood",
		PingTimeout: 5 * time.Second,
	}

	sub := v.Sub("mongo")
	if sub == nil {
		return cfg, nil
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load mongo config: %w", err)
	}
	return cfg, nil
}
