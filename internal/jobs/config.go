package jobs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const (
	defaultBatchSize      = 100
	defaultItemsPerSecond = 200.0
)

// Config groups the operational settings of all four jobs. Each run captures
// the config by value at start, so a config change never affects a run
// already in flight.
type Config struct {
	// BatchSize is the number of items handled per batch.
	BatchSize int `mapstructure:"batchSize"`
	// ItemsPerSecond throttles item processing across a run. Zero disables
	// the throttle.
	ItemsPerSecond float64 `mapstructure:"itemsPerSecond"`

	Inventory InventoryConfig `mapstructure:"inventory"`
	Reprice   RepriceConfig   `mapstructure:"reprice"`
	Search    SearchConfig    `mapstructure:"search"`
	Purge     PurgeConfig     `mapstructure:"purge"`
}

type InventoryConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	// LowStockThreshold applies to inventory rows that carry no threshold of
	// their own.
	LowStockThreshold int `mapstructure:"lowStockThreshold"`
	// LowStockSuppression is how long a low-stock alert for one product
	// silences further low-stock alerts for it.
	LowStockSuppression time.Duration `mapstructure:"lowStockSuppression"`
	// OutOfStockSuppression is the same window for out-of-stock alerts.
	OutOfStockSuppression time.Duration `mapstructure:"outOfStockSuppression"`
	ReportTTL             time.Duration `mapstructure:"reportTTL"`
}

type RepriceConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	RulesCacheTTL time.Duration `mapstructure:"rulesCacheTTL"`
	// SignificantChangePercent is the absolute percent change at which a
	// repricing additionally announces a significant-change event.
	SignificantChangePercent float64       `mapstructure:"significantChangePercent"`
	ReportTTL                time.Duration `mapstructure:"reportTTL"`
}

type SearchConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	ReportTTL time.Duration `mapstructure:"reportTTL"`
}

type PurgeConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	// InactiveDays selects products deactivated at least this long ago.
	InactiveDays int `mapstructure:"inactiveDays"`
	// ZeroStockDays selects products out of stock at least this long ago.
	ZeroStockDays int `mapstructure:"zeroStockDays"`
	// MaxReviews is the review count above which a product is never purged.
	MaxReviews int `mapstructure:"maxReviews"`
	// HardDelete removes documents permanently instead of archiving them.
	HardDelete bool          `mapstructure:"hardDelete"`
	ReportTTL  time.Duration `mapstructure:"reportTTL"`
}

func defaultConfig() Config {
	return Config{
		BatchSize:      defaultBatchSize,
		ItemsPerSecond: defaultItemsPerSecond,
		Inventory: InventoryConfig{
			Interval:              15 * time.Minute,
			LowStockThreshold:     10,
			LowStockSuppression:   12 * time.Hour,
			OutOfStockSuppression: 24 * time.Hour,
			ReportTTL:             7 * 24 * time.Hour,
		},
		Reprice: RepriceConfig{
			Interval:                 24 * time.Hour,
			RulesCacheTTL:            time.Hour,
			SignificantChangePercent: 10,
			ReportTTL:                30 * 24 * time.Hour,
		},
		Search: SearchConfig{
			Interval:  24 * time.Hour,
			ReportTTL: 7 * 24 * time.Hour,
		},
		Purge: PurgeConfig{
			Interval:      7 * 24 * time.Hour,
			InactiveDays:  90,
			ZeroStockDays: 180,
			MaxReviews:    5,
			HardDelete:    false,
			ReportTTL:     30 * 24 * time.Hour,
		},
	}
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := defaultConfig()

	sub := v.Sub("jobs")
	if sub == nil {
		return cfg, nil
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load jobs config: %w", err)
	}

	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("jobs batchSize must be positive")
	}
	if cfg.ItemsPerSecond < 0 {
		return Config{}, fmt.Errorf("jobs itemsPerSecond must not be negative")
	}
	for name, interval := range map[string]time.Duration{
		"inventory": cfg.Inventory.Interval,
		"reprice":   cfg.Reprice.Interval,
		"search":    cfg.Search.Interval,
		"purge":     cfg.Purge.Interval,
	} {
		if interval <= 0 {
			return Config{}, fmt.Errorf("jobs %s interval must be positive", name)
		}
	}
	return cfg, nil
}

// limiter builds a fresh per-run throughput limiter, nil when throttling is
// disabled. Each run gets its own limiter so a finished run leaves no burst
// debt behind.
func (c Config) limiter() *rate.Limiter {
	if c.ItemsPerSecond <= 0 {
		return nil
	}
	burst := int(c.ItemsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.ItemsPerSecond), burst)
}
