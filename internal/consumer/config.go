package consumer

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
)

type Config struct {
	// MaxRetries bounds delivery attempts per event.
	MaxRetries int `mapstructure:"maxRetries"`
	// RetryDelay is the base of the linear backoff.
	RetryDelay time.Duration `mapstructure:"retryDelay"`
}

func (c Config) policy() RetryPolicy {
	return RetryPolicy{MaxRetries: c.MaxRetries, RetryDelay: c.RetryDelay}
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		MaxRetries: defaultMaxRetries,
		RetryDelay: defaultRetryDelay,
	}

	sub := v.Sub("consumer")
	if sub == nil {
		return cfg, nil
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load consumer config: %w", err)
	}
	if cfg.MaxRetries < 0 {
		return Config{}, fmt.Errorf("consumer maxRetries must not be negative")
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return cfg, nil
}
