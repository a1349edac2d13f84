package producer

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const defaultDeliveryTimeout = 5 * time.Second

type Config struct {
	// DeliveryTimeout bounds a single publish. Exceeding it fails the call.
	DeliveryTimeout time.Duration `mapstructure:"deliveryTimeout"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{DeliveryTimeout: defaultDeliveryTimeout}

	sub := v.Sub("producer")
	if sub == nil {
		return cfg, nil
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load producer config: %w", err)
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}
	return cfg, nil
}
