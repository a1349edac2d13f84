package cache

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// Prefix namespaces every key written by this service.
	Prefix string `mapstructure:"prefix"`
	// InMemory swaps the redis client for the in-process store, for local
	// development without infrastructure.
	InMemory bool `mapstructure:"inMemory"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Addr:   "localhost:6379",
		Prefix: "product-service:",
	}

	sub := v.Sub("cache")
	if sub == nil {
		return cfg, nil
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load cache config: %w", err)
	}
	return cfg, nil
}
