package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewViperModule creates an fx module for Viper configuration.
// The config file path comes from AppConfig; environment variables override
// file values ("jobs.purge.batchSize" -> JOBS_PURGE_BATCHSIZE).
func NewViperModule() fx.Option {
	return fx.Module("viper",
		fx.Provide(newViper),
		fx.Invoke(logViperConfig),
	)
}

func newViper(conf AppConfig) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if conf.ConfigFile == "" {
		return v, nil
	}

	v.SetConfigFile(conf.ConfigFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", conf.ConfigFile, err)
	}

	return v, nil
}

func logViperConfig(logger *zap.Logger, v *viper.Viper) {
	logger.Info("configuration loaded",
		zap.String("configFile", v.ConfigFileUsed()),
		zap.Int("settingsCount", len(v.AllSettings())),
	)
}
