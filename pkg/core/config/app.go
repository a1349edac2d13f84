package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Environment variable names
const (
	envAppEnv         = "APP_ENV"
	envAppServiceName = "APP_SERVICE_NAME"
	envConfigFile     = "CONFIG_FILE"
	envConfigDir      = "CONFIG_DIR"
)

const defaultConfigDir = "./configs"

// AppConfig represents the core application metadata and configuration paths.
type AppConfig struct {
	// ConfigFile is the full path to the config file
	ConfigFile string
	// ServiceName is the name of the service
	ServiceName string
	// Environment is the deployment environment (e.g., "local", "staging", "pro")
	Environment string
}

// NewAppConfigModule creates a new fx module for application configuration.
//
// Required environment variables:
//   - APP_ENV: Environment name (e.g., "local", "staging", "pro")
//   - APP_SERVICE_NAME: Service name, used as the event metadata source
//
// Optional environment variables:
//   - CONFIG_FILE: Full path to config file (default: ./configs/config.{env}.yaml)
func NewAppConfigModule() fx.Option {
	return fx.Module("appconfig",
		fx.Provide(newAppConfig),
		fx.Invoke(func(logger *zap.Logger, conf AppConfig) {
			logger.Info("loaded application configuration",
				zap.String("service", conf.ServiceName),
				zap.String("environment", conf.Environment),
				zap.String("configFile", conf.ConfigFile),
			)
		}),
	)
}

// newAppConfig creates a new AppConfig by reading environment variables.
// It loads the .env file if it exists (optional).
func newAppConfig() (AppConfig, error) {
	_ = godotenv.Load()

	env := os.Getenv(envAppEnv)
	if env == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppEnv)
	}

	serviceName := os.Getenv(envAppServiceName)
	if serviceName == "" {
		return AppConfig{}, fmt.Errorf("%s is required", envAppServiceName)
	}

	configFile := os.Getenv(envConfigFile)
	if configFile == "" {
		configDir := os.Getenv(envConfigDir)
		if configDir == "" {
			configDir = defaultConfigDir
		}
		configFile = filepath.Join(configDir, "config."+env+".yaml")
	}

	return AppConfig{
		ConfigFile:  configFile,
		ServiceName: serviceName,
		Environment: env,
	}, nil
}
