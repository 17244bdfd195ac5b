// Package config loads application configuration from file and
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates all configuration settings for the application.
type Config struct {
	// Environment indicates the running environment.
	Environment string `mapstructure:"environment"`
	// LogLevel sets the global logging verbosity.
	LogLevel string `mapstructure:"log_level"`
	// Data holds dataset location settings.
	Data DataConfig `mapstructure:"data"`
	// Forecast holds forecasting settings.
	Forecast ForecastConfig `mapstructure:"forecast"`
	// Store holds database settings.
	Store StoreConfig `mapstructure:"store"`
	// Report holds report output settings.
	Report ReportConfig `mapstructure:"report"`
	// Server holds HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
}

// DataConfig defines where the panel dataset comes from.
type DataConfig struct {
	// Path is the local CSV file with unique_id, ds and y columns.
	Path string `mapstructure:"path"`
	// URL is a remote CSV to download when Path does not exist.
	URL string `mapstructure:"url"`
	// CacheDir is where downloaded datasets are stored.
	CacheDir string `mapstructure:"cache_dir"`
}

// ForecastConfig defines forecasting behavior.
type ForecastConfig struct {
	// Horizon is the number of days to forecast ahead.
	Horizon int `mapstructure:"horizon"`
	// Season is the seasonal period in days.
	Season int `mapstructure:"season"`
	// MinObservations drops series with fewer rows than this.
	MinObservations int `mapstructure:"min_observations"`
	// Models lists the models to run.
	Models []string `mapstructure:"models"`
	// Workers bounds the number of series forecasted concurrently.
	// Zero means one worker per CPU.
	Workers int `mapstructure:"workers"`
}

// StoreConfig defines the SQLite database settings.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
}

// ReportConfig defines report output settings.
type ReportConfig struct {
	// OutputDir is the directory for generated reports.
	OutputDir string `mapstructure:"output_dir"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	// Port is the TCP port the server listens on.
	Port int `mapstructure:"port"`
	// RefreshSchedule is a cron expression for periodic forecast
	// refreshes. Empty disables the scheduler.
	RefreshSchedule string `mapstructure:"refresh_schedule"`
}

// Load reads configuration from config.yaml and the environment.
// Environment variables override file values, with dots replaced by
// underscores (for example FORECAST_HORIZON).
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("data.path", "data/sales.csv")
	viper.SetDefault("data.url", "")
	viper.SetDefault("data.cache_dir", "data")

	viper.SetDefault("forecast.horizon", 7)
	viper.SetDefault("forecast.season", 7)
	viper.SetDefault("forecast.min_observations", 28)
	viper.SetDefault("forecast.models", []string{
		"naive", "seasonal_naive", "historic_average", "auto_arima", "auto_ets",
	})
	viper.SetDefault("forecast.workers", 0)

	viper.SetDefault("store.path", "data/salescast.db")
	viper.SetDefault("report.output_dir", "reports")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.refresh_schedule", "")
}

// Validate checks the configuration for values that would break the
// pipeline.
func (c *Config) Validate() error {
	if c.Forecast.Horizon < 1 {
		return fmt.Errorf("forecast horizon must be at least 1, got %d", c.Forecast.Horizon)
	}
	if c.Forecast.Season < 1 {
		return fmt.Errorf("forecast season must be at least 1, got %d", c.Forecast.Season)
	}
	if c.Forecast.MinObservations < c.Forecast.Horizon {
		return fmt.Errorf("min_observations (%d) must be at least the horizon (%d)",
			c.Forecast.MinObservations, c.Forecast.Horizon)
	}
	if len(c.Forecast.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in 1-65535, got %d", c.Server.Port)
	}
	return nil
}
