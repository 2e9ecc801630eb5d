// Package config loads service configuration from file, environment and
// flags through viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the archive service.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Graph  GraphConfig  `mapstructure:"graph"`
	Source SourceConfig `mapstructure:"source"`
	Sync   SyncConfig   `mapstructure:"sync"`

	// CircuitBreaker guards store mutations.
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// GraphConfig holds the Dgraph connection settings.
type GraphConfig struct {
	// Addr is the alpha's gRPC address.
	Addr string `mapstructure:"addr"`

	// RequestTimeoutSeconds bounds each store request.
	RequestTimeoutSeconds int `mapstructure:"request_timeout"`

	// MaxRetries is the extra attempts per transiently failing request.
	MaxRetries int `mapstructure:"max_retries"`

	// RetryBackoffMillis is the initial retry delay; it doubles per attempt.
	RetryBackoffMillis int `mapstructure:"retry_backoff_ms"`
}

// SourceConfig holds the relational source settings.
type SourceConfig struct {
	// DSN is a go-sql-driver/mysql data source name.
	DSN string `mapstructure:"dsn"`
}

// SyncConfig holds per-run load settings.
type SyncConfig struct {
	// SkipTitles lists expression titles to exclude from the load;
	// known-bad and test records in the legacy database.
	SkipTitles []string `mapstructure:"skip_titles"`
}

// CircuitBreakerConfig holds configuration for circuit breaking around
// store mutations.
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	IntervalSeconds  int     `mapstructure:"interval"`
	TimeoutSeconds   int     `mapstructure:"timeout"`
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load builds the configuration from viper's merged sources.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("graph.addr", "localhost:9080")
	viper.SetDefault("graph.request_timeout", 30)
	viper.SetDefault("graph.max_retries", 3)
	viper.SetDefault("graph.retry_backoff_ms", 250)

	viper.SetDefault("source.dsn", "root:temp@tcp(dora-temp-maria:3306)/temp")

	// Titles of junk records accumulated in the legacy database.
	viper.SetDefault("sync.skip_titles", []string{
		"Foo",
		"OpgNWeVydVsOulWTXz",
		"IxRCtWZJwPgQGyTEmbb",
		"WHvZIeuZFVbvts",
		"fjuZRLctwBDroRElyZ",
	})

	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}
