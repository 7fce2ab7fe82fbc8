package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load,
// e.g. TASKTRACK_DATABASE_URL for database.url.
const EnvPrefix = "TASKTRACK"

var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.timezone":                 "UTC",
	"server.shutdown_timeout":         "15s",
	"database.url":                    "",
	"database.max_open_conns":         25,
	"database.max_idle_conns":         5,
	"database.conn_max_lifetime":      "5m",
	"auth.jwt_secret":                 "",
	"auth.token_lifetime_minutes":     60,
	"cache.redis_url":                 "",
	"cache.result_ttl":                "5m",
	"cache.registry_ttl":              "24h",
	"cache.breaker_failure_threshold": 5,
	"cache.breaker_timeout":           "30s",
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first when present; it
// never overrides variables that are already set. Environment variables take
// precedence over values from config.yaml.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
