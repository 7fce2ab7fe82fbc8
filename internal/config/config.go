package config

import (
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Timezone names the location whose calendar defines the today, week and
	// month deadline buckets.
	Timezone        string        `mapstructure:"timezone" validate:"required,timezone"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Location returns the configured time zone, falling back to UTC.
func (s ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseConfig contains all database-related configuration settings.
// The URL is only required when the PostgreSQL store is used.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// CacheConfig configures the task list cache. Without a Redis URL the
// cache is kept in process memory.
type CacheConfig struct {
	RedisURL                string        `mapstructure:"redis_url" validate:"omitempty,url"`
	ResultTTL               time.Duration `mapstructure:"result_ttl" validate:"gt=0"`
	RegistryTTL             time.Duration `mapstructure:"registry_ttl" validate:"gt=0"`
	BreakerFailureThreshold uint32        `mapstructure:"breaker_failure_threshold" validate:"gt=0"`
	BreakerTimeout          time.Duration `mapstructure:"breaker_timeout" validate:"gt=0"`
}
