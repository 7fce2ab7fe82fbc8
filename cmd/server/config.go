package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasktrack/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
// Returns the loaded config and any loading error.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logConfigSummary logs the non-secret parts of the configuration.
func logConfigSummary(cfg *config.Config, logger *slog.Logger) {
	logger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"timezone", cfg.Server.Timezone)

	logger.Debug("Database configuration", "url_present", cfg.Database.URL != "")
	logger.Debug("Cache configuration",
		"redis_url_present", cfg.Cache.RedisURL != "",
		"result_ttl", cfg.Cache.ResultTTL.String(),
		"registry_ttl", cfg.Cache.RegistryTTL.String())
}
