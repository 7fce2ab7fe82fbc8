package main

import (
	"io"
	"log/slog"

	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
)

// setupAppLogger configures and initializes the application logger based on config settings.
func setupAppLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	return logger.Setup(cfg.Server.LogLevel, out)
}
