package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/platform/postgres"
	"github.com/phrazzld/tasktrack/internal/service/auth"
)

// newRootCommand assembles the tasktrack command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "tasktrack",
		Short: "Per-user task tracking API",
		Long: `tasktrack serves a JSON API for personal task lists.

Configuration is read from config.yaml, a .env file and TASKTRACK_* environment
variables, e.g. TASKTRACK_DATABASE_URL or TASKTRACK_AUTH_JWT_SECRET.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newTokenCommand(),
		newSeedCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	var storeKind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server until SIGINT or SIGTERM.

--store=memory keeps tasks in process for local development; data is lost on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			logger := setupAppLogger(cfg, cmd.ErrOrStderr())
			logConfigSummary(cfg, logger)

			app, err := newApplication(cmd.Context(), cfg, logger, storeKind, nil)
			if err != nil {
				logger.Error("Failed to initialize application", "error", err)
				return err
			}
			defer app.cleanup()

			return app.startHTTPServer(cmd.Context(), app.setupRouter())
		},
	}
	cmd.Flags().StringVar(&storeKind, "store", storePostgres, "task store: postgres or memory")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|status|version",
		Short:     "Manage the database schema",
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			logger := setupAppLogger(cfg, cmd.ErrOrStderr())

			db, err := setupAppDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], logger)
		},
	}
}

func newTokenCommand() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "token --user <uuid>",
		Short: "Print a signed access token for a user",
		Long: `Print a signed access token for a user.

Tokens are meant for local development and manual testing; they expire after
auth.token_lifetime_minutes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUserFlag(userFlag)
			if err != nil {
				return err
			}
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			token, err := issueToken(cmd.Context(), cfg.Auth, userID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "user id the token is issued for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newSeedCommand() *cobra.Command {
	var (
		userFlag string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "seed --user <uuid> [--count 50]",
		Short: "Insert sample tasks for a user",
		Long: `Insert sample tasks for a user into PostgreSQL.

Deadlines are spread over the past five days, today, tomorrow, the coming week
and the coming month; some tasks are already completed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUserFlag(userFlag)
			if err != nil {
				return err
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			logger := setupAppLogger(cfg, cmd.ErrOrStderr())

			app, err := newApplication(cmd.Context(), cfg, logger, storePostgres, nil)
			if err != nil {
				return err
			}
			defer app.cleanup()

			rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
			return app.seedTasks(cmd.Context(), generateSeedTasks(rng, userID, count, app.clock()))
		},
	}
	cmd.Flags().StringVar(&userFlag, "user", "", "owner of the seeded tasks")
	cmd.Flags().IntVar(&count, "count", defaultSeedCount, "number of tasks to create")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func parseUserFlag(value string) (uuid.UUID, error) {
	userID, err := uuid.Parse(value)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("--user must be a non-nil UUID, got %q", value)
	}
	return userID, nil
}

func issueToken(ctx context.Context, cfg config.AuthConfig, userID uuid.UUID) (string, error) {
	jwtService, err := auth.NewJWTService(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to create JWT service: %w", err)
	}
	return jwtService.GenerateToken(ctx, userID)
}
