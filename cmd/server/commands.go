package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/notes-api/internal/config"
	"github.com/phrazzld/notes-api/internal/platform/logger"
	"github.com/phrazzld/notes-api/internal/platform/sqlstore"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// cliOptions holds the flags shared by every subcommand.
type cliOptions struct {
	configFile string
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "notes-server",
		Short: "A notes REST API with background summary and sentiment enrichment",
		Long: `notes-server stores notes in PostgreSQL or SQLite and enriches every
new note with a short summary and a sentiment score computed out-of-band.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func newServeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status|version]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{sqlstore.MigrateUp, sqlstore.MigrateDown, sqlstore.MigrateReset, sqlstore.MigrateStatus, sqlstore.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(opts, false)
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), cfg, args[0], log)
		},
	}
}

func newConfigCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(opts.configFile).Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			return enc.Close()
		},
	}
}

// loadConfigAndLogger loads the configuration and sets up the application
// logger from it. With watch set, later edits of server.log_level in the
// config file take effect without a restart.
func loadConfigAndLogger(opts *cliOptions, watch bool) (*config.Config, *slog.Logger, error) {
	loader := config.NewLoader(opts.configFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, levelVar, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"config_file", loader.ConfigFileUsed())

	if watch && loader.WatchLogLevel(func(level string) {
		if err := logger.SetLevel(levelVar, level); err != nil {
			log.Warn("ignoring invalid log level from config file", "level", level, "error", err)
			return
		}
		log.Info("log level changed", "level", level)
	}) {
		log.Debug("watching config file for log level changes")
	}

	return cfg, log, nil
}

// runServe starts the application and blocks until SIGINT or SIGTERM.
func runServe(ctx context.Context, opts *cliOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfigAndLogger(opts, true)
	if err != nil {
		return err
	}

	db, dialect, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if err := sqlstore.Migrate(ctx, db, dialect, sqlstore.MigrateUp, log); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, log, db, dialect, newEnrichmentProvider(cfg, log))
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// runMigrate executes a single migration command.
func runMigrate(ctx context.Context, cfg *config.Config, command string, log *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, dialect, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}()

	return sqlstore.Migrate(ctx, db, dialect, command, log)
}
