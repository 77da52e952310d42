package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"filesend-bot/internal/config"
	"filesend-bot/internal/infrastructure/database"
	"filesend-bot/internal/infrastructure/logger"
	"filesend-bot/internal/infrastructure/observability"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "filesend-bot",
	Short: "Telegram bot that collects student documents into a shared folder",
	Long: `filesend-bot registers students, renames their uploads from the admin
template and delivers them to Yandex Disk, S3 or a local folder.

Examples:
  filesend-bot            # same as serve
  filesend-bot serve
  filesend-bot migrate`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, workers, housekeeping and HTTP probes",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed default settings, then exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireBot(); err != nil {
		return err
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	app, cleanup, err := assembleApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer cleanup()

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return err
	}

	log.Info().Msg("application exited cleanly")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	db, cleanup, err := newGormDB(cmd.Context(), newDatabaseConfig(cfg), cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := database.Ping(cmd.Context(), db); err != nil {
		return err
	}
	log.Info().Msg("database migrated")
	return nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
