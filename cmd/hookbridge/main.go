package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shohag/hookbridge/internal/api"
	"github.com/shohag/hookbridge/internal/chargebee"
	"github.com/shohag/hookbridge/internal/config"
	"github.com/shohag/hookbridge/internal/hookdeck"
	"github.com/shohag/hookbridge/internal/provision"
	"github.com/shohag/hookbridge/internal/storage"
)

var version = "0.1.0"

func main() {
	// Operator credentials usually live in a local .env; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "hookbridge",
		Short: "hookbridge — billing webhook routing for Chargebee via Hookdeck",
	}

	var configPath string
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(setupCmd(&configPath))
	rootCmd.AddCommand(teardownCmd(&configPath))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook handler server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			log := setupLogger(cfg.Logging)

			store, err := setupStorage(cfg.Storage, log)
			if err != nil {
				return fmt.Errorf("failed to setup storage: %w", err)
			}
			defer store.Close()

			if err := store.Migrate(context.Background()); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			server := api.NewServer(cfg.Server, cfg.Webhook, store, log)
			go func() {
				if err := server.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server error")
				}
			}()

			log.Info().
				Str("version", version).
				Int("port", cfg.Server.Port).
				Msg("hookbridge is running")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info().Msg("shutting down...")

			if err := server.Shutdown(10 * time.Second); err != nil {
				log.Error().Err(err).Msg("server shutdown error")
			}

			log.Info().Msg("hookbridge stopped")
			return nil
		},
	}
}

func setupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup <dev|prod>",
		Short: "Provision gateway routing and the billing webhook endpoint",
		Long: `Idempotently provisions the webhook topology: the gateway source, the three
event-type connections (customer, subscription, payment), and the billing
provider's webhook endpoint registration.

Safe to re-run: every resource is keyed by a stable name and upserted in
place. There is no rollback on partial failure — re-running converges. Do not
run two setups concurrently; the billing endpoint's list-then-create check can
race and leave a duplicate registration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := provision.ParseMode(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ValidateProvision(mode == provision.ModeProd); err != nil {
				return err
			}

			log := setupLogger(cfg.Logging)
			rec := reconcilerFromConfig(cfg, log)

			result, err := rec.Apply(cmd.Context(), mode)
			if err != nil {
				return err
			}

			log.Info().
				Str("mode", string(mode)).
				Str("source_url", result.Source.URL).
				Int("connections", len(result.Connections)).
				Bool("endpoint_created", result.EndpointCreated).
				Msg("setup complete")

			fmt.Printf("Source URL: %s\n", result.Source.URL)
			return nil
		},
	}
}

func teardownCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete the gateway resources this tool provisioned",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Hookdeck.APIKey == "" {
				return fmt.Errorf("missing required environment variables: HOOKDECK_API_KEY")
			}

			log := setupLogger(cfg.Logging)
			rec := reconcilerFromConfig(cfg, log)

			return rec.Cleanup(cmd.Context(), os.Stdin, os.Stdout, yes)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "delete without prompting")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hookbridge v%s\n", version)
		},
	}
}

func reconcilerFromConfig(cfg *config.Config, log zerolog.Logger) *provision.Reconciler {
	gateway := hookdeck.NewClient(cfg.Hookdeck.APIURL, cfg.Hookdeck.APIKey)
	billing := chargebee.NewClient(cfg.Chargebee.Site, cfg.Chargebee.APIKey, cfg.Chargebee.APIURL)
	return provision.NewReconciler(gateway, billing, cfg.Webhook, cfg.Destination.BaseURL, log)
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func setupStorage(cfg config.StorageConfig, log zerolog.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case "sqlite":
		log.Info().Str("path", cfg.SQLite.Path).Msg("using SQLite storage")
		return storage.NewSQLite(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
