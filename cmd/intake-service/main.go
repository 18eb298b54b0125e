package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	_ "intake/cmd/intake-service/docs"
	"intake/internal/config"
	"intake/internal/constants"
	"intake/internal/logger"
	"intake/pkg/cel"
	"intake/pkg/logging"
)

var (
	configFile  string
	migrateDown bool
)

// @title           Intake Service API
// @version         1.0
// @description     Contact form intake: validation, rate limiting, email notification and storage
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  contact@geosync.agency

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api

// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	rootCmd := &cobra.Command{
		Use:   constants.ServiceName,
		Short: "Contact form intake service",
		Long:  "Intake Service accepts contact form submissions, notifies the team by email and stores them",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (falls back to CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(rulesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config path and builds the structured logger.
func loadConfig() (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}

	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting Intake Service",
				"port", cfg.Server.Port,
				"driver", cfg.Database.Driver,
				"ratelimit_store", cfg.RateLimit.Store,
			)

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				app.Shutdown(ctx)
				return err
			}

			if err := app.Run(ctx); err != nil {
				log.ErrorwCtx(ctx, "Application error", "error", err)
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Set up the submissions table or collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runMigrate(ctx, cfg, log, migrateDown)
		},
	}

	cmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all Postgres migrations")
	return cmd
}

// rulesCmd compiles the configured screening rules, or prints the sample
// rules when no config is given.
func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Check screening rules or list sample rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if configFile == "" && os.Getenv("CONFIG_FILE") == "" {
				names := make([]string, 0, len(cel.ScreeningExamples))
				for name := range cel.ScreeningExamples {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "%s: %s\n", name, cel.ScreeningExamples[name])
				}
				return nil
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			rules := make([]cel.Rule, 0, len(cfg.Screening.Rules))
			for _, r := range cfg.Screening.Rules {
				rules = append(rules, cel.Rule{Name: r.Name, Expression: r.Expression})
			}
			if _, err := cel.NewScreener(rules); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d screening rules compiled\n", len(rules))
			return nil
		},
	}
}
