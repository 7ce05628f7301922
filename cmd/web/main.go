package main

import (
	"database/sql"
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/site-digest/pkg/delivery"
	"github.com/de-tools/site-digest/pkg/server"
	"github.com/de-tools/site-digest/pkg/services/config"
	"github.com/de-tools/site-digest/pkg/services/digest"
	"github.com/de-tools/site-digest/pkg/store/admins"
	"github.com/de-tools/site-digest/pkg/store/metrics"
	"github.com/de-tools/site-digest/pkg/store/metrics/postgres"
	"github.com/de-tools/site-digest/pkg/store/metrics/snowflake"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the site activity digest",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "digest.yaml",
		"Path to the digest config profile")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	primary, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	defer primary.Close()

	var metricsStore metrics.Store = postgres.NewStore(primary)
	if cfg.Snowflake.Enabled {
		warehouse, err := snowflake.OpenDB(cfg.Snowflake.Config)
		if err != nil {
			return err
		}
		defer warehouse.Close()
		metricsStore = snowflake.NewStore(warehouse)
		logger.Info().Str("account", cfg.Snowflake.Account).Msg("serving metrics from snowflake")
	}

	sender, err := delivery.NewSESSender(ctx, cfg.SES)
	if err != nil {
		return fmt.Errorf("failed to create SES sender: %w", err)
	}

	generator := digest.NewGenerator(metricsStore, cfg.Site.Name)
	svc := digest.NewService(generator, admins.NewStore(primary), sender)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Generator: generator,
			Runner:    svc,
		},
	})

	logger.Info().Str("addr", addr).Str("site", cfg.Site.Name).Msg("starting digest server")
	return api.Start()
}
