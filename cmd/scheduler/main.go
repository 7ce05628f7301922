package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/site-digest/pkg/delivery"
	"github.com/de-tools/site-digest/pkg/services/config"
	"github.com/de-tools/site-digest/pkg/services/digest"
	"github.com/de-tools/site-digest/pkg/store/admins"
	"github.com/de-tools/site-digest/pkg/store/metrics"
	"github.com/de-tools/site-digest/pkg/store/metrics/postgres"
	"github.com/de-tools/site-digest/pkg/store/metrics/snowflake"
)

var (
	cfgPath string
	runOnce bool
	nowFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Generate and deliver the site activity digest on a monthly schedule",
		RunE:  runScheduler,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "digest.yaml",
		"Path to the digest config profile")
	rootCmd.Flags().BoolVar(&runOnce, "run-once", false,
		"Run one delivery cycle and exit (for testing or backfills)")
	rootCmd.Flags().StringVar(&nowFlag, "now", "",
		"Generation date (YYYY-MM-DD). Only used with --run-once")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScheduler(cmd *cobra.Command, _ []string) error {
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
	}

	sender, err := delivery.NewSESSender(ctx, cfg.SES)
	if err != nil {
		return fmt.Errorf("failed to create SES sender: %w", err)
	}

	generator := digest.NewGenerator(metricsStore, cfg.Site.Name)
	svc := digest.NewService(generator, admins.NewStore(primary), sender)

	if runOnce {
		now := time.Now()
		if nowFlag != "" {
			now, err = time.Parse("2006-01-02", nowFlag)
			if err != nil {
				return fmt.Errorf("invalid --now date: %w", err)
			}
		}
		logger.Info().Time("now", now).Msg("running one digest cycle")
		return svc.Run(ctx, now)
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Schedule.Cron, func() {
		runCtx := logger.WithContext(context.Background())
		if err := svc.Run(runCtx, time.Now()); err != nil {
			logger.Error().Err(err).Msg("digest cycle failed")
			return
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", cfg.Schedule.Cron, err)
	}

	c.Start()
	logger.Info().Str("schedule", cfg.Schedule.Cron).Msg("digest scheduler started")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	logger.Info().Msg("shutdown initiated")
	cronCtx := c.Stop()
	<-cronCtx.Done()
	return nil
}
