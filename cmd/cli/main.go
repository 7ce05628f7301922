package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
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
	nowFlag string
	format  string
	send    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "site-digest",
		Short: "Generate the monthly site activity digest",
		RunE:  run,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "digest.yaml",
		"Path to the digest config profile")
	rootCmd.Flags().StringVar(&nowFlag, "now", "",
		"Generation date (YYYY-MM-DD, defaults to today)")
	rootCmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	rootCmd.Flags().BoolVar(&send, "send", false,
		"Deliver the digest to the site admins instead of printing it")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	now := time.Now()
	if nowFlag != "" {
		parsed, err := time.Parse("2006-01-02", nowFlag)
		if err != nil {
			return fmt.Errorf("invalid --now date: %w", err)
		}
		now = parsed
	}

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

	generator := digest.NewGenerator(metricsStore, cfg.Site.Name)

	if send {
		sender, err := delivery.NewSESSender(ctx, cfg.SES)
		if err != nil {
			return err
		}
		svc := digest.NewService(generator, admins.NewStore(primary), sender)
		return svc.Run(ctx, now)
	}

	report, err := generator.Generate(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to generate digest: %w", err)
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	body, err := delivery.RenderBody(report)
	if err != nil {
		return err
	}
	fmt.Println(body)
	return nil
}
