// Command migrate creates the BigQuery dataset and pipeline tables.
// All statements are idempotent, so re-running it is safe.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/config"
	"github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/banking-pipeline/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		project    = flag.String("project", "", "GCP project (overrides config)")
		dataset    = flag.String("dataset", "", "BigQuery dataset (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.New("info")
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logger.New(cfg.Logging.Level)

	if *project != "" {
		cfg.BigQuery.Project = *project
	}
	if *dataset != "" {
		cfg.BigQuery.Dataset = *dataset
	}
	if cfg.BigQuery.Project == "" {
		log.Fatal().Msg("A GCP project is required: set -project or bigquery.project in the config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := bigquery.NewStore(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer store.Close()

	log.Info().
		Str("project", cfg.BigQuery.Project).
		Str("dataset", cfg.BigQuery.Dataset).
		Msg("Applying schema")

	if err := store.EnsureDataset(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure dataset")
	}
	if err := store.EnsureTables(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure tables")
	}

	log.Info().Msg("Schema is up to date")
}
