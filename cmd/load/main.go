// Command load reads previously transformed CSVs and inserts them into
// the BigQuery warehouse.
package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-pipeline/internal/config"
	"github.com/dvloznov/banking-pipeline/internal/csvio"
	"github.com/dvloznov/banking-pipeline/internal/gcsio"
	"github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/banking-pipeline/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		project    = flag.String("project", "", "GCP project (overrides config)")
		custPath   = flag.String("customers", "", "Cleaned customers CSV (path or gs:// URI, overrides config)")
		txPath     = flag.String("transactions", "", "Scored transactions CSV (path or gs:// URI, overrides config)")
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
	if cfg.BigQuery.Project == "" {
		log.Fatal().Msg("A GCP project is required: set -project or bigquery.project in the config")
	}

	customersURI := cfg.Data.CleanedCustomers
	if *custPath != "" {
		customersURI = *custPath
	}
	transactionsURI := cfg.Data.CleanedTransactions
	if *txPath != "" {
		transactionsURI = *txPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	store, err := bigquery.NewStore(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery store")
	}
	defer store.Close()

	customersData := mustRead(ctx, log, customersURI)
	customers, err := csvio.ReadCustomers(bytes.NewReader(customersData))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse customers CSV")
	}

	txData := mustRead(ctx, log, transactionsURI)
	txs, err := csvio.ReadScoredTransactions(bytes.NewReader(txData))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse transactions CSV")
	}

	loaded := time.Now()

	customerRows := make([]*bigquery.CustomerRow, 0, len(customers))
	for i := range customers {
		customerRows = append(customerRows, bigquery.CustomerRowFrom(&customers[i], loaded))
	}
	txRows := make([]*bigquery.TransactionRow, 0, len(txs))
	for i := range txs {
		txRows = append(txRows, bigquery.TransactionRowFrom(&txs[i], loaded))
	}

	if err := store.InsertCustomers(ctx, customerRows); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert customers")
	}
	if err := store.InsertTransactions(ctx, txRows); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert transactions")
	}

	log.Info().
		Int("customers", len(customerRows)).
		Int("transactions", len(txRows)).
		Str("project", cfg.BigQuery.Project).
		Str("dataset", cfg.BigQuery.Dataset).
		Msg("Warehouse load complete")
}

func mustRead(ctx context.Context, log zerolog.Logger, uri string) []byte {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(uri, "gs://") {
		data, err = gcsio.Fetch(ctx, uri)
	} else {
		data, err = os.ReadFile(uri)
	}
	if err != nil {
		log.Fatal().Err(err).Str("uri", uri).Msg("Failed to read input")
	}
	return data
}
