// Command transform runs the cleaning, aggregation and anomaly
// detection pipeline file to file. Inputs and outputs may be local
// paths or gs:// URIs. With -project it also loads the warehouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/config"
	"github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/banking-pipeline/internal/insights"
	"github.com/dvloznov/banking-pipeline/internal/logger"
	"github.com/dvloznov/banking-pipeline/internal/runner"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		inCust     = flag.String("customers", "", "Raw customers CSV (path or gs:// URI, overrides config)")
		inTx       = flag.String("transactions", "", "Raw transactions CSV (path or gs:// URI, overrides config)")
		outCust    = flag.String("out-customers", "", "Cleaned customers CSV output (overrides config)")
		outTx      = flag.String("out-transactions", "", "Scored transactions CSV output (overrides config)")
		outReport  = flag.String("out-report", "", "Quality report JSON output (optional)")
		project    = flag.String("project", "", "GCP project for warehouse load (disabled when empty)")
		narrative  = flag.Bool("narrative", false, "Print an AI-written summary of the quality report")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.New("info")
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logger.New(cfg.Logging.Level)

	customersURI := cfg.Data.RawCustomers
	if *inCust != "" {
		customersURI = *inCust
	}
	transactionsURI := cfg.Data.RawTransactions
	if *inTx != "" {
		transactionsURI = *inTx
	}
	cleanedCustomersURI := cfg.Data.CleanedCustomers
	if *outCust != "" {
		cleanedCustomersURI = *outCust
	}
	cleanedTransactionsURI := cfg.Data.CleanedTransactions
	if *outTx != "" {
		cleanedTransactionsURI = *outTx
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var warehouse runner.Warehouse
	if *project != "" {
		store, err := bigquery.NewStore(ctx, *project, cfg.BigQuery.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery store")
		}
		defer store.Close()
		warehouse = store
	}

	run := runner.New(warehouse, log)

	state, runID, err := run.Run(ctx, customersURI, transactionsURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Pipeline run failed")
	}
	if runID != "" {
		log.Info().Str("run_id", runID).Msg("Warehouse run recorded")
	}

	if err := run.WriteOutputs(ctx, state, cleanedCustomersURI, cleanedTransactionsURI, *outReport); err != nil {
		log.Fatal().Err(err).Msg("Failed to write outputs")
	}

	if *narrative {
		summarizer, err := insights.NewGeminiSummarizer(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create summarizer")
		}
		text, err := summarizer.Summarize(ctx, state.Report)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to summarize report")
		}
		fmt.Println(text)
	}
}
