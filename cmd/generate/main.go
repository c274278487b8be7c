// Command generate writes synthetic raw customer and transaction CSVs
// for pipeline development and load testing.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/dvloznov/banking-pipeline/internal/config"
	"github.com/dvloznov/banking-pipeline/internal/csvio"
	"github.com/dvloznov/banking-pipeline/internal/generator"
	"github.com/dvloznov/banking-pipeline/internal/logger"
	"github.com/dvloznov/banking-pipeline/internal/model"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		customers  = flag.Int("customers", 0, "Number of customers (overrides config)")
		txs        = flag.Int("transactions", 0, "Number of transactions (overrides config)")
		seed       = flag.Int64("seed", 0, "Random seed (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.New("info")
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logger.New(cfg.Logging.Level)

	if *customers > 0 {
		cfg.Generator.NumCustomers = *customers
	}
	if *txs > 0 {
		cfg.Generator.NumTransactions = *txs
	}
	if *seed != 0 {
		cfg.Generator.Seed = *seed
	}

	start, end := cfg.GeneratorWindow()
	gen := generator.New(generator.Config{
		NumCustomers:    cfg.Generator.NumCustomers,
		NumTransactions: cfg.Generator.NumTransactions,
		Seed:            cfg.Generator.Seed,
		StartDate:       start,
		EndDate:         end,
	})

	log.Info().
		Int("customers", cfg.Generator.NumCustomers).
		Int("transactions", cfg.Generator.NumTransactions).
		Int64("seed", cfg.Generator.Seed).
		Msg("Generating synthetic data")

	rawCustomers := gen.Customers()
	rawTransactions := gen.Transactions(rawCustomers)

	if err := writeCustomers(cfg.Data.RawCustomers, rawCustomers); err != nil {
		log.Fatal().Err(err).Msg("Failed to write customers CSV")
	}
	if err := writeTransactions(cfg.Data.RawTransactions, rawTransactions); err != nil {
		log.Fatal().Err(err).Msg("Failed to write transactions CSV")
	}

	log.Info().
		Str("customers_path", cfg.Data.RawCustomers).
		Str("transactions_path", cfg.Data.RawTransactions).
		Msg("Synthetic data written")
}

func writeCustomers(path string, customers []model.RawCustomer) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return csvio.WriteRawCustomers(f, customers)
}

func writeTransactions(path string, txs []model.RawTransaction) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return csvio.WriteRawTransactions(f, txs)
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
