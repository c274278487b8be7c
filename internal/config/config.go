// Package config loads and validates the pipeline configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidNumCustomers    = errors.New("generator.num_customers must be at least 1")
	ErrInvalidNumTransactions = errors.New("generator.num_transactions must be at least 1")
	ErrInvalidDateWindow      = errors.New("generator.start_date must precede generator.end_date")
	ErrMissingProject         = errors.New("bigquery.project is required when BigQuery is enabled")
	ErrMissingDataset         = errors.New("bigquery.dataset is required when BigQuery is enabled")
	ErrInvalidPort            = errors.New("server.port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
)

const dateLayout = "2006-01-02"

// Config is the complete pipeline configuration.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Data      DataConfig      `yaml:"data"`
	BigQuery  BigQueryConfig  `yaml:"bigquery"`
	GCS       GCSConfig       `yaml:"gcs"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GeneratorConfig controls synthetic data generation.
type GeneratorConfig struct {
	NumCustomers    int    `yaml:"num_customers"`
	NumTransactions int    `yaml:"num_transactions"`
	Seed            int64  `yaml:"seed"`
	StartDate       string `yaml:"start_date"`
	EndDate         string `yaml:"end_date"`
}

// DataConfig names the local table files.
type DataConfig struct {
	RawCustomers        string `yaml:"raw_customers"`
	RawTransactions     string `yaml:"raw_transactions"`
	CleanedCustomers    string `yaml:"cleaned_customers"`
	CleanedTransactions string `yaml:"cleaned_transactions"`
}

// BigQueryConfig locates the warehouse tables.
type BigQueryConfig struct {
	Project string `yaml:"project"`
	Dataset string `yaml:"dataset"`
}

// GCSConfig names the bucket for raw inputs and cleaned outputs.
type GCSConfig struct {
	Bucket string `yaml:"bucket"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			NumCustomers:    1000,
			NumTransactions: 50000,
			Seed:            42,
			StartDate:       "2023-01-01",
			EndDate:         "2024-12-31",
		},
		Data: DataConfig{
			RawCustomers:        "data/customers.csv",
			RawTransactions:     "data/transactions.csv",
			CleanedCustomers:    "data/customers_cleaned.csv",
			CleanedTransactions: "data/transactions_cleaned.csv",
		},
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML configuration file on top of the defaults. The
// BANKING_PIPELINE_PROJECT and BANKING_PIPELINE_BUCKET environment
// variables override the file, matching how credentials usually arrive
// in deployment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if v := os.Getenv("BANKING_PIPELINE_PROJECT"); v != "" {
		cfg.BigQuery.Project = v
	}
	if v := os.Getenv("BANKING_PIPELINE_BUCKET"); v != "" {
		cfg.GCS.Bucket = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Generator.NumCustomers < 1 {
		return ErrInvalidNumCustomers
	}
	if c.Generator.NumTransactions < 1 {
		return ErrInvalidNumTransactions
	}
	start, err := time.Parse(dateLayout, c.Generator.StartDate)
	if err != nil {
		return fmt.Errorf("config: generator.start_date: %w", err)
	}
	end, err := time.Parse(dateLayout, c.Generator.EndDate)
	if err != nil {
		return fmt.Errorf("config: generator.end_date: %w", err)
	}
	if !start.Before(end) {
		return ErrInvalidDateWindow
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// GeneratorWindow returns the parsed generation date window. Validate
// must have succeeded first.
func (c *Config) GeneratorWindow() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, c.Generator.StartDate)
	end, _ := time.Parse(dateLayout, c.Generator.EndDate)
	return start, end
}
