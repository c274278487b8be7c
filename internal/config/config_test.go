package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1000, cfg.Generator.NumCustomers)
	assert.Equal(t, int64(42), cfg.Generator.Seed)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := writeConfigFile(t, `
generator:
  num_customers: 10
  seed: 7
bigquery:
  project: demo-project
  dataset: banking
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Generator.NumCustomers)
	assert.Equal(t, int64(7), cfg.Generator.Seed)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 50000, cfg.Generator.NumTransactions)
	assert.Equal(t, "data/customers.csv", cfg.Data.RawCustomers)

	assert.Equal(t, "demo-project", cfg.BigQuery.Project)
	assert.Equal(t, "banking", cfg.BigQuery.Dataset)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfigFile(t, `
bigquery:
  project: from-file
gcs:
  bucket: file-bucket
`)
	t.Setenv("BANKING_PIPELINE_PROJECT", "from-env")
	t.Setenv("BANKING_PIPELINE_BUCKET", "env-bucket")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.BigQuery.Project)
	assert.Equal(t, "env-bucket", cfg.GCS.Bucket)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero customers", func(c *Config) { c.Generator.NumCustomers = 0 }, ErrInvalidNumCustomers},
		{"zero transactions", func(c *Config) { c.Generator.NumTransactions = 0 }, ErrInvalidNumTransactions},
		{"inverted window", func(c *Config) { c.Generator.StartDate, c.Generator.EndDate = c.Generator.EndDate, c.Generator.StartDate }, ErrInvalidDateWindow},
		{"empty window is inverted", func(c *Config) { c.Generator.EndDate = c.Generator.StartDate }, ErrInvalidDateWindow},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, ErrInvalidPort},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, ErrInvalidPort},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidateUnparseableDates(t *testing.T) {
	cfg := Default()
	cfg.Generator.StartDate = "01/01/2023"
	assert.Error(t, cfg.Validate())
}

func TestGeneratorWindow(t *testing.T) {
	cfg := Default()
	start, end := cfg.GeneratorWindow()
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), end)
}
