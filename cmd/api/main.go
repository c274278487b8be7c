// Command api serves the pipeline HTTP API and runs the job worker
// that executes enqueued pipeline runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/banking-pipeline/internal/api/handlers"
	"github.com/dvloznov/banking-pipeline/internal/api/middleware"
	"github.com/dvloznov/banking-pipeline/internal/config"
	infraBQ "github.com/dvloznov/banking-pipeline/internal/infra/bigquery"
	"github.com/dvloznov/banking-pipeline/internal/insights"
	"github.com/dvloznov/banking-pipeline/internal/jobs"
	"github.com/dvloznov/banking-pipeline/internal/jobs/inmemory"
	"github.com/dvloznov/banking-pipeline/internal/logger"
	"github.com/dvloznov/banking-pipeline/internal/runner"
)

func main() {
	var (
		configPath    = flag.String("config", "", "Path to YAML config file")
		withNarrative = flag.Bool("narrative", false, "Enable AI narratives on the report endpoint")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.New("info")
		fallback.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logger.New(cfg.Logging.Level)

	ctx := context.Background()

	// The warehouse is optional: without a project the service still
	// runs file-to-file jobs and serves the in-memory report.
	var store *infraBQ.Store
	if cfg.BigQuery.Project != "" {
		store, err = infraBQ.NewStore(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery store")
		}
		defer store.Close()
	} else {
		log.Warn().Msg("No GCP project configured, warehouse endpoints are disabled")
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 5, jobStore)

	reportCache := handlers.NewReportCache()

	var warehouse runner.Warehouse
	if store != nil {
		warehouse = store
	}
	pipelineRunner := runner.New(warehouse, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		runJob, ok := job.(*jobs.PipelineRunJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", runJob.JobID).
			Str("customers_uri", runJob.CustomersURI).
			Str("transactions_uri", runJob.TransactionsURI).
			Msg("Processing pipeline run job")

		state, runID, err := pipelineRunner.Run(ctx, runJob.CustomersURI, runJob.TransactionsURI)
		if err != nil {
			log.Error().Err(err).Str("job_id", runJob.JobID).Msg("Pipeline run failed")
			return err
		}
		runJob.RunID = runID

		if err := pipelineRunner.WriteOutputs(ctx, state,
			cfg.Data.CleanedCustomers, cfg.Data.CleanedTransactions, ""); err != nil {
			log.Error().Err(err).Str("job_id", runJob.JobID).Msg("Failed to write outputs")
			return err
		}

		reportCache.Set(state.Report)

		log.Info().
			Str("job_id", runJob.JobID).
			Str("run_id", runID).
			Msg("Pipeline run completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	var summarizer insights.Summarizer
	if *withNarrative {
		summarizer, err = insights.NewGeminiSummarizer(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create summarizer")
		}
	}

	var ledger handlers.RunLedger
	var catalog handlers.AnalyticsCatalog
	if store != nil {
		ledger = store
		catalog = store
	}

	runsHandler := handlers.NewRunsHandler(jobQueue, ledger, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)
	reportHandler := handlers.NewReportHandler(reportCache, summarizer, log)
	analyticsHandler := handlers.NewAnalyticsHandler(catalog, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			runsHandler.EnqueueRun(w, r)
		case http.MethodGet:
			runsHandler.ListRuns(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/runs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
		if runID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Run ID is required")
			return
		}
		runsHandler.GetRun(w, r, runID)
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobsHandler.ListJobs(w, r)
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/api/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		reportHandler.GetReport(w, r)
	})

	requireCatalog := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			if catalog == nil {
				middleware.WriteError(w, http.StatusServiceUnavailable, "Analytics catalog is not configured")
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/api/analytics/monthly", requireCatalog(analyticsHandler.MonthlyTrend))
	mux.HandleFunc("/api/analytics/top-spenders", requireCatalog(analyticsHandler.TopSpenders))
	mux.HandleFunc("/api/analytics/volatility", requireCatalog(analyticsHandler.Volatility))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
