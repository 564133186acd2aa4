package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grocery-forecast-lab/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on a schedule and expose /metrics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stores, cleanup, err := createStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		s := &server{stores: stores, started: time.Now()}
		return s.Run(ctx)
	},
}

// server runs the pipeline scheduler next to the HTTP endpoints.
type server struct {
	stores  *allStores
	started time.Time

	mu              sync.Mutex
	lastRun         time.Time
	lastRunID       string
	lastError       string
	pipelineRuns    int
	pipelineRunning bool
}

// Run starts the HTTP server and the scheduler, and blocks until ctx is done.
func (s *server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	httpServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", cfg.MetricsAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go s.runUptime(ctx)
	go s.runScheduler(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// runScheduler runs the pipeline immediately and then every interval.
func (s *server) runScheduler(ctx context.Context) {
	logger.Info("starting pipeline scheduler", zap.Duration("interval", cfg.Interval))

	s.runPipeline(ctx)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

// runPipeline executes one orchestrator run unless one is in progress.
func (s *server) runPipeline(ctx context.Context) {
	s.mu.Lock()
	if s.pipelineRunning {
		s.mu.Unlock()
		logger.Info("pipeline already running, skipping")
		return
	}
	s.pipelineRunning = true
	s.mu.Unlock()

	result, err := newOrchestrator(s.stores).Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelineRunning = false
	s.lastRun = time.Now()
	s.pipelineRuns++

	if err != nil {
		s.lastError = err.Error()
		logger.Error("pipeline failed", zap.Error(err))
		return
	}
	s.lastError = ""
	s.lastRunID = result.RunID
	logResult(result)
}

func (s *server) runUptime(ctx context.Context) {
	const step = 10 * time.Second
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			observability.RecordUptime(step.Seconds())
		}
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	LastPipelineRun time.Time `json:"last_pipeline_run,omitempty"`
	LastRunID       string    `json:"last_run_id,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	PipelineRuns    int       `json:"pipeline_runs"`
	PipelineRunning bool      `json:"pipeline_running"`
}

// handleStatus returns server status as JSON.
func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.started).String(),
		LastPipelineRun: s.lastRun,
		LastRunID:       s.lastRunID,
		LastError:       s.lastError,
		PipelineRuns:    s.pipelineRuns,
		PipelineRunning: s.pipelineRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
