package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/triage/internal/adapters/remote"
	"github.com/okian/triage/internal/app"
	"github.com/okian/triage/internal/config"
	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// Metrics listener timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("triage: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(); err != nil {
		return err
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional metrics exposition for the duration of the run.
	if cfg.MetricsAddr != "" {
		startMetricsListener(ctx, cfg.MetricsAddr, log)
	}

	// Overall run deadline so a hung remote cannot stall the process.
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.RunTimeoutMS)*time.Millisecond)
	defer cancel()

	client := remote.NewClient(cfg.BaseURL, cfg.APIKey,
		remote.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.RequestTimeoutMS) * time.Millisecond}),
		remote.WithMaxRetries(cfg.MaxRetries),
		remote.WithServerErrorRetries(cfg.ServerErrorRetries),
		remote.WithRetryAfterFallback(time.Duration(cfg.RetryAfterFallbackS)*time.Second),
	)

	svc := app.New(
		app.WithLogger(log),
		app.WithCollector(remote.NewCollector(client,
			remote.WithPageLimit(cfg.PageLimit),
			remote.WithMaxPages(cfg.MaxPages),
		)),
		app.WithSubmitter(remote.NewSubmitter(client)),
	)

	assessment, err := svc.Run(runCtx)
	if err != nil {
		return err
	}

	log.Info(ctx, "run summary",
		logger.Int("high_risk", len(assessment.HighRisk)),
		logger.Int("fever", len(assessment.Fever)),
		logger.Int("data_quality", len(assessment.DataQuality)))
	return nil
}

// startMetricsListener serves /metrics and /healthz until the root context
// is cancelled. Exposition is best-effort; a listener failure never aborts
// the pipeline.
func startMetricsListener(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "metrics listener starting", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics listener failed", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
