// Package dayboardservice boots the dashboard content service: cache tiers,
// generation gate, orchestrator, archival sweep, and the HTTP API.
package dayboardservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dayboard/dayboard/internal/api"
	"github.com/dayboard/dayboard/internal/cache"
	"github.com/dayboard/dayboard/internal/clock"
	"github.com/dayboard/dayboard/internal/config"
	"github.com/dayboard/dayboard/internal/gate"
	"github.com/dayboard/dayboard/internal/generator/ollama"
	"github.com/dayboard/dayboard/internal/generator/static"
	"github.com/dayboard/dayboard/internal/health"
	"github.com/dayboard/dayboard/internal/logger"
	"github.com/dayboard/dayboard/internal/orchestrator"
	"github.com/dayboard/dayboard/internal/services"
	"github.com/dayboard/dayboard/internal/store"
	"github.com/dayboard/dayboard/internal/store/memory"
	"github.com/dayboard/dayboard/internal/store/postgres"
	"github.com/dayboard/dayboard/internal/store/sqlite"
	"github.com/dayboard/dayboard/internal/sweep"
)

// Run starts the dashboard service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("dayboard-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	// Cache tiers, fastest first; the last tier is authoritative.
	tiers, gen, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	clk, err := clock.New(cfg.Timezone)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Invalid timezone")
		return err
	}
	policy := gate.NewPolicy(cfg.UnlockHour)

	orchOpts := []orchestrator.Option{
		orchestrator.WithGenerateTimeout(time.Duration(cfg.GenerateTimeoutSeconds) * time.Second),
	}
	if cfg.EnableFallback {
		orchOpts = append(orchOpts, orchestrator.WithFallback(static.New()))
	}

	tiered := cache.NewTiered(log, tiers...)
	orch := orchestrator.New(tiered, gen, clk, policy, log, orchOpts...)
	svc := services.NewDashboardService(orch, tiered)

	router := api.NewRouter(svc)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, tiers, gen)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	// Background archival sweep and warm-up
	worker := sweep.NewWorker(orch, tiered, clk, policy, sweep.Config{
		Interval: time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		Scopes:   cfg.WarmupScopes,
	}, log)
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Stack().Err(err).Msg("sweep worker stopped")
		}
	}()

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the cache tiers and the generator, failing fast
// when a configured tier cannot be opened.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]store.Store, *ollama.Generator, error) {
	tiers := []store.Store{memory.New()}

	if cfg.SQLitePath != "" {
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			log.Error().Stack().Err(err).Msg("SQLite tier unavailable")
			return nil, nil, err
		}
		tiers = append(tiers, st)
	}

	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Error().Stack().Err(err).Msg("Postgres tier unavailable")
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error().Stack().Err(err).Msg("Postgres migration failed")
			return nil, nil, err
		}
		tiers = append(tiers, postgres.NewWithDB(db))
	}

	if len(tiers) < 2 {
		return nil, nil, fmt.Errorf("no durable tier configured")
	}

	gen := ollama.New(cfg.GeneratorURL, cfg.GeneratorModel, time.Duration(cfg.GenerateTimeoutSeconds)*time.Second)
	return tiers, gen, nil
}

// startHealthCheckers starts component checkers and service-level aggregator; binds health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, tiers []store.Store, gen *ollama.Generator) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	for _, tier := range tiers {
		hc := health.NewPingChecker("store-"+tier.Name(), tier, log, probeTimeout)
		go hc.Start(ctx, interval)
		checkers = append(checkers, hc)
	}

	genChecker := health.NewPingChecker("generator", gen, log, probeTimeout)
	go genChecker.Start(ctx, interval)
	checkers = append(checkers, genChecker)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
