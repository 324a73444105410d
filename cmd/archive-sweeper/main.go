// archive-sweeper runs the archival sweep and warm-up loop without the HTTP
// API, for deployments that schedule it separately from the service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dayboard/dayboard/internal/cache"
	"github.com/dayboard/dayboard/internal/clock"
	"github.com/dayboard/dayboard/internal/config"
	"github.com/dayboard/dayboard/internal/gate"
	"github.com/dayboard/dayboard/internal/generator/ollama"
	"github.com/dayboard/dayboard/internal/generator/static"
	"github.com/dayboard/dayboard/internal/logger"
	"github.com/dayboard/dayboard/internal/orchestrator"
	"github.com/dayboard/dayboard/internal/store"
	"github.com/dayboard/dayboard/internal/store/memory"
	"github.com/dayboard/dayboard/internal/store/postgres"
	"github.com/dayboard/dayboard/internal/store/sqlite"
	"github.com/dayboard/dayboard/internal/sweep"
)

func main() {
	lg := logger.New("archive-sweeper")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tiers := []store.Store{memory.New()}
	if cfg.SQLitePath != "" {
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("sqlite open")
		}
		tiers = append(tiers, st)
	}
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open")
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("postgres migrate")
		}
		tiers = append(tiers, postgres.NewWithDB(db))
	}

	clk, err := clock.New(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("timezone")
	}
	policy := gate.NewPolicy(cfg.UnlockHour)

	gen := ollama.New(cfg.GeneratorURL, cfg.GeneratorModel, time.Duration(cfg.GenerateTimeoutSeconds)*time.Second)
	opts := []orchestrator.Option{
		orchestrator.WithGenerateTimeout(time.Duration(cfg.GenerateTimeoutSeconds) * time.Second),
	}
	if cfg.EnableFallback {
		opts = append(opts, orchestrator.WithFallback(static.New()))
	}

	tiered := cache.NewTiered(lg, tiers...)
	orch := orchestrator.New(tiered, gen, clk, policy, lg, opts...)

	w := sweep.NewWorker(orch, tiered, clk, policy, sweep.Config{
		Interval: time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
		Scopes:   cfg.WarmupScopes,
	}, lg)

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("sweep worker exit")
		os.Exit(1)
	}
}
