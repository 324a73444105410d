// Package sweep runs the recurring background job: archiving the day that
// just closed and warming up the next day's content once its window opens.
package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dayboard/dayboard/internal/cache"
	"github.com/dayboard/dayboard/internal/clock"
	"github.com/dayboard/dayboard/internal/gate"
	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/orchestrator"
)

// Config controls cadence and which scopes the sweep covers.
type Config struct {
	Interval time.Duration // poll interval
	Scopes   []string      // scopes to archive and warm up
}

// Worker drives the archive and warm-up passes on a timer.
type Worker struct {
	orch   *orchestrator.Orchestrator
	cache  *cache.Tiered
	clk    *clock.Source
	policy gate.Policy
	cfg    Config
	log    zerolog.Logger
}

func NewWorker(orch *orchestrator.Orchestrator, c *cache.Tiered, clk *clock.Source, policy gate.Policy, cfg Config, log zerolog.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Worker{orch: orch, cache: c, clk: clk, policy: policy, cfg: cfg, log: log}
}

// Run starts the polling loop until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.cfg.Interval).Strs("scopes", w.cfg.Scopes).Msg("sweep worker starting")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("sweep worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				// Log and continue; every pass is idempotent.
				w.log.Error().Err(err).Msg("sweep processOnce")
			}
		}
	}
}

// ProcessOnce runs one archive pass and one warm-up pass. Exported so the
// standalone sweeper binary and tests can drive single iterations.
func (w *Worker) ProcessOnce(ctx context.Context) error {
	now := w.clk.Now()
	today := w.clk.Today()
	yesterday := today.Prev()
	tomorrow := today.Next()

	var lastErr error
	for _, scope := range w.cfg.Scopes {
		if err := w.archive(ctx, scope, yesterday); err != nil {
			lastErr = err
			w.log.Error().Err(err).Str("scope", scope).Str("date", yesterday.String()).Msg("archive pass failed")
		}
		if w.policy.IsUnlocked(tomorrow, now) {
			if err := w.warmup(ctx, scope, tomorrow); err != nil {
				lastErr = err
				w.log.Error().Err(err).Str("scope", scope).Str("date", tomorrow.String()).Msg("warm-up pass failed")
			}
		}
	}
	return lastErr
}

// archive snapshots every content record for (scope, date) into one terminal
// ArchiveRecord. Idempotence comes from the archive's own existence, not a
// separate flag; partial days are archived with their gaps logged.
func (w *Worker) archive(ctx context.Context, scope string, date model.Date) error {
	archives := w.cache.Authoritative().Archives()

	if _, err := archives.Get(ctx, scope, date); err == nil {
		return nil // already archived
	} else if !errors.Is(err, model.ErrNotFound) {
		return err
	}

	recs, err := w.cache.ListByDate(ctx, scope, date)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		// Nothing generated for that date yet; leave it unarchived so a
		// later sweep can still pick up records promoted from other tiers.
		w.log.Info().Str("scope", scope).Str("date", date.String()).Msg("no records to archive")
		return nil
	}

	snapshot := make(map[model.ContentType]json.RawMessage, len(recs))
	for _, rec := range recs {
		snapshot[rec.Key.ContentType] = rec.Payload
	}
	for _, ct := range model.KnownContentTypes() {
		if _, ok := snapshot[ct]; !ok {
			w.log.Warn().Str("scope", scope).Str("date", date.String()).Str("contentType", string(ct)).Msg("archiving without content type")
		}
	}

	ar := &model.ArchiveRecord{
		Scope:      scope,
		Date:       date,
		Snapshot:   snapshot,
		ArchivedAt: w.clk.Now(),
	}
	if err := archives.Put(ctx, ar); err != nil {
		return err
	}
	w.log.Info().Str("scope", scope).Str("date", date.String()).Int("types", len(snapshot)).Msg("archived day")
	return nil
}

// warmup pre-generates every content type for (scope, date) once the window
// is open, guarded by the best-effort GenerationFlag so repeated sweeps in
// the same window do not re-walk all types.
func (w *Worker) warmup(ctx context.Context, scope string, date model.Date) error {
	done, err := w.orch.WasWarmedUp(ctx, scope, date)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	allOK := true
	for _, ct := range model.KnownContentTypes() {
		if _, err := w.orch.GetOrGenerate(ctx, scope, ct, date); err != nil {
			allOK = false
			w.log.Warn().Err(err).Str("scope", scope).Str("contentType", string(ct)).Str("date", date.String()).Msg("warm-up generation failed")
		}
	}
	if !allOK {
		// Flag stays unset so the next sweep retries the failed types; the
		// successful ones are already cached and will not regenerate.
		return nil
	}
	if err := w.orch.MarkWarmedUp(ctx, scope, date); err != nil {
		return err
	}
	w.log.Info().Str("scope", scope).Str("date", date.String()).Msg("warm-up pass complete")
	return nil
}
