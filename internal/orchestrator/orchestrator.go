// Package orchestrator implements the get-or-generate protocol: gate check,
// tiered cache lookup, single-flight generation, dual write-back and the
// best-effort warm-up flag.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dayboard/dayboard/internal/cache"
	"github.com/dayboard/dayboard/internal/clock"
	"github.com/dayboard/dayboard/internal/gate"
	"github.com/dayboard/dayboard/internal/generator"
	"github.com/dayboard/dayboard/internal/model"
)

const defaultGenerateTimeout = 60 * time.Second

type Orchestrator struct {
	cache    *cache.Tiered
	gen      generator.Generator
	fallback generator.Generator // nil unless fallback content is enabled
	clk      *clock.Source
	policy   gate.Policy
	timeout  time.Duration
	log      zerolog.Logger

	// flights is the in-process registry of in-flight generations, keyed by
	// ContentKey.String(). Concurrent callers for one key share a single
	// generator call and its result.
	flights singleflight.Group
}

type Option func(*Orchestrator)

// WithFallback enables static fallback content when the generator fails.
// Fallback records are cached with model.SourceFallback; the regenerate
// operation replaces them later.
func WithFallback(fb generator.Generator) Option {
	return func(o *Orchestrator) { o.fallback = fb }
}

// WithGenerateTimeout bounds one generation attempt end to end.
func WithGenerateTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func New(c *cache.Tiered, gen generator.Generator, clk *clock.Source, policy gate.Policy, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cache:   c,
		gen:     gen,
		clk:     clk,
		policy:  policy,
		timeout: defaultGenerateTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetOrGenerate returns the daily artifact for (scope, contentType, date),
// generating it at most once. Locked dates return *model.NotReadyError with
// the unlock instant; generator failures return *model.GenerationError and
// leave nothing cached, so a later call retries.
func (o *Orchestrator) GetOrGenerate(ctx context.Context, scope string, contentType model.ContentType, date model.Date) (*model.ContentRecord, error) {
	key := model.ContentKey{Scope: scope, ContentType: contentType, Date: date}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	if !o.policy.IsUnlocked(date, o.clk.Now()) {
		return nil, &model.NotReadyError{Key: key, UnlocksAt: o.policy.UnlocksAt(date, o.clk.Location())}
	}

	rec, err := o.cache.Get(ctx, key)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, model.ErrNotFound) && !errors.Is(err, model.ErrCacheUnavailable) {
		return nil, err
	}
	// Full miss or every tier down: either way, fall through to generation.
	return o.generateOnce(ctx, key, false)
}

// Regenerate is the explicit manual overwrite path, the only sanctioned way
// to replace an existing record. It skips the cache read but keeps the gate
// and the single-flight registry.
func (o *Orchestrator) Regenerate(ctx context.Context, scope string, contentType model.ContentType, date model.Date) (*model.ContentRecord, error) {
	key := model.ContentKey{Scope: scope, ContentType: contentType, Date: date}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if !o.policy.IsUnlocked(date, o.clk.Now()) {
		return nil, &model.NotReadyError{Key: key, UnlocksAt: o.policy.UnlocksAt(date, o.clk.Location())}
	}
	return o.generateOnce(ctx, key, true)
}

// generateOnce coalesces concurrent callers onto one generator call per key.
// force skips the in-flight cache re-check so a regenerate always reaches
// the generator instead of being satisfied by the record it is replacing.
func (o *Orchestrator) generateOnce(ctx context.Context, key model.ContentKey, force bool) (*model.ContentRecord, error) {
	v, err, shared := o.flights.Do(key.String(), func() (interface{}, error) {
		// A flight that just finished may have filled the cache between the
		// caller's miss and this closure running.
		if !force {
			if rec, err := o.cache.Get(ctx, key); err == nil {
				return rec, nil
			}
		}
		return o.generate(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		o.log.Debug().Str("key", key.String()).Msg("generation shared with concurrent caller")
	}
	return v.(*model.ContentRecord), nil
}

func (o *Orchestrator) generate(ctx context.Context, key model.ContentKey) (*model.ContentRecord, error) {
	// The UI may stop waiting, but the in-flight generation completes or
	// fails on its own and benefits whichever caller arrives next.
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	payload, genErr := o.gen.Generate(genCtx, key.ContentType, key.Date)
	source := model.SourceGenerated
	if genErr != nil {
		o.log.Warn().Err(genErr).Str("key", key.String()).Msg("generator call failed")
		if o.fallback == nil {
			return nil, &model.GenerationError{Key: key, Reason: genErr.Error(), Cause: genErr}
		}
		fb, fbErr := o.fallback.Generate(genCtx, key.ContentType, key.Date)
		if fbErr != nil {
			return nil, &model.GenerationError{Key: key, Reason: genErr.Error(), Cause: genErr}
		}
		payload, source = fb, model.SourceFallback
	}

	rec := &model.ContentRecord{
		Key:         key,
		Payload:     payload,
		GeneratedAt: o.clk.Now(),
		Source:      source,
	}
	if err := o.cache.Put(genCtx, rec); err != nil {
		// Serve the result anyway; the next caller regenerates if no tier
		// kept it.
		o.log.Warn().Err(err).Str("key", key.String()).Msg("write-back failed on every tier")
	}
	return rec, nil
}

// MarkWarmedUp records the best-effort idempotency flag after a warm-up pass
// finished every content type for (scope, date).
func (o *Orchestrator) MarkWarmedUp(ctx context.Context, scope string, date model.Date) error {
	return o.cache.Authoritative().Flags().Set(ctx, &model.GenerationFlag{
		Scope:    scope,
		FlagType: model.FlagWarmup,
		Date:     date,
		SetAt:    o.clk.Now(),
	})
}

// WasWarmedUp reports whether a warm-up pass already completed.
func (o *Orchestrator) WasWarmedUp(ctx context.Context, scope string, date model.Date) (bool, error) {
	return o.cache.Authoritative().Flags().Exists(ctx, scope, model.FlagWarmup, date)
}
