// Package cache composes ordered store tiers into one read-through,
// write-through cache. Tier 0 is the fastest/most local, the last tier the
// authoritative shared store.
package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/store"
)

type Tiered struct {
	tiers []store.Store
	log   zerolog.Logger
}

// NewTiered wires tiers in lookup order.
func NewTiered(log zerolog.Logger, tiers ...store.Store) *Tiered {
	return &Tiered{tiers: tiers, log: log}
}

// Tiers exposes the ordered tier list, read-only.
func (c *Tiered) Tiers() []store.Store { return c.tiers }

// Authoritative returns the last (most durable) tier. Flags and archives
// live there, not in the faster tiers.
func (c *Tiered) Authoritative() store.Store { return c.tiers[len(c.tiers)-1] }

// Get scans tiers in order. A hit at tier k is promoted to tiers 0..k-1
// before returning. Unreachable tiers degrade to the next tier; a payload
// that fails validation counts as a miss and falls through to the tiers
// below it. Returns model.ErrNotFound on a genuine full miss and
// model.ErrCacheUnavailable when every tier errored.
func (c *Tiered) Get(ctx context.Context, key model.ContentKey) (*model.ContentRecord, error) {
	failures := 0
	for i, tier := range c.tiers {
		rec, err := tier.Records().Get(ctx, key)
		if err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				failures++
				c.log.Warn().Err(err).Str("tier", tier.Name()).Str("key", key.String()).Msg("cache tier read failed")
			}
			continue
		}
		if !validRecord(rec) {
			c.log.Warn().Str("tier", tier.Name()).Str("key", key.String()).Msg("malformed stored record, treating as miss")
			continue
		}
		c.promote(ctx, rec, i)
		return rec, nil
	}
	if failures == len(c.tiers) {
		return nil, model.ErrCacheUnavailable
	}
	return nil, model.ErrNotFound
}

// Put writes the record to every tier, best effort. One tier failing must
// not block the others; Put only errors when no tier accepted the write.
func (c *Tiered) Put(ctx context.Context, rec *model.ContentRecord) error {
	var lastErr error
	wrote := false
	for _, tier := range c.tiers {
		if err := tier.Records().Put(ctx, rec); err != nil {
			lastErr = err
			c.log.Warn().Err(err).Str("tier", tier.Name()).Str("key", rec.Key.String()).Msg("cache tier write failed")
			continue
		}
		wrote = true
	}
	if !wrote {
		return lastErr
	}
	return nil
}

// ListByDate reads (scope, date) records from the deepest tier that answers,
// starting with the authoritative one. Used by the archival sweep, which
// wants the most complete view rather than the fastest.
func (c *Tiered) ListByDate(ctx context.Context, scope string, date model.Date) ([]*model.ContentRecord, error) {
	var lastErr error
	for i := len(c.tiers) - 1; i >= 0; i-- {
		recs, err := c.tiers[i].Records().ListByDate(ctx, scope, date)
		if err != nil {
			lastErr = err
			c.log.Warn().Err(err).Str("tier", c.tiers[i].Name()).Msg("cache tier list failed")
			continue
		}
		return recs, nil
	}
	return nil, lastErr
}

// promote copies a record found at tier hit back into the faster tiers.
// Races with a concurrent generation are harmless: records for a key are
// identical in content, so last-writer-wins keeps the invariant.
func (c *Tiered) promote(ctx context.Context, rec *model.ContentRecord, hit int) {
	for i := 0; i < hit; i++ {
		if err := c.tiers[i].Records().Put(ctx, rec); err != nil {
			c.log.Warn().Err(err).Str("tier", c.tiers[i].Name()).Str("key", rec.Key.String()).Msg("cache promotion failed")
		}
	}
}

func validRecord(rec *model.ContentRecord) bool {
	return len(rec.Payload) > 0 && json.Valid(rec.Payload)
}
