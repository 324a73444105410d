package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by stores when no row matches a key.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotReady means the unlock window for the requested date has not
	// opened yet. Expected state, not a failure.
	ErrNotReady = errors.New("content not ready")
	// ErrGenerationFailed means the external generator call failed; the
	// caller is free to retry.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrMalformedRecord marks a stored payload that fails validation on
	// read. Tiers treat it as a miss.
	ErrMalformedRecord = errors.New("malformed stored record")
	// ErrCacheUnavailable means every cache tier was unreachable. Absorbed
	// by the orchestrator, which falls through to generation.
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// NotReadyError carries the unlock instant so the HTTP surface can tell the
// UI when to come back without re-deriving gate policy.
type NotReadyError struct {
	Key       ContentKey
	UnlocksAt time.Time
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("content %s not ready, unlocks at %s", e.Key, e.UnlocksAt.Format(time.RFC3339))
}

func (e *NotReadyError) Unwrap() error { return ErrNotReady }

// GenerationError carries a human-readable reason for a failed generation
// attempt. Never cached; a later call retries.
type GenerationError struct {
	Key    ContentKey
	Reason string
	Cause  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for %s: %s", e.Key, e.Reason)
}

func (e *GenerationError) Unwrap() error { return ErrGenerationFailed }
