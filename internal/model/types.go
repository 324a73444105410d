package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContentType identifies one dashboard module's daily artifact.
type ContentType string

const (
	ContentFoodPlan       ContentType = "food-plan"
	ContentLanguageLesson ContentType = "language-lesson"
	ContentAnalyticsQuiz  ContentType = "analytics-quiz"
	ContentPhysicsFact    ContentType = "physics-fact"
	ContentExercisePlan   ContentType = "exercise-plan"
	ContentDailyBrief     ContentType = "daily-brief"
)

// KnownContentTypes lists every content type the archival sweep and warm-up
// pass iterate over. Order is stable for deterministic sweeps.
func KnownContentTypes() []ContentType {
	return []ContentType{
		ContentFoodPlan,
		ContentLanguageLesson,
		ContentAnalyticsQuiz,
		ContentPhysicsFact,
		ContentExercisePlan,
		ContentDailyBrief,
	}
}

// ParseContentType validates a wire string against the known set.
func ParseContentType(s string) (ContentType, error) {
	for _, ct := range KnownContentTypes() {
		if string(ct) == s {
			return ct, nil
		}
	}
	return "", fmt.Errorf("%w: unknown content type %q", ErrValidation, s)
}

// ContentKey is the composite identity of one daily artifact. Every place a
// key is built or parsed goes through this type; tiers and the single-flight
// registry share its String encoding.
type ContentKey struct {
	Scope       string      `json:"scope"`
	ContentType ContentType `json:"contentType"`
	Date        Date        `json:"date"`
}

// String returns the canonical composite encoding scope/contentType/date.
func (k ContentKey) String() string {
	return k.Scope + "/" + string(k.ContentType) + "/" + k.Date.String()
}

// Validate checks that all key components are present.
func (k ContentKey) Validate() error {
	if k.Scope == "" {
		return fmt.Errorf("%w: scope required", ErrValidation)
	}
	if k.ContentType == "" {
		return fmt.Errorf("%w: content type required", ErrValidation)
	}
	if k.Date.IsZero() {
		return fmt.Errorf("%w: date required", ErrValidation)
	}
	return nil
}

// RecordSource distinguishes generated payloads from static fallbacks.
type RecordSource string

const (
	SourceGenerated RecordSource = "generated"
	SourceFallback  RecordSource = "fallback"
)

// ContentRecord is one generated daily artifact. Immutable once written for a
// given key; only the explicit regenerate operation may overwrite it.
type ContentRecord struct {
	Key         ContentKey      `json:"key"`
	Payload     json.RawMessage `json:"payload"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Source      RecordSource    `json:"source"`
}

// GenerationFlag marks a completed warm-up pass for a (scope, date) pair.
// Best effort; correctness comes from single-flight and the cache check.
type GenerationFlag struct {
	Scope    string    `json:"scope"`
	FlagType string    `json:"flagType"`
	Date     Date      `json:"date"`
	SetAt    time.Time `json:"setAt"`
}

// FlagWarmup is the flag type written by the background warm-up pass.
const FlagWarmup = "warmup"

// ArchiveRecord is the terminal per-date snapshot of all generated content.
// Created at most once per date, after that date's window has closed.
type ArchiveRecord struct {
	Scope      string                          `json:"scope"`
	Date       Date                            `json:"date"`
	Snapshot   map[ContentType]json.RawMessage `json:"snapshot"`
	ArchivedAt time.Time                       `json:"archivedAt"`
}
