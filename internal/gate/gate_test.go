package gate

import (
	"testing"
	"time"

	"github.com/dayboard/dayboard/internal/model"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func nyLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	return loc
}

func TestPolicy_UnlockBoundary(t *testing.T) {
	loc := nyLoc(t)
	p := NewPolicy(17)
	target := mustDate(t, "2024-06-02")

	before := time.Date(2024, 6, 1, 16, 59, 0, 0, loc)
	atOpen := time.Date(2024, 6, 1, 17, 0, 0, 0, loc)

	if p.IsUnlocked(target, before) {
		t.Fatal("unlocked at 16:59 the day before")
	}
	if !p.IsUnlocked(target, atOpen) {
		t.Fatal("locked at 17:00 the day before")
	}
}

func TestPolicy_TodayAndPastAlwaysOpen(t *testing.T) {
	loc := nyLoc(t)
	p := NewPolicy(17)
	now := time.Date(2024, 6, 2, 0, 1, 0, 0, loc)

	if !p.IsUnlocked(mustDate(t, "2024-06-02"), now) {
		t.Fatal("current day gated")
	}
	if !p.IsUnlocked(mustDate(t, "2020-01-01"), now) {
		t.Fatal("past date gated")
	}
}

func TestPolicy_SingleLookAhead(t *testing.T) {
	loc := nyLoc(t)
	p := NewPolicy(17)
	// Even at the last minute of the day, day-after-tomorrow stays locked.
	now := time.Date(2024, 6, 1, 23, 59, 0, 0, loc)
	if p.IsUnlocked(mustDate(t, "2024-06-03"), now) {
		t.Fatal("two-day look-ahead permitted")
	}
	if p.IsUnlocked(mustDate(t, "2024-07-01"), now) {
		t.Fatal("far-future date permitted")
	}
}

func TestPolicy_Monotonic(t *testing.T) {
	loc := nyLoc(t)
	p := NewPolicy(17)
	target := mustDate(t, "2024-06-02")

	unlockedAt := time.Time{}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, loc)
	for i := 0; i < 48; i++ {
		now := start.Add(time.Duration(i) * time.Hour)
		open := p.IsUnlocked(target, now)
		if open && unlockedAt.IsZero() {
			unlockedAt = now
		}
		if !open && !unlockedAt.IsZero() {
			t.Fatalf("relocked at %v after opening at %v", now, unlockedAt)
		}
	}
	if unlockedAt.IsZero() {
		t.Fatal("never unlocked")
	}
}

func TestPolicy_UnlocksAt(t *testing.T) {
	loc := nyLoc(t)
	p := NewPolicy(17)
	got := p.UnlocksAt(mustDate(t, "2024-06-02"), loc)
	want := time.Date(2024, 6, 1, 17, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("unlock instant: got %v want %v", got, want)
	}
	// Unlock instant is exactly the boundary of IsUnlocked.
	if p.IsUnlocked(mustDate(t, "2024-06-02"), got.Add(-time.Minute)) {
		t.Fatal("open before unlock instant")
	}
	if !p.IsUnlocked(mustDate(t, "2024-06-02"), got) {
		t.Fatal("closed at unlock instant")
	}
}

func TestNewPolicy_ClampsBadHour(t *testing.T) {
	if p := NewPolicy(-1); p.UnlockHour != DefaultUnlockHour {
		t.Fatalf("negative hour not clamped: %d", p.UnlockHour)
	}
	if p := NewPolicy(24); p.UnlockHour != DefaultUnlockHour {
		t.Fatalf("overflow hour not clamped: %d", p.UnlockHour)
	}
}
