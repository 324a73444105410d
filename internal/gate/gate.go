// Package gate holds the pure unlock policy deciding when a calendar date's
// content may be generated or viewed. No I/O, no side effects, so the rule is
// testable independent of real time.
package gate

import (
	"time"

	"github.com/dayboard/dayboard/internal/model"
)

// DefaultUnlockHour is the canonical hour (day before the target date) at
// which next-day content opens.
const DefaultUnlockHour = 17

// Policy is the unlock rule. UnlockHour is configurable; everything else is
// fixed: today and the past are always open, and look-ahead never exceeds a
// single day.
type Policy struct {
	UnlockHour int
}

// NewPolicy clamps the configured hour into 0..23, falling back to the
// default when out of range.
func NewPolicy(unlockHour int) Policy {
	if unlockHour < 0 || unlockHour > 23 {
		unlockHour = DefaultUnlockHour
	}
	return Policy{UnlockHour: unlockHour}
}

// IsUnlocked reports whether content for target is viewable/generatable at
// now. Monotonic in now: once true for a given target it stays true.
func (p Policy) IsUnlocked(target model.Date, now time.Time) bool {
	today := model.DateOf(now)
	switch days := today.DaysUntil(target); {
	case days <= 0:
		// Current-day content has no gate; the past is always readable.
		return true
	case days == 1:
		return now.Hour() >= p.UnlockHour
	default:
		// Single look-ahead is a policy invariant, not an accident.
		return false
	}
}

// UnlocksAt returns the instant at which target's window opens in loc. For
// dates that are already open relative to any plausible now, this is the
// evening before the target date; callers only consult it on the locked path.
func (p Policy) UnlocksAt(target model.Date, loc *time.Location) time.Time {
	return target.Prev().At(p.UnlockHour, loc)
}
