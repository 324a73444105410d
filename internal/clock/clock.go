// Package clock supplies canonical wall-clock time in one fixed reference
// timezone so every device agrees on "today" regardless of local timezone.
package clock

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dayboard/dayboard/internal/model"
)

// Source converts the host clock into canonical time. Production call sites
// construct it with New; tests inject a clockwork fake via NewWithClock.
type Source struct {
	clk clockwork.Clock
	loc *time.Location
}

// New resolves the reference timezone and wires the real system clock.
// Failure here is fatal to the caller: nothing can proceed without time.
func New(timezone string) (*Source, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load canonical timezone %q: %w", timezone, err)
	}
	return &Source{clk: clockwork.NewRealClock(), loc: loc}, nil
}

// NewWithClock wires an injected clock, used by tests to pin time.
func NewWithClock(clk clockwork.Clock, loc *time.Location) *Source {
	return &Source{clk: clk, loc: loc}
}

// Now returns the current instant in the canonical timezone.
func (s *Source) Now() time.Time { return s.clk.Now().In(s.loc) }

// Today returns the canonical calendar date.
func (s *Source) Today() model.Date { return model.DateOf(s.Now()) }

// Hour returns the canonical hour of day, 0..23.
func (s *Source) Hour() int { return s.Now().Hour() }

// Location exposes the canonical timezone for date arithmetic.
func (s *Source) Location() *time.Location { return s.loc }
