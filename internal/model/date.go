package model

import (
	"fmt"
	"time"
)

// dateLayout is the canonical wire and storage encoding for calendar dates.
const dateLayout = "2006-01-02"

// Date is a plain calendar date in the canonical timezone, with no time
// component. It is the only dateKey representation used by stores, the
// orchestrator and the HTTP surface.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{year: year, month: month, day: day}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}, nil
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// String returns the YYYY-MM-DD encoding.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

// At returns the instant at the given hour on d in loc.
func (d Date) At(hour int, loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, hour, 0, 0, 0, loc)
}

// Next returns the following calendar day.
func (d Date) Next() Date { return d.add(1) }

// Prev returns the preceding calendar day.
func (d Date) Prev() Date { return d.add(-1) }

// DaysUntil returns the signed number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	a := time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
	b := time.Date(other.year, other.month, other.day, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func (d Date) add(days int) Date {
	t := time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
