package model

import (
	"testing"
	"time"
)

func TestParseDate_RoundTrip(t *testing.T) {
	d, err := ParseDate("2024-06-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := d.String(); got != "2024-06-02" {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "02/06/2024", "2024-06-02T10:00:00Z"} {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestDate_NextPrev(t *testing.T) {
	d, _ := ParseDate("2024-02-28")
	if got := d.Next().String(); got != "2024-02-29" {
		t.Fatalf("leap-day next: %s", got)
	}
	d, _ = ParseDate("2024-01-01")
	if got := d.Prev().String(); got != "2023-12-31" {
		t.Fatalf("year boundary prev: %s", got)
	}
}

func TestDate_DaysUntil(t *testing.T) {
	a, _ := ParseDate("2024-06-01")
	b, _ := ParseDate("2024-06-03")
	if got := a.DaysUntil(b); got != 2 {
		t.Fatalf("forward: %d", got)
	}
	if got := b.DaysUntil(a); got != -2 {
		t.Fatalf("backward: %d", got)
	}
}

func TestDate_At(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	d, _ := ParseDate("2024-06-01")
	got := d.At(17, loc)
	if got.Hour() != 17 || got.Location() != loc {
		t.Fatalf("unexpected instant: %v", got)
	}
}

func TestContentKey_String(t *testing.T) {
	d, _ := ParseDate("2024-06-02")
	k := ContentKey{Scope: "u1", ContentType: ContentFoodPlan, Date: d}
	if got := k.String(); got != "u1/food-plan/2024-06-02" {
		t.Fatalf("key encoding: %s", got)
	}
}

func TestParseContentType(t *testing.T) {
	if _, err := ParseContentType("food-plan"); err != nil {
		t.Fatalf("known type rejected: %v", err)
	}
	if _, err := ParseContentType("horoscope"); err == nil {
		t.Fatal("unknown type accepted")
	}
}
