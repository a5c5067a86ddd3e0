package timecalc

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2026, 3, 4, 17, 45, 12, 99, time.UTC)
	got := StartOfDay(in)
	want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("StartOfDay = %v, want %v", got, want)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), "2026-03-01"}, // Sunday
		{time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), "2026-03-01"}, // Wednesday
		{time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC), "2026-03-01"}, // Saturday
		{time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), "2025-12-28"},  // crosses year
	}
	for _, tc := range tests {
		got := WeekKey(tc.in)
		if got != tc.want {
			t.Errorf("WeekKey(%v) = %s, want %s", tc.in, got, tc.want)
		}
		if WeekStart(tc.in).Weekday() != time.Sunday {
			t.Errorf("WeekStart(%v) is not a Sunday", tc.in)
		}
	}
}

func TestKeys(t *testing.T) {
	ts := time.Date(2026, 11, 9, 8, 0, 0, 0, time.UTC)
	if got := DayKey(ts); got != "2026-11-09" {
		t.Errorf("DayKey = %s", got)
	}
	if got := MonthKey(ts); got != "2026-11" {
		t.Errorf("MonthKey = %s", got)
	}
	back, err := ParseDayKey("2026-11-09", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if !SameDay(back, ts) {
		t.Errorf("ParseDayKey round trip = %v", back)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("DaysBetween = %d, want 2", got)
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Errorf("DaysBetween reversed = %d, want -2", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0s"},
		{30, "30s"},
		{60, "1m"},
		{2700, "45m"},
		{6000, "1h 40m"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.secs); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(3661); got != "01:01:01" {
		t.Errorf("FormatClock = %s", got)
	}
	if got := FormatClock(-5); got != "00:00:00" {
		t.Errorf("FormatClock negative = %s", got)
	}
	if got := FormatCountdown(1500); got != "25:00" {
		t.Errorf("FormatCountdown = %s", got)
	}
	if got := FormatCountdown(3725); got != "62:05" {
		t.Errorf("FormatCountdown long = %s", got)
	}
}
