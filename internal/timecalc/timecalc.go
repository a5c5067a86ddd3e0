// Package timecalc holds the calendar bucketing helpers shared by the
// analytics and presentation layers. Every helper works in the location of
// the time it is given.
package timecalc

import (
	"fmt"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekStart returns 00:00 of the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	d := StartOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// DayKey formats t as "2006-01-02".
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// WeekKey is the DayKey of the week's Sunday.
func WeekKey(t time.Time) string {
	return DayKey(WeekStart(t))
}

// MonthKey formats t as "2006-01"; keys sort chronologically as strings.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// ParseDayKey parses a DayKey back into midnight in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dayLayout, key, loc)
}

// DaysBetween counts calendar days from a to b (negative when b is earlier).
// It is DST-safe because it compares calendar dates, not elapsed hours.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatDuration formats seconds as "1h 40m", "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatClock formats seconds as HH:MM:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatCountdown formats seconds as MM:SS, letting minutes exceed 59.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
