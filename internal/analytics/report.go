// Package analytics derives tag statistics, calendar rollups, streaks and a
// contribution grid from a snapshot of tasks and their sessions.
package analytics

import (
	"fmt"
	"time"
)

type Window int

const (
	Day Window = iota
	Week
	Month
	Year
)

var windowNames = map[Window]string{
	Day:   "day",
	Week:  "week",
	Month: "month",
	Year:  "year",
}

// Windows lists every window in display order.
var Windows = []Window{Day, Week, Month, Year}

func (w Window) String() string {
	if n, ok := windowNames[w]; ok {
		return n
	}
	return fmt.Sprintf("window(%d)", int(w))
}

func ParseWindow(s string) (Window, error) {
	for w, n := range windowNames {
		if n == s {
			return w, nil
		}
	}
	return Week, fmt.Errorf("unknown window %q (want day, week, month or year)", s)
}

// Start returns the beginning of the window ending at now: midnight today
// for Day, otherwise now minus 7, 30 or 365 days.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case Day:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case Week:
		return now.AddDate(0, 0, -7)
	case Month:
		return now.AddDate(0, 0, -30)
	default:
		return now.AddDate(0, 0, -365)
	}
}

// NoTagID identifies the synthetic bucket of untagged tasks.
const NoTagID = ""

type TagStats struct {
	TagID     string
	Name      string
	Color     string
	TotalTime int64
	Tasks     int
	Completed int
	Sessions  int
}

// SessionView is one in-window session flattened with its task and tag.
type SessionView struct {
	SessionID string
	TaskID    string
	TaskText  string
	TagName   string
	TagColor  string
	Start     time.Time
	End       time.Time
	Duration  int64
}

// Bucket is a calendar rollup keyed by day ("2006-01-02"), week (the
// Sunday's day key) or month ("2006-01").
type Bucket struct {
	Key       string
	TotalTime int64
	Sessions  int
	Tasks     int
	Completed int
}

type Report struct {
	Window Window
	Start  time.Time
	Now    time.Time

	TotalTime    int64
	SessionCount int

	Tags     []TagStats
	Sessions []SessionView
	Hourly   [24]int64
	Weekday  [7]int64 // indexed by time.Weekday

	Daily   []Bucket
	Weekly  []Bucket
	Monthly []Bucket

	CurrentStreak int
	LongestStreak int

	Grid Grid
}

// Summary is the headline numbers of a report.
type Summary struct {
	TotalTime     int64
	Sessions      int
	AverageLength int64
	BestHour      int // -1 when there is no data
	BestWeekday   time.Weekday
	ActiveDays    int
}

func (r Report) Summary() Summary {
	s := Summary{TotalTime: r.TotalTime, Sessions: r.SessionCount, BestHour: -1}
	if r.SessionCount > 0 {
		s.AverageLength = r.TotalTime / int64(r.SessionCount)
	}
	var best int64
	for h, v := range r.Hourly {
		if v > best {
			best, s.BestHour = v, h
		}
	}
	best = 0
	for d, v := range r.Weekday {
		if v > best {
			best, s.BestWeekday = v, time.Weekday(d)
		}
	}
	for _, b := range r.Daily {
		if b.TotalTime > 0 {
			s.ActiveDays++
		}
	}
	return s
}

// MaxDaily returns the largest daily total, at least 1 so it can divide.
func (r Report) MaxDaily() int64 {
	var m int64 = 1
	for _, b := range r.Daily {
		m = max(m, b.TotalTime)
	}
	return m
}

// MaxHourly returns the largest hour-of-day total, at least 1.
func (r Report) MaxHourly() int64 {
	var m int64 = 1
	for _, v := range r.Hourly {
		m = max(m, v)
	}
	return m
}
