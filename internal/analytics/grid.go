package analytics

import (
	"time"

	"github.com/sadopc/pomotrack/internal/timecalc"
)

// Level is the color band of a grid cell, 0 (nothing) to 4 (busiest).
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelMax
)

type Cell struct {
	Date    time.Time
	Seconds int64
	Level   Level
	Future  bool // padding after today
}

// MonthLabel marks the first week column whose Sunday falls in Month.
type MonthLabel struct {
	Column int
	Month  time.Month
}

// Grid is a year of daily totals laid out as week columns, Sunday first.
type Grid struct {
	Start  time.Time
	Weeks  [][7]Cell
	Months []MonthLabel
	Max    int64
}

// LevelFor maps a day's seconds to a color band by its share of the busiest
// day.
func LevelFor(seconds, maxSeconds int64) Level {
	if seconds <= 0 {
		return LevelNone
	}
	ratio := float64(seconds) / float64(max(maxSeconds, 1))
	switch {
	case ratio <= 0.25:
		return LevelLow
	case ratio <= 0.5:
		return LevelMedium
	case ratio <= 0.75:
		return LevelHigh
	default:
		return LevelMax
	}
}

// gridStart is the Sunday on or before the day 365 days ago.
func gridStart(now time.Time) time.Time {
	return timecalc.WeekStart(timecalc.StartOfDay(now).AddDate(0, 0, -365))
}

// buildGrid lays out days (keyed by DayKey) from gridStart through the end
// of the current week. That is 53 columns, or 54 when the day a year ago was
// a Saturday.
func buildGrid(days map[string]int64, now time.Time) Grid {
	today := timecalc.StartOfDay(now)
	start := gridStart(now)

	var maxDay int64
	for _, v := range days {
		maxDay = max(maxDay, v)
	}

	g := Grid{Start: start, Max: maxDay}
	prevMonth := time.Month(0)
	for col := 0; ; col++ {
		weekStart := start.AddDate(0, 0, 7*col)
		if weekStart.After(today) {
			break
		}
		var week [7]Cell
		for i := range week {
			d := weekStart.AddDate(0, 0, i)
			c := Cell{Date: d}
			if d.After(today) {
				c.Future = true
			} else {
				c.Seconds = days[timecalc.DayKey(d)]
				c.Level = LevelFor(c.Seconds, maxDay)
			}
			week[i] = c
		}
		g.Weeks = append(g.Weeks, week)

		if m := weekStart.Month(); m != prevMonth {
			g.Months = append(g.Months, MonthLabel{Column: col, Month: m})
			prevMonth = m
		}
	}
	return g
}
