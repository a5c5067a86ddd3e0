package analytics

import (
	"sort"
	"time"

	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timecalc"
)

const (
	noTagName  = "No tag"
	noTagColor = "#666666"
)

type buckets map[string]*Bucket

func (b buckets) get(key string) *Bucket {
	if v, ok := b[key]; ok {
		return v
	}
	v := &Bucket{Key: key}
	b[key] = v
	return v
}

func (b buckets) sorted() []Bucket {
	out := make([]Bucket, 0, len(b))
	for _, v := range b {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Aggregate computes every derived view for window w ending at now. Calendar
// buckets use now's location. The result depends only on the arguments.
//
// Sessions are read from each task's Sessions; a task whose TagID does not
// match any tag is counted under the no-tag bucket.
func Aggregate(tasks []store.Task, tags []store.Tag, w Window, now time.Time) Report {
	loc := now.Location()
	start := w.Start(now)
	r := Report{Window: w, Start: start, Now: now}

	tagStats := make(map[string]*TagStats, len(tags)+1)
	order := make([]*TagStats, 0, len(tags)+1)
	for _, t := range tags {
		ts := &TagStats{TagID: t.ID, Name: t.Name, Color: t.Color}
		tagStats[t.ID] = ts
		order = append(order, ts)
	}
	noTag := &TagStats{TagID: NoTagID, Name: noTagName, Color: noTagColor}
	order = append(order, noTag)

	statsFor := func(task store.Task) *TagStats {
		if task.TagID != nil {
			if ts, ok := tagStats[*task.TagID]; ok {
				return ts
			}
		}
		return noTag
	}

	daily, weekly, monthly := buckets{}, buckets{}, buckets{}
	firstGridDay := gridStart(now)
	gridDays := make(map[string]int64)

	for _, task := range tasks {
		ts := statsFor(task)
		ts.Tasks++
		if task.Completed {
			ts.Completed++
		}

		for _, sess := range task.Sessions {
			st := sess.StartTime.In(loc)
			if st.After(now) {
				continue
			}
			if !st.Before(firstGridDay) {
				gridDays[timecalc.DayKey(st)] += sess.Duration
			}
			if st.Before(start) {
				continue
			}

			d := sess.Duration
			ts.TotalTime += d
			ts.Sessions++
			r.TotalTime += d
			r.SessionCount++

			r.Sessions = append(r.Sessions, SessionView{
				SessionID: sess.ID,
				TaskID:    task.ID,
				TaskText:  task.Text,
				TagName:   ts.Name,
				TagColor:  ts.Color,
				Start:     st,
				End:       sess.EndTime.In(loc),
				Duration:  d,
			})

			r.Hourly[st.Hour()] += d
			r.Weekday[st.Weekday()] += d

			for _, b := range []*Bucket{
				daily.get(timecalc.DayKey(st)),
				weekly.get(timecalc.WeekKey(st)),
				monthly.get(timecalc.MonthKey(st)),
			} {
				b.TotalTime += d
				b.Sessions++
			}
		}
	}

	// Task counts go to the bucket of the task's first session, or today for
	// tasks never worked on.
	for _, task := range tasks {
		anchor := now
		if first, ok := firstSessionStart(task.Sessions); ok {
			anchor = first.In(loc)
		}
		if anchor.Before(start) || anchor.After(now) {
			continue
		}
		for _, b := range []*Bucket{
			daily.get(timecalc.DayKey(anchor)),
			weekly.get(timecalc.WeekKey(anchor)),
			monthly.get(timecalc.MonthKey(anchor)),
		} {
			b.Tasks++
			if task.Completed {
				b.Completed++
			}
		}
	}

	r.CurrentStreak = currentStreak(daily, start, now)
	r.Daily = daily.sorted()
	r.Weekly = weekly.sorted()
	r.Monthly = monthly.sorted()
	r.LongestStreak = longestStreak(r.Daily, loc)

	for _, ts := range order {
		if ts.Tasks > 0 {
			r.Tags = append(r.Tags, *ts)
		}
	}
	sort.SliceStable(r.Tags, func(i, j int) bool { return r.Tags[i].TotalTime > r.Tags[j].TotalTime })

	sort.SliceStable(r.Sessions, func(i, j int) bool { return r.Sessions[i].Start.Before(r.Sessions[j].Start) })

	r.Grid = buildGrid(gridDays, now)
	return r
}

func firstSessionStart(sessions []store.Session) (time.Time, bool) {
	if len(sessions) == 0 {
		return time.Time{}, false
	}
	first := sessions[0].StartTime
	for _, s := range sessions[1:] {
		if s.StartTime.Before(first) {
			first = s.StartTime
		}
	}
	return first, true
}

// currentStreak counts consecutive days with tracked time, walking back from
// today and never past the window start.
func currentStreak(daily buckets, start, now time.Time) int {
	first := timecalc.StartOfDay(start)
	n := 0
	for d := timecalc.StartOfDay(now); !d.Before(first); d = d.AddDate(0, 0, -1) {
		b, ok := daily[timecalc.DayKey(d)]
		if !ok || b.TotalTime == 0 {
			break
		}
		n++
	}
	return n
}

// longestStreak finds the longest run of adjacent calendar days with tracked
// time among the sorted daily buckets.
func longestStreak(daily []Bucket, loc *time.Location) int {
	best, run := 0, 0
	var prev time.Time
	for _, b := range daily {
		if b.TotalTime == 0 {
			run = 0
			continue
		}
		d, err := timecalc.ParseDayKey(b.Key, loc)
		if err != nil {
			continue
		}
		if run > 0 && timecalc.DaysBetween(prev, d) == 1 {
			run++
		} else {
			run = 1
		}
		prev = d
		best = max(best, run)
	}
	return best
}
