package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/sadopc/pomotrack/internal/store"
)

// 2026-05-14 is a Thursday.
var testNow = time.Date(2026, 5, 14, 18, 0, 0, 0, time.UTC)

func at(daysAgo, hour int) time.Time {
	d := testNow.AddDate(0, 0, -daysAgo)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func sess(id string, start time.Time, secs int64) store.Session {
	return store.Session{
		ID:        id,
		StartTime: start,
		EndTime:   start.Add(time.Duration(secs) * time.Second),
		Duration:  secs,
	}
}

func task(id, text string, tagID *string, completed bool, sessions ...store.Session) store.Task {
	var total int64
	for i := range sessions {
		sessions[i].TaskID = id
		total += sessions[i].Duration
	}
	return store.Task{ID: id, Text: text, TagID: tagID, Completed: completed, TotalTime: total, Sessions: sessions}
}

func ptr(s string) *string { return &s }

var (
	tagWork  = store.Tag{ID: "t-work", Name: "Work", Color: "#6C63FF"}
	tagStudy = store.Tag{ID: "t-study", Name: "Study", Color: "#2EC4B6"}
	tagIdle  = store.Tag{ID: "t-idle", Name: "Idle", Color: "#999999"}
)

func findTag(r Report, id string) (TagStats, bool) {
	for _, ts := range r.Tags {
		if ts.TagID == id {
			return ts, true
		}
	}
	return TagStats{}, false
}

func nonZeroDays(r Report) int {
	n := 0
	for _, b := range r.Daily {
		if b.TotalTime > 0 {
			n++
		}
	}
	return n
}

// ============================================================
// Windows
// ============================================================

func TestWindowStart(t *testing.T) {
	if got := Day.Start(testNow); !got.Equal(time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day.Start = %v", got)
	}
	if got := Week.Start(testNow); !got.Equal(testNow.AddDate(0, 0, -7)) {
		t.Errorf("Week.Start = %v", got)
	}
	if got := Month.Start(testNow); !got.Equal(testNow.AddDate(0, 0, -30)) {
		t.Errorf("Month.Start = %v", got)
	}
	if got := Year.Start(testNow); !got.Equal(testNow.AddDate(0, 0, -365)) {
		t.Errorf("Year.Start = %v", got)
	}
}

func TestParseWindow(t *testing.T) {
	for _, w := range Windows {
		got, err := ParseWindow(w.String())
		if err != nil || got != w {
			t.Fatalf("ParseWindow(%q) = %v, %v", w.String(), got, err)
		}
	}
	if _, err := ParseWindow("decade"); err == nil {
		t.Fatal("expected error")
	}
}

// ============================================================
// Tag stats
// ============================================================

func TestThreeConsecutiveDaysWeekView(t *testing.T) {
	tasks := []store.Task{
		task("a", "Write report", ptr(tagWork.ID), false,
			sess("s1", at(2, 10), 600),
			sess("s2", at(1, 10), 600),
			sess("s3", at(0, 10), 600),
		),
	}
	r := Aggregate(tasks, []store.Tag{tagWork}, Week, testNow)

	work, ok := findTag(r, tagWork.ID)
	if !ok {
		t.Fatal("Work tag missing from stats")
	}
	if work.TotalTime != 1800 || work.Sessions != 3 || work.Tasks != 1 {
		t.Fatalf("Work stats = %+v", work)
	}
	if n := nonZeroDays(r); n != 3 {
		t.Fatalf("expected 3 non-zero days, got %d", n)
	}
	if r.CurrentStreak != 3 || r.LongestStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", r.CurrentStreak, r.LongestStreak)
	}
}

func TestTagTotalsMatchSessionTotal(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", ptr(tagWork.ID), true, sess("s1", at(1, 9), 1200), sess("s2", at(3, 14), 300)),
		task("b", "B", ptr(tagStudy.ID), false, sess("s3", at(2, 20), 900)),
		task("c", "C", nil, false, sess("s4", at(0, 8), 450)),
		task("d", "D", ptr("deleted-tag"), false, sess("s5", at(0, 11), 50)),
		task("e", "E", ptr(tagWork.ID), false, sess("old", at(40, 9), 9999)),
	}
	r := Aggregate(tasks, []store.Tag{tagWork, tagStudy}, Week, testNow)

	var sum int64
	for _, ts := range r.Tags {
		sum += ts.TotalTime
	}
	if sum != r.TotalTime {
		t.Fatalf("tag totals %d != session total %d", sum, r.TotalTime)
	}
	if r.TotalTime != 1200+300+900+450+50 {
		t.Fatalf("TotalTime = %d", r.TotalTime)
	}
	if r.SessionCount != 5 {
		t.Fatalf("SessionCount = %d, want 5", r.SessionCount)
	}

	none, ok := findTag(r, NoTagID)
	if !ok {
		t.Fatal("no-tag bucket missing")
	}
	if none.TotalTime != 500 || none.Tasks != 2 {
		t.Fatalf("no-tag stats = %+v", none)
	}
	work, _ := findTag(r, tagWork.ID)
	if work.Tasks != 2 || work.Completed != 1 {
		t.Fatalf("work task counts = %+v", work)
	}
}

func TestTagStatsSortedAndZeroTaskTagsDropped(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", ptr(tagWork.ID), false, sess("s1", at(1, 9), 100)),
		task("b", "B", ptr(tagStudy.ID), false, sess("s2", at(1, 10), 500)),
	}
	r := Aggregate(tasks, []store.Tag{tagWork, tagStudy, tagIdle}, Week, testNow)

	if len(r.Tags) != 2 {
		t.Fatalf("expected 2 tag stats, got %+v", r.Tags)
	}
	if r.Tags[0].TagID != tagStudy.ID || r.Tags[1].TagID != tagWork.ID {
		t.Fatalf("tags not sorted by time: %+v", r.Tags)
	}
}

// ============================================================
// Buckets and histograms
// ============================================================

func TestDayWindowExcludesYesterday(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, false, sess("s1", at(1, 23), 600), sess("s2", at(0, 1), 300)),
	}
	r := Aggregate(tasks, nil, Day, testNow)
	if r.TotalTime != 300 || len(r.Sessions) != 1 {
		t.Fatalf("day window = %d seconds, %d sessions", r.TotalTime, len(r.Sessions))
	}
}

func TestHourlyAndWeekdayHistograms(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, false,
			sess("s1", at(0, 10), 600),
			sess("s2", at(7, 10), 300), // the previous Thursday
			sess("s3", at(1, 22), 120),
		),
	}
	r := Aggregate(tasks, nil, Month, testNow)
	if r.Hourly[10] != 900 || r.Hourly[22] != 120 {
		t.Fatalf("hourly = %v", r.Hourly)
	}
	if r.Weekday[time.Thursday] != 900 || r.Weekday[time.Wednesday] != 120 {
		t.Fatalf("weekday = %v", r.Weekday)
	}
	if r.MaxHourly() != 900 {
		t.Fatalf("MaxHourly = %d", r.MaxHourly())
	}
}

func TestCalendarBuckets(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, false,
			sess("s1", time.Date(2026, 4, 30, 9, 0, 0, 0, time.UTC), 100), // Thu, week of Apr 26
			sess("s2", time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC), 200),  // Sun, week of May 3
			sess("s3", time.Date(2026, 5, 9, 9, 0, 0, 0, time.UTC), 300),  // Sat, week of May 3
		),
	}
	r := Aggregate(tasks, nil, Month, testNow)

	wantWeeks := []Bucket{
		{Key: "2026-04-26", TotalTime: 100, Sessions: 1, Tasks: 1},
		{Key: "2026-05-03", TotalTime: 500, Sessions: 2},
	}
	if !reflect.DeepEqual(r.Weekly, wantWeeks) {
		t.Fatalf("weekly = %+v", r.Weekly)
	}
	if len(r.Monthly) != 2 || r.Monthly[0].Key != "2026-04" || r.Monthly[1].Key != "2026-05" {
		t.Fatalf("monthly = %+v", r.Monthly)
	}
	if r.Monthly[1].TotalTime != 500 {
		t.Fatalf("May total = %d", r.Monthly[1].TotalTime)
	}
	for i := 1; i < len(r.Daily); i++ {
		if r.Daily[i-1].Key >= r.Daily[i].Key {
			t.Fatalf("daily buckets not ascending: %+v", r.Daily)
		}
	}
}

func TestTaskCountsUseFirstSession(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, true, sess("s2", at(0, 9), 60), sess("s1", at(2, 9), 60)),
		task("b", "B", nil, false),
	}
	r := Aggregate(tasks, nil, Week, testNow)

	byKey := map[string]Bucket{}
	for _, b := range r.Daily {
		byKey[b.Key] = b
	}
	first := byKey[at(2, 0).Format("2006-01-02")]
	if first.Tasks != 1 || first.Completed != 1 {
		t.Fatalf("first-session day bucket = %+v", first)
	}
	today := byKey[testNow.Format("2006-01-02")]
	if today.Tasks != 1 || today.Completed != 0 {
		t.Fatalf("today bucket = %+v (task without sessions should count today)", today)
	}
}

func TestSessionsSortedAscending(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", ptr(tagWork.ID), false, sess("late", at(0, 15), 60)),
		task("b", "B", nil, false, sess("early", at(3, 8), 60)),
	}
	r := Aggregate(tasks, []store.Tag{tagWork}, Week, testNow)
	if len(r.Sessions) != 2 || r.Sessions[0].SessionID != "early" {
		t.Fatalf("sessions = %+v", r.Sessions)
	}
	if r.Sessions[1].TagName != "Work" || r.Sessions[1].TaskText != "A" {
		t.Fatalf("session view = %+v", r.Sessions[1])
	}
}

// ============================================================
// Streaks
// ============================================================

func TestCurrentStreakStopsAtGap(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, false, sess("s1", at(0, 9), 60), sess("s2", at(2, 9), 60)),
	}
	r := Aggregate(tasks, nil, Week, testNow)
	if r.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", r.CurrentStreak)
	}
}

func TestCurrentStreakZeroWithoutToday(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, false, sess("s1", at(1, 9), 60), sess("s2", at(2, 9), 60)),
	}
	r := Aggregate(tasks, nil, Week, testNow)
	if r.CurrentStreak != 0 || r.LongestStreak != 2 {
		t.Fatalf("streaks = %d/%d, want 0/2", r.CurrentStreak, r.LongestStreak)
	}
}

func TestLongestStreakIndependentOfCurrent(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, false,
			sess("s1", at(5, 9), 60),
			sess("s2", at(4, 9), 60),
			sess("s3", at(3, 9), 60),
			sess("s4", at(0, 9), 60),
		),
	}
	r := Aggregate(tasks, nil, Month, testNow)
	if r.CurrentStreak != 1 || r.LongestStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 1/3", r.CurrentStreak, r.LongestStreak)
	}
}

func TestCurrentStreakBoundedByWindow(t *testing.T) {
	var sessions []store.Session
	for i := 0; i < 20; i++ {
		sessions = append(sessions, sess("s", at(i, 9), 60))
	}
	r := Aggregate([]store.Task{task("a", "A", nil, false, sessions...)}, nil, Week, testNow)
	// The week window starts 7 days ago at 18:00, so that morning's session
	// is outside it and the walk stops after 7 days.
	if r.CurrentStreak != 7 {
		t.Fatalf("CurrentStreak = %d, want 7", r.CurrentStreak)
	}
}

// ============================================================
// Properties
// ============================================================

func TestAggregateIdempotent(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", ptr(tagWork.ID), true, sess("s1", at(1, 9), 1200), sess("s2", at(100, 14), 300)),
		task("b", "B", nil, false, sess("s3", at(0, 20), 900)),
	}
	tags := []store.Tag{tagWork, tagStudy}
	for _, w := range Windows {
		r1 := Aggregate(tasks, tags, w, testNow)
		r2 := Aggregate(tasks, tags, w, testNow)
		if !reflect.DeepEqual(r1, r2) {
			t.Fatalf("%s: aggregate is not deterministic", w)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	r := Aggregate(nil, nil, Year, testNow)
	if r.TotalTime != 0 || r.SessionCount != 0 || len(r.Tags) != 0 || len(r.Daily) != 0 {
		t.Fatalf("empty report = %+v", r)
	}
	if r.CurrentStreak != 0 || r.LongestStreak != 0 {
		t.Fatal("empty report should have no streaks")
	}
	if r.MaxDaily() != 1 || r.MaxHourly() != 1 {
		t.Fatal("max guards should default to 1")
	}
	if s := r.Summary(); s.BestHour != -1 || s.AverageLength != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
}

func TestSummary(t *testing.T) {
	tasks := []store.Task{
		task("a", "A", nil, false, sess("s1", at(0, 9), 600), sess("s2", at(1, 9), 1200), sess("s3", at(1, 16), 300)),
	}
	s := Aggregate(tasks, nil, Week, testNow).Summary()
	if s.TotalTime != 2100 || s.Sessions != 3 || s.AverageLength != 700 {
		t.Fatalf("summary = %+v", s)
	}
	if s.BestHour != 9 || s.ActiveDays != 2 || s.BestWeekday != time.Wednesday {
		t.Fatalf("summary = %+v", s)
	}
}
