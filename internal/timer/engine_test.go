package timer

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestEngine(t *testing.T, s Settings) (*Engine, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	e := New(s).WithClock(clk.now)
	e.SelectTask("task-1")
	return e, clk
}

// tickN ticks n times, advancing the clock by a second each time, and
// collects every event.
func tickN(e *Engine, clk *fakeClock, n int) []Event {
	var evs []Event
	for i := 0; i < n; i++ {
		clk.t = clk.t.Add(time.Second)
		evs = append(evs, e.Tick()...)
	}
	return evs
}

func records(evs []Event) []Record {
	var out []Record
	for _, ev := range evs {
		if ev.Kind == SessionRecorded {
			out = append(out, *ev.Record)
		}
	}
	return out
}

func hasKind(evs []Event, k EventKind) bool {
	for _, ev := range evs {
		if ev.Kind == k {
			return true
		}
	}
	return false
}

// ============================================================
// Construction
// ============================================================

func TestNewEngineDefaults(t *testing.T) {
	e := New(DefaultSettings())
	st := e.State()
	if st.Mode != Pomodoro || st.Phase != Work || st.Running {
		t.Fatalf("unexpected initial state: %+v", st)
	}
	if st.TimeLeft != 1500 {
		t.Fatalf("TimeLeft = %d, want 1500", st.TimeLeft)
	}
	if st.Iteration != 1 || st.Iterations != 1 {
		t.Fatalf("iterations = %d/%d, want 1/1", st.Iteration, st.Iterations)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("nope"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

// ============================================================
// Start / Pause
// ============================================================

func TestStartIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, DefaultSettings())
	if evs := e.Start(); len(evs) != 1 || evs[0].Kind != Started {
		t.Fatalf("first start events = %+v", evs)
	}
	if evs := e.Start(); evs != nil {
		t.Fatalf("second start should be a no-op, got %+v", evs)
	}
	if !e.Running() {
		t.Fatal("engine should be running")
	}
}

func TestPauseImmediatelyDropsEmptySession(t *testing.T) {
	e, _ := newTestEngine(t, DefaultSettings())
	e.Start()
	evs := e.Pause()
	if len(records(evs)) != 0 {
		t.Fatalf("expected no session record, got %+v", evs)
	}
	if e.Running() {
		t.Fatal("engine should be paused")
	}
}

func TestPauseSavesWorkSession(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	start := clk.t
	e.Start()
	tickN(e, clk, 90)

	recs := records(e.Pause())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.TaskID != "task-1" || r.Duration != 90 {
		t.Fatalf("unexpected record: %+v", r)
	}
	if !r.Start.Equal(start) || !r.End.Equal(start.Add(90*time.Second)) {
		t.Fatalf("record window = %v..%v", r.Start, r.End)
	}
	if e.State().SessionElapsed != 0 {
		t.Fatal("accumulator should be cleared after pause")
	}
	if e.State().TimeLeft != 1410 {
		t.Fatalf("TimeLeft = %d, want 1410", e.State().TimeLeft)
	}
}

func TestResumeStartsNewSession(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.Start()
	tickN(e, clk, 10)
	e.Pause()

	clk.t = clk.t.Add(time.Hour)
	resumeAt := clk.t
	e.Start()
	tickN(e, clk, 5)
	recs := records(e.Pause())
	if len(recs) != 1 || recs[0].Duration != 5 || !recs[0].Start.Equal(resumeAt) {
		t.Fatalf("unexpected second record: %+v", recs)
	}
}

func TestNoTaskSelectedDropsSession(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.SelectTask("")
	e.Start()
	tickN(e, clk, 30)
	if recs := records(e.Pause()); len(recs) != 0 {
		t.Fatalf("unallocated session should be dropped, got %+v", recs)
	}
}

func TestPauseWhenStoppedIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, DefaultSettings())
	if evs := e.Pause(); evs != nil {
		t.Fatalf("pause on idle engine returned %+v", evs)
	}
}

func TestToggle(t *testing.T) {
	e, _ := newTestEngine(t, DefaultSettings())
	e.Toggle()
	if !e.Running() {
		t.Fatal("toggle should start")
	}
	e.Toggle()
	if e.Running() {
		t.Fatal("toggle should pause")
	}
}

// ============================================================
// Phase sequencing
// ============================================================

func TestPomodoroSingleIteration(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.Start()

	evs := tickN(e, clk, 1500)
	st := e.State()
	if st.Phase != Break || st.TimeLeft != 300 || !st.Running {
		t.Fatalf("after work: %+v", st)
	}
	recs := records(evs)
	if len(recs) != 1 || recs[0].Duration != 1500 {
		t.Fatalf("work phase should emit one 1500s record, got %+v", recs)
	}

	evs = tickN(e, clk, 300)
	st = e.State()
	if st.Phase != Work || st.Running || st.TimeLeft != 1500 || st.Iteration != 1 {
		t.Fatalf("after break: %+v", st)
	}
	if len(records(evs)) != 0 {
		t.Fatal("break must not emit a session")
	}
	if !hasKind(evs, CycleFinished) {
		t.Fatal("expected CycleFinished after last break")
	}
}

func TestPomodoroMultipleIterations(t *testing.T) {
	s := DefaultSettings()
	s.Iterations = 3
	e, clk := newTestEngine(t, s)
	e.Start()

	tickN(e, clk, 1500+300)
	st := e.State()
	if st.Phase != Work || !st.Running || st.Iteration != 2 {
		t.Fatalf("after first cycle: %+v", st)
	}

	evs := tickN(e, clk, 2*(1500+300))
	st = e.State()
	if st.Running || st.Iteration != 1 || st.Phase != Work {
		t.Fatalf("after all cycles: %+v", st)
	}
	if n := len(records(evs)); n != 2 {
		t.Fatalf("expected 2 records in the last two cycles, got %d", n)
	}
}

func TestZeroBreakSkipsBreakPhase(t *testing.T) {
	s := DefaultSettings()
	s.Configs[Custom] = Config{WorkSeconds: 60, BreakSeconds: 0}
	s.Iterations = 2
	e, clk := newTestEngine(t, s)
	e.ChangeMode(Custom)
	e.Start()

	tickN(e, clk, 60)
	st := e.State()
	if st.Phase != Work || !st.Running || st.Iteration != 2 || st.TimeLeft != 60 {
		t.Fatalf("zero break should chain to next work phase: %+v", st)
	}

	evs := tickN(e, clk, 60)
	st = e.State()
	if st.Running || st.Iteration != 1 {
		t.Fatalf("last iteration should go idle: %+v", st)
	}
	if len(records(evs)) != 1 || !hasKind(evs, CycleFinished) {
		t.Fatalf("unexpected events: %+v", evs)
	}
}

func TestTransitionTableCoversEveryPhase(t *testing.T) {
	e := New(DefaultSettings())
	for _, p := range []Phase{Work, Break} {
		e.phase = p
		_ = e.lookup(p) // must not panic
	}
}

func TestSkipBreak(t *testing.T) {
	s := DefaultSettings()
	s.Iterations = 2
	e, clk := newTestEngine(t, s)
	e.Start()
	tickN(e, clk, 1500)

	evs := e.Skip()
	st := e.State()
	if st.Phase != Work || st.Iteration != 2 || !st.Running {
		t.Fatalf("skip break: %+v", st)
	}
	if len(records(evs)) != 0 {
		t.Fatal("skipping a break must not record a session")
	}
}

func TestSkipWorkSavesPartialSession(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.Start()
	tickN(e, clk, 100)
	recs := records(e.Skip())
	if len(recs) != 1 || recs[0].Duration != 100 {
		t.Fatalf("skip work records = %+v", recs)
	}
	if e.State().Phase != Break {
		t.Fatal("skip work should move to break")
	}
}

// ============================================================
// Flowtime
// ============================================================

func TestFlowtimeCountsUp(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.ChangeMode(Flowtime)
	if e.State().TimeLeft != 0 {
		t.Fatal("flowtime has no work duration")
	}
	e.Start()
	tickN(e, clk, 120)
	st := e.State()
	if st.ElapsedTime != 120 || e.Display() != 120 || st.Phase != Work {
		t.Fatalf("flowtime state: %+v", st)
	}
}

func TestFlowtimePauseDoesNotSave(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.ChangeMode(Flowtime)
	e.Start()
	tickN(e, clk, 40)
	if recs := records(e.Pause()); len(recs) != 0 {
		t.Fatalf("flowtime pause saved %+v", recs)
	}
	e.Start()
	tickN(e, clk, 20)

	evs := e.EndFlow()
	recs := records(evs)
	if len(recs) != 1 || recs[0].Duration != 60 {
		t.Fatalf("end flow records = %+v", recs)
	}
	st := e.State()
	if st.Phase != Break || st.TimeLeft != 300 || !st.Running {
		t.Fatalf("after end flow: %+v", st)
	}

	tickN(e, clk, 300)
	st = e.State()
	if st.Phase != Work || st.Running || st.ElapsedTime != 0 {
		t.Fatalf("after flow break: %+v", st)
	}
}

func TestEndFlowOutsideFlowtime(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.Start()
	tickN(e, clk, 10)
	if evs := e.EndFlow(); evs != nil {
		t.Fatalf("EndFlow in pomodoro mode returned %+v", evs)
	}
}

// ============================================================
// Reset / mode / settings
// ============================================================

func TestResetDiscardsAccumulator(t *testing.T) {
	s := DefaultSettings()
	s.Iterations = 2
	e, clk := newTestEngine(t, s)
	e.Start()
	tickN(e, clk, 1500+300+10)

	e.Reset()
	st := e.State()
	if st.Running || st.Phase != Work || st.Iteration != 1 || st.TimeLeft != 1500 || st.SessionElapsed != 0 {
		t.Fatalf("after reset: %+v", st)
	}
}

func TestChangeMode(t *testing.T) {
	s := DefaultSettings()
	s.Configs[Custom] = Config{WorkSeconds: 3000, BreakSeconds: 600}
	e, clk := newTestEngine(t, s)
	e.Start()
	tickN(e, clk, 5)

	e.ChangeMode(Custom)
	st := e.State()
	if st.Mode != Custom || st.Running || st.TimeLeft != 3000 {
		t.Fatalf("after change mode: %+v", st)
	}
}

func TestSetSettingsUpdatesIdleTimer(t *testing.T) {
	e, _ := newTestEngine(t, DefaultSettings())
	s := DefaultSettings()
	s.Configs[Pomodoro] = Config{WorkSeconds: 600, BreakSeconds: 120}
	e.SetSettings(s)
	if e.State().TimeLeft != 600 {
		t.Fatalf("idle timer should pick up new work duration, got %d", e.State().TimeLeft)
	}
}

func TestSetSettingsKeepsRunningPhase(t *testing.T) {
	e, clk := newTestEngine(t, DefaultSettings())
	e.Start()
	tickN(e, clk, 10)
	s := DefaultSettings()
	s.Configs[Pomodoro] = Config{WorkSeconds: 600, BreakSeconds: 120}
	e.SetSettings(s)
	if e.State().TimeLeft != 1490 {
		t.Fatalf("running phase should keep its time, got %d", e.State().TimeLeft)
	}
}

func TestSettingsAreCopied(t *testing.T) {
	s := DefaultSettings()
	e := New(s)
	s.Configs[Pomodoro] = Config{WorkSeconds: 1}
	if e.Settings().Configs[Pomodoro].WorkSeconds != 1500 {
		t.Fatal("engine must not share the caller's config map")
	}
}

func TestSetConfigAndIterations(t *testing.T) {
	e, _ := newTestEngine(t, DefaultSettings())
	e.SetConfig(Pomodoro, Config{WorkSeconds: 900, BreakSeconds: 60})
	e.SetIterations(3)

	st := e.State()
	if st.TimeLeft != 900 || st.Iterations != 3 {
		t.Fatalf("after SetConfig/SetIterations: %+v", st)
	}
	if e.Settings().Configs[Custom].WorkSeconds != DefaultWorkSeconds {
		t.Fatal("other modes should keep their config")
	}

	e.SetIterations(0)
	if e.State().Iterations != 1 {
		t.Fatalf("iterations below 1 should clamp to 1, got %d", e.State().Iterations)
	}
}
