// Package timer implements the focus timer: a work/break phase machine that
// runs a number of iterations and reports finished work sessions.
//
// The engine does no I/O. Every operation returns the events it produced and
// the caller persists sessions and raises notifications. It is driven by one
// tick source and must not be used from several goroutines at once.
package timer

import "time"

type EventKind int

const (
	// Started fires when a phase begins or resumes running.
	Started EventKind = iota
	// SessionRecorded carries a finished work session in Event.Record.
	SessionRecorded
	// PhaseCompleted fires when a phase is exhausted, skipped or a flow ended.
	PhaseCompleted
	// CycleFinished fires when the last iteration is done and the timer is idle.
	CycleFinished
)

type Event struct {
	Kind      EventKind
	Mode      Mode
	Phase     Phase
	Iteration int
	Auto      bool // Started by an automatic transition rather than the user
	Record    *Record
}

// Record is a finished work session. Duration is the number of ticks the
// session ran, which may differ from End-Start if the process was suspended.
type Record struct {
	TaskID   string
	Start    time.Time
	End      time.Time
	Duration int64
}

// State is a read-only view of the engine.
type State struct {
	Mode           Mode
	Phase          Phase
	Running        bool
	TimeLeft       int
	ElapsedTime    int
	Iteration      int
	Iterations     int
	SessionElapsed int64
	TaskID         string
}

type Engine struct {
	settings Settings
	now      func() time.Time

	mode       Mode
	phase      Phase
	running    bool
	timeLeft   int
	elapsed    int
	iteration  int
	iterations int

	sessionStart   time.Time
	sessionActive  bool
	sessionElapsed int64

	taskID string
}

func New(s Settings) *Engine {
	e := &Engine{now: time.Now, iteration: 1}
	e.applySettings(s)
	e.loadPhase()
	return e
}

// WithClock replaces the clock used to stamp sessions.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) applySettings(s Settings) {
	configs := make(map[Mode]Config, len(s.Configs))
	for m, c := range s.Configs {
		configs[m] = c
	}
	e.settings = Settings{Configs: configs, Iterations: s.Iterations}
	e.iterations = max(s.Iterations, 1)
}

// Start runs the current phase. A no-op while running.
func (e *Engine) Start() []Event {
	if e.running {
		return nil
	}
	e.begin()
	return []Event{e.event(Started)}
}

func (e *Engine) begin() {
	if !e.sessionActive {
		e.sessionStart = e.now()
		e.sessionActive = true
		e.sessionElapsed = 0
	}
	e.running = true
}

// Pause stops the clock. In countdown modes a paused work phase is saved as
// a session; flowtime keeps accumulating until EndFlow.
func (e *Engine) Pause() []Event {
	if !e.running {
		return nil
	}
	e.running = false
	if e.phase == Work && !e.mode.countsUp() {
		evs := e.appendRecord(nil)
		e.clearSession()
		return evs
	}
	return nil
}

// Toggle pauses a running timer and starts a stopped one.
func (e *Engine) Toggle() []Event {
	if e.running {
		return e.Pause()
	}
	return e.Start()
}

// Tick advances the clock by one second.
func (e *Engine) Tick() []Event {
	if !e.running {
		return nil
	}
	e.sessionElapsed++
	if e.phase == Work && e.mode.countsUp() {
		e.elapsed++
		return nil
	}
	if e.timeLeft > 0 {
		e.timeLeft--
	}
	if e.timeLeft == 0 {
		return e.completePhase()
	}
	return nil
}

// EndFlow finishes a flowtime work phase, saving the session.
func (e *Engine) EndFlow() []Event {
	if !e.mode.countsUp() || e.phase != Work || !e.sessionActive {
		return nil
	}
	return e.completePhase()
}

// Skip finishes the current phase now, as if its time had run out.
func (e *Engine) Skip() []Event {
	if e.phase == Work && e.mode.countsUp() {
		return e.EndFlow()
	}
	return e.completePhase()
}

// Reset stops the timer and returns to the first work phase without saving.
func (e *Engine) Reset() {
	e.running = false
	e.clearSession()
	e.phase = Work
	e.iteration = 1
	e.loadPhase()
}

// ChangeMode stops the timer and switches to m without saving.
func (e *Engine) ChangeMode(m Mode) {
	e.mode = m
	e.Reset()
}

// SelectTask sets the task sessions are recorded against; "" deselects.
func (e *Engine) SelectTask(id string) { e.taskID = id }

// SetSettings replaces the configuration. An idle timer picks up the new
// work duration right away; a started phase keeps its remaining time.
func (e *Engine) SetSettings(s Settings) {
	e.applySettings(s)
	if e.iteration > e.iterations {
		e.iteration = e.iterations
	}
	if !e.running && !e.sessionActive && e.phase == Work {
		e.loadPhase()
	}
}

// SetConfig replaces the durations of one mode.
func (e *Engine) SetConfig(m Mode, c Config) {
	s := e.settings
	s.Configs = make(map[Mode]Config, len(e.settings.Configs)+1)
	for k, v := range e.settings.Configs {
		s.Configs[k] = v
	}
	s.Configs[m] = c
	e.SetSettings(s)
}

// SetIterations sets the work/break cycles per run; values below 1 mean 1.
func (e *Engine) SetIterations(n int) {
	s := e.settings
	s.Iterations = n
	e.SetSettings(s)
}

func (e *Engine) Settings() Settings { return e.settings }

func (e *Engine) State() State {
	return State{
		Mode:           e.mode,
		Phase:          e.phase,
		Running:        e.running,
		TimeLeft:       e.timeLeft,
		ElapsedTime:    e.elapsed,
		Iteration:      e.iteration,
		Iterations:     e.totalIterations(),
		SessionElapsed: e.sessionElapsed,
		TaskID:         e.taskID,
	}
}

func (e *Engine) Running() bool { return e.running }

// Display returns the seconds to show: time left, or elapsed time for a
// counting-up flow.
func (e *Engine) Display() int {
	if e.phase == Work && e.mode.countsUp() {
		return e.elapsed
	}
	return e.timeLeft
}

func (e *Engine) totalIterations() int {
	if e.mode.countsUp() {
		return 1
	}
	return e.iterations
}

func (e *Engine) loadPhase() {
	c := e.settings.config(e.mode)
	e.elapsed = 0
	if e.phase == Break {
		e.timeLeft = c.BreakSeconds
		return
	}
	e.timeLeft = c.WorkSeconds
}

func (e *Engine) clearSession() {
	e.sessionActive = false
	e.sessionStart = time.Time{}
	e.sessionElapsed = 0
}

// appendRecord adds a SessionRecorded event when there is something worth
// saving: a selected task and at least one second of work.
func (e *Engine) appendRecord(evs []Event) []Event {
	if e.taskID == "" || !e.sessionActive || e.sessionElapsed <= 0 {
		return evs
	}
	rec := &Record{
		TaskID:   e.taskID,
		Start:    e.sessionStart,
		End:      e.now(),
		Duration: e.sessionElapsed,
	}
	ev := e.event(SessionRecorded)
	ev.Record = rec
	return append(evs, ev)
}

func (e *Engine) event(k EventKind) Event {
	return Event{Kind: k, Mode: e.mode, Phase: e.phase, Iteration: e.iteration}
}
