package timer

type iterStep int

const (
	iterKeep iterStep = iota
	iterNext
	iterReset
)

// transition is one row of the phase-end table. Rows are tried in order and
// the first whose phase matches and whose guard holds wins.
type transition struct {
	from      Phase
	guard     func(*Engine) bool
	next      Phase
	autoStart bool
	step      iterStep
}

var phaseEnd = []transition{
	{from: Work, guard: hasBreak, next: Break, autoStart: true, step: iterKeep},
	{from: Work, guard: moreIterations, next: Work, autoStart: true, step: iterNext},
	{from: Work, guard: always, next: Work, autoStart: false, step: iterReset},
	{from: Break, guard: moreIterations, next: Work, autoStart: true, step: iterNext},
	{from: Break, guard: always, next: Work, autoStart: false, step: iterReset},
}

func hasBreak(e *Engine) bool       { return e.settings.config(e.mode).BreakSeconds > 0 }
func moreIterations(e *Engine) bool { return e.iteration < e.totalIterations() }
func always(*Engine) bool           { return true }

func (e *Engine) lookup(from Phase) transition {
	for _, t := range phaseEnd {
		if t.from == from && t.guard(e) {
			return t
		}
	}
	// The table ends each phase with an unguarded row.
	panic("timer: no transition for phase " + from.String())
}

// completePhase ends the current phase. A finished work phase is saved,
// then the engine moves to the next phase as the table says.
func (e *Engine) completePhase() []Event {
	var evs []Event
	if e.phase == Work {
		evs = e.appendRecord(evs)
	}
	evs = append(evs, e.event(PhaseCompleted))

	t := e.lookup(e.phase)
	switch t.step {
	case iterNext:
		e.iteration++
	case iterReset:
		e.iteration = 1
	}

	e.running = false
	e.clearSession()
	e.phase = t.next
	e.loadPhase()

	if t.autoStart {
		e.begin()
		ev := e.event(Started)
		ev.Auto = true
		return append(evs, ev)
	}
	return append(evs, e.event(CycleFinished))
}
