package timer

import "fmt"

type Mode int

const (
	Pomodoro Mode = iota
	Flowtime
	Custom
)

var modeNames = map[Mode]string{
	Pomodoro: "pomodoro",
	Flowtime: "flowtime",
	Custom:   "custom",
}

// Modes lists every mode in display order.
var Modes = []Mode{Pomodoro, Flowtime, Custom}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for m, n := range modeNames {
		if n == s {
			return m, nil
		}
	}
	return Pomodoro, fmt.Errorf("unknown timer mode %q", s)
}

// countsUp reports whether the work phase of m counts up instead of down.
func (m Mode) countsUp() bool { return m == Flowtime }

type Phase int

const (
	Work Phase = iota
	Break
)

func (p Phase) String() string {
	if p == Break {
		return "break"
	}
	return "work"
}

// Config holds the phase durations of one mode, in seconds. Flowtime ignores
// WorkSeconds because its work phase counts up.
type Config struct {
	WorkSeconds  int
	BreakSeconds int
}

// Settings is the full timer configuration.
type Settings struct {
	Configs    map[Mode]Config
	Iterations int
}

const (
	DefaultWorkSeconds  = 1500
	DefaultBreakSeconds = 300
)

func DefaultSettings() Settings {
	return Settings{
		Configs: map[Mode]Config{
			Pomodoro: {WorkSeconds: DefaultWorkSeconds, BreakSeconds: DefaultBreakSeconds},
			Flowtime: {WorkSeconds: 0, BreakSeconds: DefaultBreakSeconds},
			Custom:   {WorkSeconds: DefaultWorkSeconds, BreakSeconds: DefaultBreakSeconds},
		},
		Iterations: 1,
	}
}

func (s Settings) config(m Mode) Config {
	c := s.Configs[m]
	if c.WorkSeconds < 0 {
		c.WorkSeconds = 0
	}
	if c.BreakSeconds < 0 {
		c.BreakSeconds = 0
	}
	if m.countsUp() {
		c.WorkSeconds = 0
	}
	return c
}
