// Package notify turns timer events into alerts: a terminal bell and a
// desktop notification. Failures are logged and never reach the timer.
package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sadopc/pomotrack/internal/timer"
)

type Alert struct {
	Title string
	Body  string
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, a Alert) error
}

// Bell writes the BEL character to the terminal.
type Bell struct {
	W io.Writer
}

func (b Bell) Name() string { return "bell" }

func (b Bell) Notify(_ context.Context, _ Alert) error {
	_, err := io.WriteString(b.W, "\a")
	return err
}

// runner runs an external command; replaced in tests.
type runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

// Desktop shows a notification through notify-send on Linux and osascript on
// macOS.
type Desktop struct {
	goos string
	run  runner
}

func NewDesktop() Desktop {
	return Desktop{goos: runtime.GOOS, run: execRunner}
}

func (d Desktop) Name() string { return "desktop" }

func (d Desktop) Notify(ctx context.Context, a Alert) error {
	switch d.goos {
	case "linux", "freebsd", "openbsd":
		return d.run(ctx, "notify-send", "--app-name=pomotrack", a.Title, a.Body)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", a.Body, a.Title)
		return d.run(ctx, "osascript", "-e", script)
	default:
		return fmt.Errorf("desktop notifications unsupported on %s", d.goos)
	}
}

// AlertFor picks the alert for a batch of events from one engine operation.
// A finished cycle wins over the phase completion that caused it.
func AlertFor(events []timer.Event) (Alert, bool) {
	var completed *timer.Event
	for i := range events {
		switch events[i].Kind {
		case timer.CycleFinished:
			return Alert{Title: "Cycle complete", Body: "All iterations done. Nice work."}, true
		case timer.PhaseCompleted:
			completed = &events[i]
		}
	}
	if completed == nil {
		return Alert{}, false
	}
	if completed.Phase == timer.Work {
		return Alert{Title: "Work session done", Body: "Time for a break."}, true
	}
	return Alert{Title: "Break over", Body: "Back to work."}, true
}

// Dispatcher fans one alert out to every enabled notifier.
type Dispatcher struct {
	notifiers []Notifier
	logger    *log.Logger
	timeout   time.Duration
}

func NewDispatcher(logger *log.Logger, notifiers ...Notifier) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Dispatcher{notifiers: notifiers, logger: logger, timeout: 5 * time.Second}
}

// Handle raises the alert for events, if any. It returns the number of
// notifiers that succeeded.
func (d *Dispatcher) Handle(ctx context.Context, events []timer.Event) int {
	a, ok := AlertFor(events)
	if !ok {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	sent := 0
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, a); err != nil {
			d.logger.Warn("notification failed", "notifier", n.Name(), "title", a.Title, "err", err)
			continue
		}
		sent++
	}
	return sent
}
