package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/sadopc/pomotrack/internal/timer"
)

type fakeNotifier struct {
	name   string
	err    error
	alerts []Alert
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Notify(_ context.Context, a Alert) error {
	f.alerts = append(f.alerts, a)
	return f.err
}

func TestAlertFor(t *testing.T) {
	tests := []struct {
		name   string
		events []timer.Event
		want   string
		ok     bool
	}{
		{"nothing", nil, "", false},
		{"started only", []timer.Event{{Kind: timer.Started}}, "", false},
		{"work done", []timer.Event{
			{Kind: timer.SessionRecorded},
			{Kind: timer.PhaseCompleted, Phase: timer.Work},
			{Kind: timer.Started, Phase: timer.Break, Auto: true},
		}, "Work session done", true},
		{"break done", []timer.Event{
			{Kind: timer.PhaseCompleted, Phase: timer.Break},
			{Kind: timer.Started, Phase: timer.Work, Auto: true},
		}, "Break over", true},
		{"cycle wins", []timer.Event{
			{Kind: timer.PhaseCompleted, Phase: timer.Break},
			{Kind: timer.CycleFinished},
		}, "Cycle complete", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := AlertFor(tt.events)
			if ok != tt.ok || a.Title != tt.want {
				t.Fatalf("got (%q, %v), want (%q, %v)", a.Title, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs)

	good := &fakeNotifier{name: "good"}
	bad := &fakeNotifier{name: "bad", err: errors.New("no display")}
	d := NewDispatcher(logger, bad, good)

	sent := d.Handle(context.Background(), []timer.Event{{Kind: timer.CycleFinished}})
	if sent != 1 {
		t.Fatalf("expected 1 successful notifier, got %d", sent)
	}
	if len(good.alerts) != 1 || len(bad.alerts) != 1 {
		t.Fatal("every notifier should be tried")
	}
	if !strings.Contains(logs.String(), "no display") {
		t.Fatalf("failure not logged: %q", logs.String())
	}
}

func TestDispatcherIgnoresQuietEvents(t *testing.T) {
	n := &fakeNotifier{name: "n"}
	d := NewDispatcher(nil, n)
	if sent := d.Handle(context.Background(), []timer.Event{{Kind: timer.Started}}); sent != 0 {
		t.Fatalf("expected no alerts, got %d", sent)
	}
	if len(n.alerts) != 0 {
		t.Fatal("notifier should not be called")
	}
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	if err := (Bell{W: &buf}).Notify(context.Background(), Alert{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\a" {
		t.Fatalf("expected BEL, got %q", buf.String())
	}
}

func TestDesktopCommands(t *testing.T) {
	var got []string
	run := func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}
	a := Alert{Title: "Break over", Body: "Back to work."}

	if err := (Desktop{goos: "linux", run: run}).Notify(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if got[0] != "notify-send" || got[len(got)-1] != "Back to work." {
		t.Fatalf("unexpected linux command: %v", got)
	}

	if err := (Desktop{goos: "darwin", run: run}).Notify(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if got[0] != "osascript" || !strings.Contains(got[2], `"Break over"`) {
		t.Fatalf("unexpected darwin command: %v", got)
	}

	if err := (Desktop{goos: "plan9", run: run}).Notify(context.Background(), a); err == nil {
		t.Fatal("expected error on unsupported platform")
	}
}
