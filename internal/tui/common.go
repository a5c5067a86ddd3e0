package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/sadopc/pomotrack/internal/snapshot"
	"github.com/sadopc/pomotrack/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Timer", "Tasks", "Analytics", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// changeMsg carries one change from the store feed. closed is set when the
// feed has shut down.
type changeMsg struct {
	change store.Change
	closed bool
}

type snapshotMsg struct {
	state *snapshot.State
	err   error
}

// selectTaskMsg asks the timer to record sessions against a task.
type selectTaskMsg struct {
	id string
}

type settingsSavedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Commands ---

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan store.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		return changeMsg{change: c, closed: !ok}
	}
}

func loadSnapshot(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		st, err := snapshot.Load(s)
		return snapshotMsg{state: st, err: err}
	}
}

// persist runs a store write in the background. The local state has already
// been updated; a failure is logged and shown but not rolled back.
func persist(logger *log.Logger, what string, write func() error) tea.Cmd {
	return func() tea.Msg {
		if err := write(); err != nil {
			logger.Error("persist failed", "op", what, "err", err)
			return statusMsg{text: fmt.Sprintf("Could not %s: %v", what, err), isError: true}
		}
		return nil
	}
}

// --- Helpers ---


func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
