package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sadopc/pomotrack/internal/notify"
	"github.com/sadopc/pomotrack/internal/snapshot"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timecalc"
	"github.com/sadopc/pomotrack/internal/timer"
)

var modeLabels = map[timer.Mode]string{
	timer.Pomodoro: "Pomodoro",
	timer.Flowtime: "Flowtime",
	timer.Custom:   "Custom",
}

// timerModel drives the engine and turns its events into local state
// updates, background writes and alerts.
type timerModel struct {
	store    *store.Store
	state    *snapshot.State
	engine   *timer.Engine
	logger   *log.Logger
	notifier *notify.Dispatcher
	now      func() time.Time

	width  int
	height int

	picking      bool
	pickerCursor int
}

func newTimerModel(s *store.Store, logger *log.Logger, n *notify.Dispatcher) timerModel {
	return timerModel{
		store:    s,
		state:    &snapshot.State{},
		engine:   timer.New(loadTimerSettings(s)),
		logger:   logger,
		notifier: n,
		now:      time.Now,
	}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

// openTasks lists the tasks that can be picked for the timer.
func (t timerModel) openTasks() []store.Task {
	var out []store.Task
	for _, task := range t.state.Tasks {
		if !task.Completed {
			out = append(out, task)
		}
	}
	return out
}

func (t timerModel) selectedTask() (store.Task, bool) {
	id := t.engine.State().TaskID
	if id == "" {
		return store.Task{}, false
	}
	return t.state.Task(id)
}

func (t *timerModel) selectTask(id string) {
	t.engine.SelectTask(id)
}

// syncTask drops the selection when its task is gone from the state.
func (t *timerModel) syncTask() {
	id := t.engine.State().TaskID
	if id == "" {
		return
	}
	if _, ok := t.state.Task(id); !ok {
		t.engine.SelectTask("")
	}
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return t, t.handle(t.engine.Tick())

	case tea.KeyMsg:
		if t.picking {
			return t.updatePicker(msg)
		}
		switch {
		case key.Matches(msg, keys.Toggle):
			return t, t.handle(t.engine.Toggle())
		case key.Matches(msg, keys.Reset):
			t.engine.Reset()
			return t, statusCmd("Timer reset")
		case key.Matches(msg, keys.Skip):
			return t, t.handle(t.engine.Skip())
		case key.Matches(msg, keys.EndFlow):
			return t, t.handle(t.engine.EndFlow())
		case key.Matches(msg, keys.Mode):
			next := nextMode(t.engine.State().Mode)
			t.engine.ChangeMode(next)
			return t, statusCmd("Mode: " + modeLabels[next])
		case key.Matches(msg, keys.PickTask):
			t.picking = true
			t.pickerCursor = 0
			tasks := t.openTasks()
			for i, task := range tasks {
				if task.ID == t.engine.State().TaskID {
					t.pickerCursor = i
				}
			}
			return t, nil
		}
	}
	return t, nil
}

func (t timerModel) updatePicker(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	tasks := t.openTasks()
	switch {
	case key.Matches(msg, keys.Up):
		if t.pickerCursor > 0 {
			t.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if t.pickerCursor < len(tasks)-1 {
			t.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		t.picking = false
		if t.pickerCursor < len(tasks) {
			task := tasks[t.pickerCursor]
			t.selectTask(task.ID)
			return t, statusCmd("Tracking " + task.Text)
		}
	case key.Matches(msg, keys.Back):
		t.picking = false
	}
	return t, nil
}

// handle applies the events of one engine operation.
func (t timerModel) handle(events []timer.Event) tea.Cmd {
	if len(events) == 0 {
		return nil
	}
	var cmds []tea.Cmd
	for _, ev := range events {
		if ev.Kind == timer.SessionRecorded && ev.Record != nil {
			cmds = append(cmds, t.recordSession(*ev.Record))
		}
	}
	if alert, ok := notify.AlertFor(events); ok {
		cmds = append(cmds, statusCmd(alert.Title))
		if t.notifier != nil {
			n := t.notifier
			cmds = append(cmds, func() tea.Msg {
				n.Handle(context.Background(), events)
				return nil
			})
		}
	}
	return tea.Batch(cmds...)
}

func (t timerModel) recordSession(rec timer.Record) tea.Cmd {
	sess := store.Session{
		ID:        uuid.NewString(),
		TaskID:    rec.TaskID,
		StartTime: rec.Start,
		EndTime:   rec.End,
		Duration:  rec.Duration,
		CreatedAt: t.now(),
	}
	t.state.AddSessionToTodo(rec.TaskID, sess)
	t.logger.Debug("session recorded", "task", rec.TaskID, "duration", rec.Duration)

	s := t.store
	return persist(t.logger, "save session", func() error {
		_, err := s.CreateSession(sess)
		return err
	})
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func nextMode(m timer.Mode) timer.Mode {
	for i, mode := range timer.Modes {
		if mode == m {
			return timer.Modes[(i+1)%len(timer.Modes)]
		}
	}
	return timer.Pomodoro
}

func (t timerModel) view() string {
	w := t.width - 4
	if t.picking {
		return t.renderPicker(w)
	}

	st := t.engine.State()

	var modeTabs []string
	for _, m := range timer.Modes {
		if m == st.Mode {
			modeTabs = append(modeTabs, activeTabStyle.Render(modeLabels[m]))
		} else {
			modeTabs = append(modeTabs, inactiveTabStyle.Render(modeLabels[m]))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Bottom, modeTabs...)

	clock := timecalc.FormatCountdown(t.engine.Display())
	style, label := phaseLook(st)
	timeDisplay := style.Width(max(w-6, 10)).Render(clock)

	taskLine := mutedStyle.Render("No task selected · press t to pick one")
	if task, ok := t.selectedTask(); ok {
		taskLine = highlightStyle.Render("▸ "+task.Text) +
			mutedStyle.Render("  "+timecalc.FormatDuration(task.TotalTime)+" tracked")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		tabs,
		"",
		timeDisplay,
		style.Render(label),
		"",
		t.renderProgress(st),
		"",
		taskLine,
	)

	var controls string
	switch {
	case st.Mode == timer.Flowtime && st.Phase == timer.Work:
		controls = "space: start/pause  f: end flow  r: reset  m: mode  t: task"
	case st.Phase == timer.Break:
		controls = "space: start/pause  ]: skip break  r: reset  m: mode"
	default:
		controls = "space: start/pause  ]: skip  r: reset  m: mode  t: task"
	}

	timerPanel := panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", mutedStyle.Render(controls)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, renderToday(t.state, t.now(), w))
}

func (t timerModel) renderProgress(st timer.State) string {
	var parts []string
	for i := 1; i <= st.Iterations; i++ {
		switch {
		case i < st.Iteration:
			parts = append(parts, successStyle.Render("●"))
		case i == st.Iteration && st.Phase == timer.Work && st.SessionElapsed > 0:
			parts = append(parts, accentStyle.Render("◐"))
		case i == st.Iteration && st.Phase == timer.Break:
			parts = append(parts, successStyle.Render("●"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", st.Iteration, st.Iterations))
	return strings.Join(parts, " ") + counter
}

func (t timerModel) renderPicker(w int) string {
	tasks := t.openTasks()
	rows := []string{titleStyle.Render("Pick a task"), ""}
	if len(tasks) == 0 {
		rows = append(rows, mutedStyle.Render("No open tasks. Add one in the Tasks view."))
	}
	for i, task := range tasks {
		cursor := "  "
		style := normalItemStyle
		if i == t.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		color := "#666666"
		if task.TagID != nil {
			if tag, ok := t.state.Tag(*task.TagID); ok {
				color = tag.Color
			}
		}
		rows = append(rows, style.Render(cursor)+dot(color)+" "+style.Render(truncate(task.Text, w-12)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
