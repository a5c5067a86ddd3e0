package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/pomotrack/internal/export"
	"github.com/sadopc/pomotrack/internal/notify"
	"github.com/sadopc/pomotrack/internal/snapshot"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timecalc"
)

var exportFormats = []export.Format{export.CSV, export.JSON}

// App is the root Bubble Tea model. It owns the snapshot and is the only
// place it is replaced; views share it by pointer.
type App struct {
	store       *store.Store
	logger      *log.Logger
	changes     <-chan store.Change
	unsubscribe func()
	state       *snapshot.State

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	timer     timerModel
	tasks     tasksModel
	analytics analyticsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(s *store.Store, logger *log.Logger) App {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	h := help.New()
	h.ShowAll = false

	changes, unsubscribe := s.Subscribe()
	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}

	a := App{
		store:       s,
		logger:      logger,
		changes:     changes,
		unsubscribe: unsubscribe,
		activeView:  viewTimer,
		exportDir:   exportDir,
		timer:       newTimerModel(s, logger, buildDispatcher(s, logger)),
		tasks:       newTasksModel(s, logger),
		analytics:   newAnalyticsModel(),
		settings:    newSettingsModel(s, logger),
		help:        h,
	}
	a.setState(&snapshot.State{})
	return a
}

// buildDispatcher wires the notifiers enabled in settings.
func buildDispatcher(s *store.Store, logger *log.Logger) *notify.Dispatcher {
	var ns []notify.Notifier
	if s.BoolSetting(keyNotifyBell, true) {
		ns = append(ns, notify.Bell{W: os.Stderr})
	}
	if s.BoolSetting(keyNotifyDesktop, true) {
		ns = append(ns, notify.NewDesktop())
	}
	return notify.NewDispatcher(logger, ns...)
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadSnapshot(a.store),
		waitForChange(a.changes),
		a.settings.refresh(),
		tickCmd(),
	)
}

func (a *App) setState(st *snapshot.State) {
	a.state = st
	a.timer.state = st
	a.tasks.state = st
	a.analytics.state = st
	a.stateChanged()
}

func (a *App) stateChanged() {
	a.timer.syncTask()
	a.tasks.clamp()
	a.analytics.refresh()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (form or picker) sees keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			if a.unsubscribe != nil {
				a.unsubscribe()
			}
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewTimer)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewAnalytics)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case changeMsg:
		if msg.closed {
			return a, nil
		}
		cmds = append(cmds, waitForChange(a.changes))
		if a.state.Apply(msg.change) {
			cmds = append(cmds, loadSnapshot(a.store))
		} else {
			a.stateChanged()
		}
		return a, tea.Batch(cmds...)

	case snapshotMsg:
		if msg.err != nil {
			a.logger.Error("load snapshot", "err", msg.err)
			a.status, a.statusErr = "Could not load data: "+msg.err.Error(), true
			return a, nil
		}
		a.setState(msg.state)
		return a, nil

	case taskCreatedMsg:
		a.state.AddTask(msg.task)
		a.stateChanged()
		return a, nil

	case tagCreatedMsg:
		a.state.AddTag(msg.tag)
		a.stateChanged()
		return a, nil

	case selectTaskMsg:
		a.timer.selectTask(msg.id)
		a.activeView = viewTimer
		if task, ok := a.state.Task(msg.id); ok {
			a.status, a.statusErr = "Tracking "+task.Text, false
		}
		return a, nil

	case settingsDataMsg:
		a.settings.settings = msg.settings
		return a, nil

	case settingsSavedMsg:
		a.timer.engine.SetSettings(loadTimerSettings(a.store))
		a.timer.notifier = buildDispatcher(a.store, a.logger)
		a.status, a.statusErr = "Settings saved", false
		return a, a.settings.refresh()

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	switch v {
	case viewAnalytics:
		a.analytics.refresh()
	case viewSettings:
		return a, a.settings.refresh()
	}
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimer:
		return a.timer.picking
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewTasks:
		content = a.tasks.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pomotrack")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	if st := a.timer.engine.State(); st.Running {
		style, label := phaseLook(st)
		clock := timecalc.FormatCountdown(a.timer.engine.Display())
		timerInfo = style.UnsetAlign().Render(" ● " + clock + " " + strings.ToLower(label))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Sessions"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes every session, including those of deleted tasks, to a
// dated file in the export directory.
func (a App) doExport(f export.Format) tea.Cmd {
	s, logger, dir := a.store, a.logger, a.exportDir
	return func() tea.Msg {
		sessions, err := s.ListSessions()
		if err != nil {
			logger.Error("export", "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		tasks, err := s.ListTasks()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		tags, err := s.ListTags()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		name := fmt.Sprintf("pomotrack-export-%s.%s", time.Now().Format("2006-01-02"), f)
		path := filepath.Join(dir, name)
		if err := export.ToFile(export.Rows(sessions, tasks, tags), f, path); err != nil {
			logger.Error("export", "path", path, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		logger.Info("exported sessions", "path", path, "count", len(sessions))
		return exportDoneMsg{path: path}
	}
}
