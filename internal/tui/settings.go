package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timer"
)

// Settings keys, seeded by the store migration.
const (
	keyPomodoroWork  = "pomodoro_work"
	keyPomodoroBreak = "pomodoro_break"
	keyCustomWork    = "custom_work"
	keyCustomBreak   = "custom_break"
	keyFlowtimeBreak = "flowtime_break"
	keyIterations    = "iterations"
	keyNotifyDesktop = "notify_desktop"
	keyNotifyBell    = "notify_bell"
)

var minuteKeys = map[string]bool{
	keyPomodoroWork:  true,
	keyPomodoroBreak: true,
	keyCustomWork:    true,
	keyCustomBreak:   true,
	keyFlowtimeBreak: true,
}

// loadTimerSettings reads the per-mode durations and iteration count,
// falling back to the engine defaults.
func loadTimerSettings(s *store.Store) timer.Settings {
	d := timer.DefaultSettings()
	return timer.Settings{
		Configs: map[timer.Mode]timer.Config{
			timer.Pomodoro: {
				WorkSeconds:  s.IntSetting(keyPomodoroWork, d.Configs[timer.Pomodoro].WorkSeconds),
				BreakSeconds: s.IntSetting(keyPomodoroBreak, d.Configs[timer.Pomodoro].BreakSeconds),
			},
			timer.Flowtime: {
				BreakSeconds: s.IntSetting(keyFlowtimeBreak, d.Configs[timer.Flowtime].BreakSeconds),
			},
			timer.Custom: {
				WorkSeconds:  s.IntSetting(keyCustomWork, d.Configs[timer.Custom].WorkSeconds),
				BreakSeconds: s.IntSetting(keyCustomBreak, d.Configs[timer.Custom].BreakSeconds),
			},
		},
		Iterations: s.IntSetting(keyIterations, d.Iterations),
	}
}

type settingsModel struct {
	store  *store.Store
	logger *log.Logger
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	pomodoroWork  *string
	pomodoroBreak *string
	customWork    *string
	customBreak   *string
	flowtimeBreak *string
	iterations    *string
	notifyDesktop *bool
	notifyBell    *bool
}

func newSettingsModel(s *store.Store, logger *log.Logger) settingsModel {
	pw, pb, cw, cb, fb, it := "", "", "", "", "", ""
	nd, nb := true, true
	return settingsModel{
		store:         s,
		logger:        logger,
		pomodoroWork:  &pw,
		pomodoroBreak: &pb,
		customWork:    &cw,
		customBreak:   &cb,
		flowtimeBreak: &fb,
		iterations:    &it,
		notifyDesktop: &nd,
		notifyBell:    &nb,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Edit) {
			return s.showForm()
		}
	}
	return s, nil
}

func validMinutes(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of minutes")
	}
	return nil
}

func validIterations(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fmt.Errorf("enter a number of at least 1")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.pomodoroWork = secsToMin(s.getVal(keyPomodoroWork, "1500"))
	*s.pomodoroBreak = secsToMin(s.getVal(keyPomodoroBreak, "300"))
	*s.customWork = secsToMin(s.getVal(keyCustomWork, "1500"))
	*s.customBreak = secsToMin(s.getVal(keyCustomBreak, "300"))
	*s.flowtimeBreak = secsToMin(s.getVal(keyFlowtimeBreak, "300"))
	*s.iterations = s.getVal(keyIterations, "1")
	*s.notifyDesktop = s.store.BoolSetting(keyNotifyDesktop, true)
	*s.notifyBell = s.store.BoolSetting(keyNotifyBell, true)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Pomodoro work (min)").Value(s.pomodoroWork).Validate(validMinutes),
			huh.NewInput().Title("Pomodoro break (min)").Value(s.pomodoroBreak).Validate(validMinutes),
			huh.NewInput().Title("Custom work (min)").Value(s.customWork).Validate(validMinutes),
			huh.NewInput().Title("Custom break (min)").Value(s.customBreak).Validate(validMinutes),
			huh.NewInput().Title("Flowtime break (min)").Value(s.flowtimeBreak).Validate(validMinutes),
			huh.NewInput().Title("Iterations per cycle").Value(s.iterations).Validate(validIterations),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewConfirm().Title("Desktop notifications").Value(s.notifyDesktop),
			huh.NewConfirm().Title("Terminal bell").Value(s.notifyBell),
		).Title("Notifications"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save()
	}

	return s, cmd
}

// save writes the form values and reports settingsSavedMsg so the timer
// and notifiers pick them up.
func (s settingsModel) save() tea.Cmd {
	values := map[string]string{
		keyPomodoroWork:  minToSecs(*s.pomodoroWork),
		keyPomodoroBreak: minToSecs(*s.pomodoroBreak),
		keyCustomWork:    minToSecs(*s.customWork),
		keyCustomBreak:   minToSecs(*s.customBreak),
		keyFlowtimeBreak: minToSecs(*s.flowtimeBreak),
		keyIterations:    *s.iterations,
		keyNotifyDesktop: strconv.FormatBool(*s.notifyDesktop),
		keyNotifyBell:    strconv.FormatBool(*s.notifyBell),
	}
	st, logger := s.store, s.logger
	return func() tea.Msg {
		for k, v := range values {
			if err := st.SetSetting(k, v); err != nil {
				logger.Error("save setting failed", "key", k, "err", err)
				return statusMsg{text: fmt.Sprintf("Could not save %s: %v", k, err), isError: true}
			}
		}
		return settingsSavedMsg{}
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	if minuteKeys[k] {
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	}
	switch v {
	case "true":
		return "on"
	case "false":
		return "off"
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
