package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomotrack/internal/timer"
)

// Palette. Focus, break and flow each get their own color so the phase is
// readable at a glance.
var (
	colorPrimary   = lipgloss.Color("#6C63FF")
	colorSecondary = lipgloss.Color("#2EC4B6")
	colorFocus     = lipgloss.Color("#FF6B6B")
	colorBreak     = lipgloss.Color("#2ECC71")
	colorPaused    = lipgloss.Color("#F39C12")
	colorError     = lipgloss.Color("#E74C3C")
	colorMuted     = lipgloss.Color("#666666")
	colorText      = lipgloss.Color("#E0DEF4")
	colorBorder    = lipgloss.Color("#3E3B5C")
	colorHighlight = lipgloss.Color("#A59FFF")
)

// gridColors are the contribution grid bands, indexed by analytics.Level.
var gridColors = []lipgloss.Color{
	lipgloss.Color("#2A2B3D"),
	lipgloss.Color("#3B3772"),
	lipgloss.Color("#514AA8"),
	lipgloss.Color("#6C63FF"),
	lipgloss.Color("#A59FFF"),
}

// tagColors are offered when creating or editing a tag.
var tagColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#2ECC71", "#F39C12", "#E74C3C", "#9B59B6", "#3498DB"}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	activePanelStyle = panelStyle.
				BorderForeground(colorPrimary)

	// Countdown digits, recolored per phase by phaseLook.
	timerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Align(lipgloss.Center)

	timerRunningStyle = timerStyle.Foreground(colorFocus)
	timerFlowStyle    = timerStyle.Foreground(colorSecondary)
	timerBreakStyle   = timerStyle.Foreground(colorBreak)
	timerPausedStyle  = timerStyle.Foreground(colorPaused)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorSecondary)
	accentStyle    = lipgloss.NewStyle().Foreground(colorFocus)
	successStyle   = lipgloss.NewStyle().Foreground(colorBreak)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle    = lipgloss.NewStyle().Foreground(colorText)
	completedItemStyle = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
)

// phaseLook picks the countdown style and label for the engine state.
func phaseLook(st timer.State) (lipgloss.Style, string) {
	switch {
	case st.Running && st.Phase == timer.Break:
		return timerBreakStyle, "BREAK"
	case st.Running && st.Mode == timer.Flowtime:
		return timerFlowStyle, "FLOW"
	case st.Running:
		return timerRunningStyle, "FOCUS"
	case st.SessionElapsed > 0 || st.Phase == timer.Break:
		return timerPausedStyle, "PAUSED"
	}
	return timerStyle, "Ready to start"
}

func dot(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}
