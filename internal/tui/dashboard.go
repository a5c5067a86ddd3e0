package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomotrack/internal/analytics"
	"github.com/sadopc/pomotrack/internal/snapshot"
	"github.com/sadopc/pomotrack/internal/timecalc"
)

const recentSessions = 5

// renderToday summarizes today's tracked time below the timer.
func renderToday(st *snapshot.State, now time.Time, w int) string {
	r := analytics.Aggregate(st.Tasks, st.Tags, analytics.Day, now)

	title := titleStyle.Render("Today")
	total := successStyle.Bold(true).Render(timecalc.FormatDuration(r.TotalTime))
	count := mutedStyle.Render(fmt.Sprintf("  %d sessions", r.SessionCount))

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", total, count), ""}

	if r.SessionCount == 0 {
		rows = append(rows, mutedStyle.Render("Nothing tracked yet today."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	var tagParts []string
	for _, ts := range r.Tags {
		if ts.TotalTime == 0 {
			continue
		}
		tagParts = append(tagParts, dot(ts.Color)+" "+ts.Name+" "+mutedStyle.Render(timecalc.FormatDuration(ts.TotalTime)))
	}
	rows = append(rows, strings.Join(tagParts, "   "), "")

	sessions := r.Sessions
	if len(sessions) > recentSessions {
		sessions = sessions[len(sessions)-recentSessions:]
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		span := fmt.Sprintf("%s–%s", s.Start.Format("15:04"), s.End.Format("15:04"))
		rows = append(rows, fmt.Sprintf("  %s %s %-8s %s",
			mutedStyle.Render(span),
			dot(s.TagColor),
			timecalc.FormatDuration(s.Duration),
			truncate(s.TaskText, max(w-30, 10)),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
