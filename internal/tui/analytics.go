package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomotrack/internal/analytics"
	"github.com/sadopc/pomotrack/internal/snapshot"
	"github.com/sadopc/pomotrack/internal/timecalc"
)

var windowLabels = map[analytics.Window]string{
	analytics.Day:   "Today",
	analytics.Week:  "Week",
	analytics.Month: "Month",
	analytics.Year:  "Year",
}

type analyticsModel struct {
	state  *snapshot.State
	now    func() time.Time
	width  int
	height int

	window analytics.Window
	report analytics.Report

	timeChart barchart.Model
	hourChart barchart.Model
}

func newAnalyticsModel() analyticsModel {
	return analyticsModel{
		state:     &snapshot.State{},
		now:       time.Now,
		window:    analytics.Week,
		timeChart: barchart.New(60, 10),
		hourChart: barchart.New(60, 8),
	}
}

func (r *analyticsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.refresh()
}

// refresh recomputes the report from the current state.
func (r *analyticsModel) refresh() {
	r.report = analytics.Aggregate(r.state.Tasks, r.state.Tags, r.window, r.now())
	r.buildCharts()
}

func (r analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left):
			if r.window > analytics.Day {
				r.window--
				r.refresh()
			}
		case key.Matches(msg, keys.Right):
			if r.window < analytics.Year {
				r.window++
				r.refresh()
			}
		case key.Matches(msg, keys.Window):
			r.window = (r.window + 1) % analytics.Window(len(analytics.Windows))
			r.refresh()
		}
	}
	return r, nil
}

func (r *analyticsModel) chartWidth() int {
	return max(r.width-8, 24)
}

func (r *analyticsModel) buildCharts() {
	w := r.chartWidth()

	r.timeChart = barchart.New(w, 10)
	r.timeChart.PushAll(r.timeBars())
	r.timeChart.Draw()

	r.hourChart = barchart.New(w, 8)
	r.hourChart.PushAll(r.hourBars())
	r.hourChart.Draw()
}

// timeBars charts hours per day over the window, or per month for a year.
func (r analyticsModel) timeBars() []barchart.BarData {
	style := lipgloss.NewStyle().Foreground(colorPrimary)
	rep := r.report
	var bars []barchart.BarData

	switch r.window {
	case analytics.Year:
		byMonth := make(map[string]int64, len(rep.Monthly))
		for _, b := range rep.Monthly {
			byMonth[b.Key] = b.TotalTime
		}
		first := time.Date(rep.Now.Year(), rep.Now.Month(), 1, 0, 0, 0, 0, rep.Now.Location()).AddDate(0, -11, 0)
		for i := 0; i < 12; i++ {
			m := first.AddDate(0, i, 0)
			bars = append(bars, barchart.BarData{
				Label:  m.Format("Jan"),
				Values: []barchart.BarValue{{Name: m.Format("Jan"), Value: hours(byMonth[timecalc.MonthKey(m)]), Style: style}},
			})
		}
	default:
		byDay := make(map[string]int64, len(rep.Daily))
		for _, b := range rep.Daily {
			byDay[b.Key] = b.TotalTime
		}
		label := "Mon"
		if r.window == analytics.Month {
			label = "02"
		}
		for d := timecalc.StartOfDay(rep.Start); !d.After(rep.Now); d = d.AddDate(0, 0, 1) {
			bars = append(bars, barchart.BarData{
				Label:  d.Format(label),
				Values: []barchart.BarValue{{Name: timecalc.DayKey(d), Value: hours(byDay[timecalc.DayKey(d)]), Style: style}},
			})
		}
	}
	return bars
}

func (r analyticsModel) hourBars() []barchart.BarData {
	style := lipgloss.NewStyle().Foreground(colorSecondary)
	bars := make([]barchart.BarData, 0, 24)
	for h, secs := range r.report.Hourly {
		label := ""
		if h%6 == 0 {
			label = fmt.Sprintf("%02d", h)
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: fmt.Sprintf("%02d", h), Value: hours(secs), Style: style}},
		})
	}
	return bars
}

func hours(secs int64) float64 {
	return float64(secs) / 3600
}

func (r analyticsModel) view() string {
	w := r.width - 4

	var tabs []string
	for _, win := range analytics.Windows {
		if win == r.window {
			tabs = append(tabs, activeTabStyle.Render(windowLabels[win]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(windowLabels[win]))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...),
	)

	sum := r.report.Summary()
	bestHour := "-"
	if sum.BestHour >= 0 {
		bestHour = fmt.Sprintf("%02d:00", sum.BestHour)
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Total", timecalc.FormatDuration(sum.TotalTime)),
		statBox("Sessions", fmt.Sprintf("%d", sum.Sessions)),
		statBox("Average", timecalc.FormatDuration(sum.AverageLength)),
		statBox("Best hour", bestHour),
		statBox("Streak", fmt.Sprintf("%d / %d days", r.report.CurrentStreak, r.report.LongestStreak)),
	)

	chartTitle := "Hours per day"
	if r.window == analytics.Year {
		chartTitle = "Hours per month"
	}

	sections := []string{header, "", stats, ""}
	if r.window != analytics.Day {
		sections = append(sections, subtitleStyle.Render(chartTitle), r.timeChart.View(), "")
	}
	sections = append(sections,
		subtitleStyle.Render("Time of day"), r.hourChart.View(), "",
		r.renderTagTable(w), "",
		subtitleStyle.Render("Last year"), renderGrid(r.report.Grid), "",
		mutedStyle.Render("  ←/→: window  w: cycle window"),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func statBox(label, value string) string {
	return lipgloss.NewStyle().Width(18).Render(
		lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), highlightStyle.Bold(true).Render(value)),
	)
}

func (r analyticsModel) renderTagTable(w int) string {
	if len(r.report.Tags) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %10s %8s %8s %6s", "Tag", "Time", "Sessions", "Tasks", "Done")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 58))))
	for _, ts := range r.report.Tags {
		rows = append(rows, fmt.Sprintf("  %s %-18s %10s %8d %8d %6d",
			dot(ts.Color), truncate(ts.Name, 18), timecalc.FormatDuration(ts.TotalTime),
			ts.Sessions, ts.Tasks, ts.Completed,
		))
	}
	return strings.Join(rows, "\n")
}

// renderGrid draws the contribution grid: one column per week, Sunday on
// top, with month labels above.
func renderGrid(g analytics.Grid) string {
	cols := len(g.Weeks)
	if cols == 0 {
		return ""
	}

	labels := []rune(strings.Repeat(" ", cols*2))
	for _, m := range g.Months {
		name := []rune(m.Month.String()[:3])
		pos := m.Column * 2
		if pos+len(name) > len(labels) {
			continue
		}
		copy(labels[pos:], name)
	}

	rows := []string{"    " + mutedStyle.Render(string(labels))}
	dayLabels := [7]string{"", "Mon", "", "Wed", "", "Fri", ""}
	for d := 0; d < 7; d++ {
		var b strings.Builder
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-4s", dayLabels[d])))
		for _, week := range g.Weeks {
			c := week[d]
			if c.Future {
				b.WriteString("  ")
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(gridColors[c.Level]).Render("■ "))
		}
		rows = append(rows, b.String())
	}

	var legend strings.Builder
	legend.WriteString(mutedStyle.Render("    less "))
	for _, c := range gridColors {
		legend.WriteString(lipgloss.NewStyle().Foreground(c).Render("■ "))
	}
	legend.WriteString(mutedStyle.Render("more"))
	rows = append(rows, legend.String())

	return strings.Join(rows, "\n")
}
