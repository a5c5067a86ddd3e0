package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/pomotrack/internal/analytics"
	"github.com/sadopc/pomotrack/internal/snapshot"
	"github.com/sadopc/pomotrack/internal/timecalc"
)

func newStatsCmd(o *options) *cobra.Command {
	var window string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print focus statistics for a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := analytics.ParseWindow(window)
			if err != nil {
				return err
			}

			s, logger, cleanup, err := open(o)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := snapshot.Load(s)
			if err != nil {
				return fmt.Errorf("load data: %w", err)
			}
			now := time.Now()
			today, err := s.GetTodayTotal(now)
			if err != nil {
				return fmt.Errorf("today total: %w", err)
			}
			rep := analytics.Aggregate(st.Tasks, st.Tags, w, now)
			logger.Debug("stats", "window", w, "sessions", rep.SessionCount)

			out := cmd.OutOrStdout()
			printReport(out, rep)
			fmt.Fprintln(out, labelValue("Today", timecalc.FormatDuration(today)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "week", "time window: day, week, month or year")
	return cmd
}

func printReport(out io.Writer, rep analytics.Report) {
	sum := rep.Summary()

	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Focus stats (%s)", rep.Window)))
	fmt.Fprintln(out, mutedStyle.Render(rep.Start.Format("Jan 2 15:04")+" to "+rep.Now.Format("Jan 2 15:04")))
	fmt.Fprintln(out)

	fmt.Fprintln(out, labelValue("Total", timecalc.FormatDuration(sum.TotalTime)))
	fmt.Fprintln(out, labelValue("Sessions", sum.Sessions))
	fmt.Fprintln(out, labelValue("Average", timecalc.FormatDuration(sum.AverageLength)))
	if sum.BestHour >= 0 {
		fmt.Fprintln(out, labelValue("Best hour", fmt.Sprintf("%02d:00", sum.BestHour)))
		fmt.Fprintln(out, labelValue("Best day", sum.BestWeekday))
	}
	fmt.Fprintln(out, labelValue("Active days", sum.ActiveDays))
	fmt.Fprintln(out)

	if rep.Window != analytics.Day && len(rep.Daily) > 0 {
		fmt.Fprintln(out, headingStyle.Render("Daily"))
		for _, b := range rep.Daily {
			fmt.Fprintf(out, "  %s %s %s\n", mutedStyle.Render(b.Key), bar(b.TotalTime, rep.MaxDaily()), timecalc.FormatDuration(b.TotalTime))
		}
		fmt.Fprintln(out)
	}

	if rep.SessionCount > 0 {
		fmt.Fprintln(out, headingStyle.Render("Time of day"))
		for h, v := range rep.Hourly {
			if v == 0 {
				continue
			}
			fmt.Fprintf(out, "  %s %s %s\n", mutedStyle.Render(fmt.Sprintf("%02d:00", h)), bar(v, rep.MaxHourly()), timecalc.FormatDuration(v))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, headingStyle.Render("Tags"))
	if len(rep.Tags) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  no data for this window"))
	}
	for _, ts := range rep.Tags {
		fmt.Fprintf(out, "  %s %-18s %10s  %s\n",
			swatch(ts.Color), ts.Name, timecalc.FormatDuration(ts.TotalTime),
			mutedStyle.Render(fmt.Sprintf("%d sessions, %d/%d tasks done", ts.Sessions, ts.Completed, ts.Tasks)),
		)
	}
	fmt.Fprintln(out)

	streak := fmt.Sprintf("%d days", rep.CurrentStreak)
	if rep.CurrentStreak > 0 {
		streak = goodStyle.Render(streak)
	}
	fmt.Fprintln(out, labelValue("Streak", streak))
	fmt.Fprintln(out, labelValue("Longest", fmt.Sprintf("%d days", rep.LongestStreak)))
}

const barWidth = 30

// bar draws v scaled against peak as a fixed-width block bar.
func bar(v, peak int64) string {
	n := int(v * barWidth / peak)
	if v > 0 && n == 0 {
		n = 1
	}
	return keyStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barWidth-n)
}
