package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/pomotrack/internal/export"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timecalc"
)

func newExportCmd(o *options) *cobra.Command {
	var format, outPath, from string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every recorded session as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			s, logger, cleanup, err := open(o)
			if err != nil {
				return err
			}
			defer cleanup()

			var sessions []store.Session
			if from != "" {
				start, perr := timecalc.ParseDayKey(from, time.Local)
				if perr != nil {
					return fmt.Errorf("parse --from: %w", perr)
				}
				sessions, err = s.ListSessionsBetween(start, time.Now())
			} else {
				sessions, err = s.ListSessions()
			}
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			tasks, err := s.ListTasks()
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			tags, err := s.ListTags()
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}
			rows := export.Rows(sessions, tasks, tags)

			if outPath == "-" {
				if f == export.JSON {
					return export.WriteJSON(cmd.OutOrStdout(), rows, time.Now())
				}
				return export.WriteCSV(cmd.OutOrStdout(), rows)
			}

			if err := export.ToFile(rows, f, outPath); err != nil {
				return err
			}
			logger.Info("exported sessions", "path", outPath, "count", len(rows))
			fmt.Fprintln(cmd.ErrOrStderr(), goodStyle.Render(fmt.Sprintf("exported %d sessions to %s", len(rows), outPath)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&from, "from", "", "only sessions started on or after this day (YYYY-MM-DD)")
	return cmd
}
