// Package cmd is the pomotrack command line: the TUI by default, plus
// non-interactive stats and export commands over the same database.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/tui"
)

const Version = "0.1.0"

// watchInterval is how often the TUI checks for writes from other processes.
const watchInterval = 2 * time.Second

type options struct {
	dbPath  string
	userID  string
	logPath string
	debug   bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "pomotrack",
		Short:         "Terminal focus timer with task tracking",
		Long:          "pomotrack runs pomodoro, flowtime and custom focus sessions against your tasks and keeps the history in a local SQLite database.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), o)
		},
	}
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	f := root.PersistentFlags()
	f.StringVar(&o.dbPath, "db", "", "database file (default ~/.config/pomotrack/pomotrack.db)")
	f.StringVar(&o.userID, "user", store.DefaultUser, "user id that owns the records")
	f.StringVar(&o.logPath, "log", "", "log file (default pomotrack.log next to the database)")
	f.BoolVar(&o.debug, "debug", false, "log at debug level")

	root.AddCommand(
		newStatsCmd(o),
		newExportCmd(o),
	)
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// open returns the store and a file logger for o. The cleanup func closes both.
func open(o *options) (*store.Store, *log.Logger, func(), error) {
	dbPath := o.dbPath
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	}

	logPath := o.logPath
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(dbPath), "pomotrack.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	lf, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(lf, log.Options{
		ReportTimestamp: true,
		Prefix:          "pomotrack",
	})
	if o.debug {
		logger.SetLevel(log.DebugLevel)
	}

	s, err := store.New(dbPath, store.WithUser(o.userID))
	if err != nil {
		lf.Close()
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("opened database", "path", dbPath, "user", s.UserID())

	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Error("close database", "err", err)
		}
		lf.Close()
	}
	return s, logger, cleanup, nil
}

func runTUI(ctx context.Context, o *options) error {
	s, logger, cleanup, err := open(o)
	if err != nil {
		return err
	}
	defer cleanup()

	if created, err := s.EnsureDefaultTags(); err != nil {
		return err
	} else if created {
		logger.Info("created default tags")
	}

	ctx, cancel := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := s.Watch(ctx, watchInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch database", "err", err)
		}
	}()
	defer func() {
		cancel()
		<-watchDone
	}()

	p := tea.NewProgram(tui.NewApp(s, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
