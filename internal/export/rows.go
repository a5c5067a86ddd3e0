// Package export writes the session log as CSV or JSON.
package export

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/pomotrack/internal/store"
)

const (
	unknownTask = "Unknown"
	noTag       = "No tag"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case CSV, JSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
}

// Row is one exported session.
type Row struct {
	SessionID string
	TaskID    string
	Task      string
	Tag       string
	Start     time.Time
	End       time.Time
	Duration  int64
}

// Rows joins sessions with their task and tag names, oldest first. Sessions
// whose task was deleted are kept with an "Unknown" task.
func Rows(sessions []store.Session, tasks []store.Task, tags []store.Tag) []Row {
	taskByID := make(map[string]store.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}
	tagName := make(map[string]string, len(tags))
	for _, t := range tags {
		tagName[t.ID] = t.Name
	}

	rows := make([]Row, 0, len(sessions))
	for _, s := range sessions {
		r := Row{
			SessionID: s.ID,
			TaskID:    s.TaskID,
			Task:      unknownTask,
			Tag:       noTag,
			Start:     s.StartTime,
			End:       s.EndTime,
			Duration:  s.Duration,
		}
		if t, ok := taskByID[s.TaskID]; ok {
			r.Task = t.Text
			if t.TagID != nil {
				if name, ok := tagName[*t.TagID]; ok {
					r.Tag = name
				}
			}
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Start.Before(rows[j].Start) })
	return rows
}

// ToFile writes rows to path in format f.
func ToFile(rows []Row, f Format, path string) error {
	switch f {
	case CSV:
		return ToCSV(rows, path)
	case JSON:
		return ToJSON(rows, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}
