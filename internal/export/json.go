package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/pomotrack/internal/timecalc"
)

type jsonExport struct {
	ExportedAt   string        `json:"exported_at"`
	Count        int           `json:"count"`
	TotalSeconds int64         `json:"total_seconds"`
	Sessions     []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          string `json:"id"`
	TaskID      string `json:"task_id"`
	Task        string `json:"task"`
	Tag         string `json:"tag"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, rows, time.Now()); err != nil {
		return err
	}
	return f.Close()
}

func WriteJSON(w io.Writer, rows []Row, exportedAt time.Time) error {
	export := jsonExport{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Count:      len(rows),
	}
	for _, r := range rows {
		export.TotalSeconds += r.Duration
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          r.SessionID,
			TaskID:      r.TaskID,
			Task:        r.Task,
			Tag:         r.Tag,
			StartTime:   r.Start.Local().Format(time.RFC3339),
			EndTime:     r.End.Local().Format(time.RFC3339),
			DurationSec: r.Duration,
			Duration:    timecalc.FormatClock(r.Duration),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
