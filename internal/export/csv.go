package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/pomotrack/internal/timecalc"
)

var csvHeader = []string{"Session", "Task", "Tag", "Start", "End", "Duration (s)", "Duration"}

func ToCSV(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, rows); err != nil {
		return err
	}
	return f.Close()
}

func WriteCSV(out io.Writer, rows []Row) error {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.SessionID,
			r.Task,
			r.Tag,
			r.Start.Local().Format(time.RFC3339),
			r.End.Local().Format(time.RFC3339),
			strconv.FormatInt(r.Duration, 10),
			timecalc.FormatClock(r.Duration),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
