package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timekeep/internal/record"
)

func ToCSV(records []record.TimeRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Entity", "Category", "Type", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID,
			r.EntityLabel,
			r.CategoryLabel,
			r.ActivityType,
			r.StartTime.Local().Format(time.RFC3339),
			r.EndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", r.DurationSeconds),
			formatDuration(r.DurationSeconds),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
