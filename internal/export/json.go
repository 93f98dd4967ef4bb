package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timekeep/internal/record"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Records    []jsonRecord `json:"records"`
}

type jsonRecord struct {
	ID          string `json:"id"`
	Entity      string `json:"entity"`
	Category    string `json:"category,omitempty"`
	Type        string `json:"type"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(records []record.TimeRecord, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
	}

	for _, r := range records {
		export.Records = append(export.Records, jsonRecord{
			ID:          r.ID,
			Entity:      r.EntityLabel,
			Category:    r.CategoryLabel,
			Type:        r.ActivityType,
			StartTime:   r.StartTime.Local().Format(time.RFC3339),
			EndTime:     r.EndTime.Local().Format(time.RFC3339),
			DurationSec: r.DurationSeconds,
			Duration:    formatDuration(r.DurationSeconds),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
