package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/timekeep/internal/record"
)

// CreateRecord persists one time record. The insert is idempotent on the
// client-generated id, so a retried write cannot duplicate a segment.
func (s *Store) CreateRecord(r record.TimeRecord) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO time_records
		 (id, entity_label, category_label, category_color, activity_type, start_time, end_time, duration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EntityLabel, r.CategoryLabel, r.CategoryColor, r.ActivityType,
		r.StartTime.UTC().Format(time.RFC3339),
		r.EndTime.UTC().Format(time.RFC3339),
		r.DurationSeconds,
		created.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// ListRecordsBetween returns records whose start time falls in
// [start, end), ordered by start time.
func (s *Store) ListRecordsBetween(start, end time.Time) ([]record.TimeRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, entity_label, category_label, category_color, activity_type,
		        start_time, end_time, duration, created_at
		 FROM time_records
		 WHERE start_time >= ? AND start_time < ?
		 ORDER BY start_time`,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListRecentRecords returns the most recent records, newest first.
func (s *Store) ListRecentRecords(limit int) ([]record.TimeRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, entity_label, category_label, category_color, activity_type,
		        start_time, end_time, duration, created_at
		 FROM time_records
		 ORDER BY start_time DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]record.TimeRecord, error) {
	var records []record.TimeRecord
	for rows.Next() {
		var r record.TimeRecord
		var startTime, endTime, createdAt string
		if err := rows.Scan(&r.ID, &r.EntityLabel, &r.CategoryLabel, &r.CategoryColor,
			&r.ActivityType, &startTime, &endTime, &r.DurationSeconds, &createdAt); err != nil {
			return nil, err
		}
		r.StartTime, _ = time.Parse(time.RFC3339, startTime)
		r.EndTime, _ = time.Parse(time.RFC3339, endTime)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}
