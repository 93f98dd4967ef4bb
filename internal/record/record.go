// Package record turns completed timer segments into durable time records
// and aggregates them, together with still-live segments, into day totals.
package record

import "time"

// TimeRecord is one durable, immutable record of a contiguous tracked
// interval. Labels are denormalized at write time so the record keeps its
// meaning if the source entity is later renamed or deleted.
type TimeRecord struct {
	ID            string
	EntityLabel   string
	CategoryLabel string
	CategoryColor string
	ActivityType  string
	StartTime     time.Time
	EndTime       time.Time
	// DurationSeconds is recomputed from the endpoints at write time,
	// never trusted from the caller.
	DurationSeconds int64
	CreatedAt       time.Time
}

// Store is the durable collaborator. ListRecordsBetween returns records
// whose start time falls in [start, end).
type Store interface {
	CreateRecord(r TimeRecord) error
	ListRecordsBetween(start, end time.Time) ([]TimeRecord, error)
}
