package record

import (
	"fmt"
	"time"

	"github.com/sadopc/timekeep/internal/dayspan"
)

// LiveSource exposes the seconds accrued in open segments that have not
// yet reached durable storage. timer.Tracker satisfies this.
type LiveSource interface {
	UnrecordedSeconds() int64
}

// Aggregator merges durable records with live in-memory segments into one
// authoritative total. Durable records alone would visibly under-count
// while a timer is running.
type Aggregator struct {
	store Store
	live  LiveSource
}

func NewAggregator(store Store, live LiveSource) *Aggregator {
	return &Aggregator{store: store, live: live}
}

// TotalFor sums the durations of all durable records whose start time
// falls in date's logical-day window, plus the live seconds of open
// segments. Side-effect free: repeated calls with no new completed
// segments return the same value, and the result only grows as wall-clock
// time passes under a running timer.
func (a *Aggregator) TotalFor(date time.Time, cfg dayspan.Config, offsetMinutes int) (int64, error) {
	start, end := dayspan.Window(date, cfg, offsetMinutes)
	recs, err := a.store.ListRecordsBetween(start, end)
	if err != nil {
		return 0, fmt.Errorf("list records for window: %w", err)
	}
	var total int64
	for _, rec := range recs {
		total += rec.DurationSeconds
	}
	if a.live != nil {
		total += a.live.UnrecordedSeconds()
	}
	return total, nil
}
