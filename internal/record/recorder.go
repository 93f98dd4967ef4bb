package record

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/sadopc/timekeep/internal/timer"
)

// Recorder converts completed segments into TimeRecord writes. Writes are
// fire-and-forget: a failed or dropped write never blocks or reverses the
// timer transition that produced the segment. A single writer goroutine
// drains the queue, so records reach the store in the order their
// segments were emitted.
type Recorder struct {
	store Store
	log   *slog.Logger
	queue chan TimeRecord
	done  chan struct{}
}

// NewRecorder starts the background writer. Callers must Close the
// recorder to flush pending writes before the store goes away.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Recorder{
		store: store,
		log:   logger,
		queue: make(chan TimeRecord, 128),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

// Record enqueues one segment for durable storage. Segments whose rounded
// duration is zero or negative carry no information (clock skew, rapid
// double-invocation) and are discarded rather than persisted. Must not be
// called after Close.
func (r *Recorder) Record(seg timer.Segment) {
	dur := int64(math.Round(seg.End.Sub(seg.Start).Seconds()))
	if dur <= 0 {
		return
	}
	rec := TimeRecord{
		ID:              uuid.NewString(),
		EntityLabel:     seg.Meta.EntityLabel,
		CategoryLabel:   seg.Meta.CategoryLabel,
		CategoryColor:   seg.Meta.CategoryColor,
		ActivityType:    seg.Meta.ActivityType,
		StartTime:       seg.Start,
		EndTime:         seg.End,
		DurationSeconds: dur,
	}
	select {
	case r.queue <- rec:
	default:
		// Dropping beats blocking the caller's state transition.
		r.log.Warn("record queue full, segment dropped",
			"entity", seg.Meta.EntityLabel, "duration", dur)
	}
}

func (r *Recorder) drain() {
	defer close(r.done)
	for rec := range r.queue {
		if err := r.store.CreateRecord(rec); err != nil {
			// The segment is simply absent from later totals; the
			// user-visible timer state is already final.
			r.log.Warn("record write failed, segment dropped",
				"entity", rec.EntityLabel, "duration", rec.DurationSeconds, "err", err)
		}
	}
}

// Close flushes pending writes and stops the writer.
func (r *Recorder) Close() {
	close(r.queue)
	<-r.done
}

var _ timer.Recorder = (*Recorder)(nil)
