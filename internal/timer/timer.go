// Package timer owns the per-entity tracking state machine. Elapsed time is
// always recomputed from stored timestamps on read; a UI tick only triggers
// a re-read, it is never the source of truth. That keeps totals correct
// across process suspends and throttled intervals.
package timer

import (
	"encoding/json"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sadopc/timekeep/internal/clock"
)

// Phase is the lifecycle state of one entity's timer. A stopped entity has
// no session at all; Phase reports PhaseStopped for it.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseRunning
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// Meta is the descriptive information denormalized onto every record at
// write time, so records stay meaningful after the entity is edited or
// deleted.
type Meta struct {
	EntityLabel   string `json:"entity_label"`
	CategoryLabel string `json:"category_label"`
	CategoryColor string `json:"category_color"`
	ActivityType  string `json:"activity_type"`
}

// Segment is one contiguous running interval, bounded by start/resume on
// one side and pause/stop on the other.
type Segment struct {
	EntityID string
	Meta     Meta
	Start    time.Time
	End      time.Time
}

// Recorder receives completed segments. Implementations must not block:
// the state transition that produced the segment has already happened and
// is never rolled back.
type Recorder interface {
	Record(seg Segment)
}

// SnapshotStore is the synchronous key/value surface used to carry state
// across restarts. Implementations never fail; at worst they forget.
type SnapshotStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

const snapshotKey = "timer_sessions"

type session struct {
	Phase        Phase         `json:"phase"`
	Meta         Meta          `json:"meta"`
	StartedAt    time.Time     `json:"started_at"`
	Accumulated  time.Duration `json:"accumulated"`
	SegmentStart time.Time     `json:"segment_start"`
}

// elapsed is the total tracked time at now: completed segments plus the
// open one when running.
func (s *session) elapsed(now time.Time) time.Duration {
	if s.Phase == PhaseRunning {
		return s.Accumulated + now.Sub(s.SegmentStart)
	}
	return s.Accumulated
}

// Status is a read-only view of one active session.
type Status struct {
	EntityID       string
	Meta           Meta
	Phase          Phase
	StartedAt      time.Time
	ElapsedSeconds int64
}

// Tracker is the per-entity timer store. Every mutation is a single
// critical section, so interleaved pause/resume calls from multiple UI
// surfaces cannot produce lost updates.
type Tracker struct {
	mu       sync.Mutex
	clk      clock.Clock
	rec      Recorder
	snap     SnapshotStore
	sessions map[string]*session
}

// New builds a Tracker. rec and snap may be nil. If snap holds a snapshot
// from a previous run it is restored: a session that was running keeps
// accruing across the restart, because elapsed time derives from its
// segment start timestamp, not from ticks observed.
func New(clk clock.Clock, rec Recorder, snap SnapshotStore) *Tracker {
	t := &Tracker{
		clk:      clk,
		rec:      rec,
		snap:     snap,
		sessions: make(map[string]*session),
	}
	t.restore()
	return t
}

func (t *Tracker) restore() {
	if t.snap == nil {
		return
	}
	raw, ok := t.snap.Get(snapshotKey)
	if !ok {
		return
	}
	var sessions map[string]*session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		// A corrupt snapshot is discarded; live state wins.
		t.snap.Delete(snapshotKey)
		return
	}
	t.sessions = sessions
}

// save persists the session map. Called with the lock held.
func (t *Tracker) save() {
	if t.snap == nil {
		return
	}
	if len(t.sessions) == 0 {
		t.snap.Delete(snapshotKey)
		return
	}
	raw, err := json.Marshal(t.sessions)
	if err != nil {
		return
	}
	t.snap.Set(snapshotKey, string(raw))
}

// Start begins a fresh session for entityID. A no-op if a session exists
// and is running; any other prior state is discarded, a fresh start is a
// fresh session.
func (t *Tracker) Start(entityID string, meta Meta) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[entityID]; ok && s.Phase == PhaseRunning {
		return
	}
	now := t.clk.Now()
	t.sessions[entityID] = &session{
		Phase:        PhaseRunning,
		Meta:         meta,
		StartedAt:    now,
		SegmentStart: now,
	}
	t.save()
}

// Pause closes the open segment and banks its duration. A no-op unless
// the entity is running. The closed segment is handed to the recorder.
func (t *Tracker) Pause(entityID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[entityID]
	if !ok || s.Phase != PhaseRunning {
		return
	}
	now := t.clk.Now()
	t.emit(entityID, s, s.SegmentStart, now)
	s.Accumulated += now.Sub(s.SegmentStart)
	s.SegmentStart = time.Time{}
	s.Phase = PhasePaused
	t.save()
}

// Resume opens a new segment. A no-op unless the entity is paused.
func (t *Tracker) Resume(entityID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[entityID]
	if !ok || s.Phase != PhasePaused {
		return
	}
	s.SegmentStart = t.clk.Now()
	s.Phase = PhaseRunning
	t.save()
}

// Stop ends the session and returns the total elapsed seconds across all
// of its segments. If the entity was running, the final open segment goes
// to the recorder; segments closed by earlier pauses were recorded at
// their pause instants. Returns 0 for an entity with no session.
func (t *Tracker) Stop(entityID string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[entityID]
	if !ok {
		return 0
	}
	now := t.clk.Now()
	total := s.elapsed(now)
	if s.Phase == PhaseRunning {
		t.emit(entityID, s, s.SegmentStart, now)
	}
	delete(t.sessions, entityID)
	t.save()
	return roundSeconds(total)
}

// emit hands a completed segment to the recorder. Called with the lock
// held so segments reach the recorder in mutation order.
func (t *Tracker) emit(entityID string, s *session, start, end time.Time) {
	if t.rec == nil {
		return
	}
	t.rec.Record(Segment{
		EntityID: entityID,
		Meta:     s.Meta,
		Start:    start,
		End:      end,
	})
}

// ElapsedSeconds recomputes the entity's total tracked time from the
// current wall clock. Pure read; calling it never mutates anything.
func (t *Tracker) ElapsedSeconds(entityID string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[entityID]
	if !ok {
		return 0
	}
	return roundSeconds(s.elapsed(t.clk.Now()))
}

// Phase reports the entity's current phase.
func (t *Tracker) Phase(entityID string) Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[entityID]
	if !ok {
		return PhaseStopped
	}
	return s.Phase
}

// UnrecordedSeconds sums the time accrued in currently-open segments that
// has not yet been handed to the recorder. Paused sessions contribute
// nothing: their segments were recorded when they were paused. This is the
// live half of the aggregator's dual-source sum; counting banked time here
// as well would double-count it against the durable records.
func (t *Tracker) UnrecordedSeconds() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clk.Now()
	var total time.Duration
	for _, s := range t.sessions {
		if s.Phase == PhaseRunning {
			total += now.Sub(s.SegmentStart)
		}
	}
	return roundSeconds(total)
}

// Statuses lists all active sessions, sorted by entity id.
func (t *Tracker) Statuses() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clk.Now()
	out := make([]Status, 0, len(t.sessions))
	for id, s := range t.sessions {
		out = append(out, Status{
			EntityID:       id,
			Meta:           s.Meta,
			Phase:          s.Phase,
			StartedAt:      s.StartedAt,
			ElapsedSeconds: roundSeconds(s.elapsed(now)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

func roundSeconds(d time.Duration) int64 {
	return int64(math.Round(d.Seconds()))
}
