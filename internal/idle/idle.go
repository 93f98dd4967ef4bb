// Package idle detects global user inactivity. It is independent of any
// entity's timer: going idle only affects presentation, running timers
// keep accruing through idle periods and recompute their elapsed time
// from timestamps when the host wakes back up.
package idle

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sadopc/timekeep/internal/clock"
)

const snapshotKey = "idle_session"

// throttle caps how often activity signals update state, so a burst of
// input events cannot cause a storm of writes.
const throttle = time.Second

// SnapshotStore carries the idle session across restarts. May be nil.
type SnapshotStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

type snapshot struct {
	LastActivity time.Time `json:"last_activity"`
	HiddenAt     time.Time `json:"hidden_at"`
}

// Detector watches activity signals and flips to idle after a configurable
// quiet period. It never pauses any timer itself.
type Detector struct {
	mu           sync.Mutex
	clk          clock.Clock
	timeout      time.Duration
	lastActivity time.Time
	lastSignal   time.Time
	hiddenAt     time.Time // zero while visible
	idle         bool
	onChange     func(bool)
	snap         SnapshotStore
}

// New builds a Detector. If snap holds a previous session whose last
// activity is already older than the timeout, the detector starts idle:
// the user may have been away the whole time the process was down.
func New(clk clock.Clock, timeout time.Duration, snap SnapshotStore) *Detector {
	d := &Detector{
		clk:          clk,
		timeout:      timeout,
		lastActivity: clk.Now(),
		snap:         snap,
	}
	d.restore()
	return d
}

func (d *Detector) restore() {
	if d.snap == nil {
		return
	}
	raw, ok := d.snap.Get(snapshotKey)
	if !ok {
		return
	}
	var s snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		d.snap.Delete(snapshotKey)
		return
	}
	if !s.LastActivity.IsZero() {
		d.lastActivity = s.LastActivity
	}
	if d.clk.Now().Sub(d.lastActivity) >= d.timeout {
		d.idle = true
	}
}

// save persists the session. Called with the lock held.
func (d *Detector) save() {
	if d.snap == nil {
		return
	}
	raw, err := json.Marshal(snapshot{LastActivity: d.lastActivity, HiddenAt: d.hiddenAt})
	if err != nil {
		return
	}
	d.snap.Set(snapshotKey, string(raw))
}

// SetOnChange registers a callback invoked on every idle transition, with
// the new idle state. Invoked while the detector lock is held; keep it
// cheap and do not call back into the detector.
func (d *Detector) SetOnChange(fn func(idle bool)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = fn
}

// SetTimeout changes the inactivity timeout for subsequent evaluation.
func (d *Detector) SetTimeout(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = timeout
}

func (d *Detector) setIdle(idle bool) {
	if d.idle == idle {
		return
	}
	d.idle = idle
	if d.onChange != nil {
		d.onChange(idle)
	}
}

// Touch records a user-activity signal. Signals are throttled to one state
// update per second while active; a signal arriving while idle always goes
// through and ends the idle period.
func (d *Detector) Touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touchLocked(d.clk.Now())
}

func (d *Detector) touchLocked(now time.Time) {
	if !d.idle && now.Sub(d.lastSignal) < throttle {
		return
	}
	d.lastSignal = now
	d.lastActivity = now
	d.setIdle(false)
	d.save()
}

// Hide marks the host as backgrounded. While hidden, no ticks are
// guaranteed to fire, so the hidden instant is remembered and reconciled
// from the wall clock on Show.
func (d *Detector) Hide() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hiddenAt.IsZero() {
		return
	}
	d.hiddenAt = d.clk.Now()
	d.save()
}

// Show marks the host as visible again. If the hidden span already exceeds
// the timeout the detector goes idle immediately, without waiting another
// timeout; otherwise the visibility restore itself counts as activity.
func (d *Detector) Show() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hiddenAt.IsZero() {
		return
	}
	now := d.clk.Now()
	hidden := now.Sub(d.hiddenAt)
	d.hiddenAt = time.Time{}
	if hidden >= d.timeout {
		d.setIdle(true)
		d.save()
		return
	}
	d.touchLocked(now)
}

// Reset forces the detector out of idle and restarts the countdown, e.g.
// when the user clicks a resume affordance.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.clk.Now()
	d.lastSignal = now
	d.lastActivity = now
	d.setIdle(false)
	d.save()
}

// Poll re-evaluates the inactivity window and returns the current idle
// state. The host calls this from its periodic tick; the tick is only a
// trigger, the decision is made from timestamps.
func (d *Detector) Poll() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.idle && d.clk.Now().Sub(d.lastActivity) >= d.timeout {
		d.setIdle(true)
		d.save()
	}
	return d.idle
}

// IsIdle reports the current state without re-evaluating the window.
func (d *Detector) IsIdle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idle
}
