package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/timekeep/internal/clock"
	"github.com/sadopc/timekeep/internal/dayspan"
	"github.com/sadopc/timekeep/internal/idle"
	"github.com/sadopc/timekeep/internal/localstore"
	"github.com/sadopc/timekeep/internal/record"
	"github.com/sadopc/timekeep/internal/store"
	"github.com/sadopc/timekeep/internal/timer"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type testEnv struct {
	store   *store.Store
	tracker *timer.Tracker
	det     *idle.Detector
	clk     *clock.Fake
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	s := newTestStore(t)
	clk := clock.NewFake(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	rec := record.NewRecorder(s, nil)
	t.Cleanup(func() { rec.Close() })
	tracker := timer.New(clk, rec, localstore.Memory())
	det := idle.New(clk, 5*time.Minute, localstore.Memory())
	return testEnv{store: s, tracker: tracker, det: det, clk: clk}
}

func newTestApp(t *testing.T) App {
	t.Helper()
	env := newTestEnv(t)
	agg := record.NewAggregator(env.store, env.tracker)
	a := NewApp(env.store, env.tracker, agg, env.det, env.clk)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(App)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// Formatting helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Minute, "00:01:00"},
		{90 * time.Minute, "01:30:00"},
		{25*time.Hour + 6*time.Minute + 7*time.Second, "25:06:07"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(3661); got != "01:01:01" {
		t.Errorf("formatSeconds(3661) = %q, want 01:01:01", got)
	}
}

func TestDayLabel(t *testing.T) {
	// Day starts at 04:00. At 12:00 on March 10, a 02:00 timestamp on
	// March 10 still belongs to March 9, so it is labelled Yesterday.
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"same afternoon", time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), "Today"},
		{"early morning belongs to yesterday", time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC), "Yesterday"},
		{"previous evening", time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), "Yesterday"},
		{"two days back", time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC), "Fri, Mar 08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dayLabel(tt.ts, now, 4, 0); got != tt.want {
				t.Errorf("dayLabel(%v) = %q, want %q", tt.ts, got, tt.want)
			}
		})
	}
}

func TestTzOffsetMinutes(t *testing.T) {
	zone := time.FixedZone("", 2*3600)
	ts := time.Date(2024, 3, 10, 12, 0, 0, 0, zone)
	if got := tzOffsetMinutes(ts); got != 120 {
		t.Errorf("tzOffsetMinutes = %d, want 120", got)
	}
	if got := tzOffsetMinutes(ts.UTC()); got != 0 {
		t.Errorf("tzOffsetMinutes(UTC) = %d, want 0", got)
	}
}

// ============================================================
// View switching
// ============================================================

func TestTabSwitchesViews(t *testing.T) {
	a := newTestApp(t)

	if a.activeView != viewDashboard {
		t.Fatal("should start on dashboard")
	}

	m, _ := a.Update(keyMsg("2"))
	a = m.(App)
	if a.activeView != viewHistory {
		t.Errorf("after '2' activeView = %v, want history", a.activeView)
	}

	m, _ = a.Update(keyMsg("3"))
	a = m.(App)
	if a.activeView != viewSettings {
		t.Errorf("after '3' activeView = %v, want settings", a.activeView)
	}

	m, _ = a.Update(keyMsg("1"))
	a = m.(App)
	if a.activeView != viewDashboard {
		t.Errorf("after '1' activeView = %v, want dashboard", a.activeView)
	}
}

func TestTabCycles(t *testing.T) {
	a := newTestApp(t)

	views := []viewState{viewHistory, viewSettings, viewDashboard}
	for _, want := range views {
		m, _ := a.Update(keyMsg("tab"))
		a = m.(App)
		if a.activeView != want {
			t.Fatalf("activeView = %v, want %v", a.activeView, want)
		}
	}
}

func TestQuitKey(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("expected tea.Quit, got %v", msg)
	}
}

// ============================================================
// Idle signal wiring
// ============================================================

func TestKeypressCountsAsActivity(t *testing.T) {
	env := newTestEnv(t)
	agg := record.NewAggregator(env.store, env.tracker)
	a := NewApp(env.store, env.tracker, agg, env.det, env.clk)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	a = m.(App)

	// Sit just short of the timeout, then press a key. The next poll
	// must not flip idle because the keypress reset the countdown.
	env.clk.Advance(4 * time.Minute)
	m, _ = a.Update(keyMsg("2"))
	a = m.(App)

	env.clk.Advance(2 * time.Minute)
	if env.det.Poll() {
		t.Error("keypress should have reset the idle countdown")
	}
}

func TestBlurThenLongFocusFlipsIdle(t *testing.T) {
	env := newTestEnv(t)
	agg := record.NewAggregator(env.store, env.tracker)
	a := NewApp(env.store, env.tracker, agg, env.det, env.clk)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	a = m.(App)

	m, _ = a.Update(tea.BlurMsg{})
	a = m.(App)

	env.clk.Advance(10 * time.Minute)
	m, _ = a.Update(tea.FocusMsg{})
	a = m.(App)

	if !env.det.IsIdle() {
		t.Error("long hidden span should flip idle on focus")
	}
}

func TestShortBlurIsActivity(t *testing.T) {
	env := newTestEnv(t)
	agg := record.NewAggregator(env.store, env.tracker)
	a := NewApp(env.store, env.tracker, agg, env.det, env.clk)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	a = m.(App)

	m, _ = a.Update(tea.BlurMsg{})
	a = m.(App)

	env.clk.Advance(time.Minute)
	m, _ = a.Update(tea.FocusMsg{})
	a = m.(App)

	if env.det.IsIdle() {
		t.Error("short hidden span should not flip idle")
	}
}

// ============================================================
// Export picker
// ============================================================

func TestExportPickerOpensAndCancels(t *testing.T) {
	a := newTestApp(t)

	m, _ := a.Update(keyMsg("e"))
	a = m.(App)
	if !a.exportPicking {
		t.Fatal("'e' should open the export picker")
	}

	m, _ = a.Update(keyMsg("esc"))
	a = m.(App)
	if a.exportPicking {
		t.Error("esc should close the export picker")
	}
}

func TestExportPickerCursor(t *testing.T) {
	a := newTestApp(t)

	m, _ := a.Update(keyMsg("e"))
	a = m.(App)

	m, _ = a.Update(keyMsg("j"))
	a = m.(App)
	if a.exportCursor != 1 {
		t.Errorf("cursor = %d, want 1", a.exportCursor)
	}

	// Does not run past the last entry
	m, _ = a.Update(keyMsg("j"))
	a = m.(App)
	if a.exportCursor != 1 {
		t.Errorf("cursor = %d, want 1", a.exportCursor)
	}

	m, _ = a.Update(keyMsg("k"))
	a = m.(App)
	if a.exportCursor != 0 {
		t.Errorf("cursor = %d, want 0", a.exportCursor)
	}
}

// ============================================================
// Dashboard
// ============================================================

func TestDashboardStopSelected(t *testing.T) {
	env := newTestEnv(t)
	agg := record.NewAggregator(env.store, env.tracker)
	d := newDashboardModel(env.store, env.tracker, agg, env.det, env.clk)

	env.tracker.Start("writing", timer.Meta{EntityLabel: "writing"})
	env.clk.Advance(90 * time.Second)

	msg := d.loadData()()
	d, _ = d.update(msg)
	if len(d.statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(d.statuses))
	}

	d, cmd := d.stopSelected()
	if cmd == nil {
		t.Fatal("stop should produce a command")
	}
	if got := env.tracker.Phase("writing"); got != timer.PhaseStopped {
		t.Errorf("phase after stop = %v, want stopped", got)
	}
}

func TestDashboardToggleSelected(t *testing.T) {
	env := newTestEnv(t)
	agg := record.NewAggregator(env.store, env.tracker)
	d := newDashboardModel(env.store, env.tracker, agg, env.det, env.clk)

	env.tracker.Start("writing", timer.Meta{EntityLabel: "writing"})
	msg := d.loadData()()
	d, _ = d.update(msg)

	d, _ = d.toggleSelected()
	if got := env.tracker.Phase("writing"); got != timer.PhasePaused {
		t.Errorf("phase after toggle = %v, want paused", got)
	}

	d, _ = d.toggleSelected()
	if got := env.tracker.Phase("writing"); got != timer.PhaseRunning {
		t.Errorf("phase after second toggle = %v, want running", got)
	}
}

func TestDashboardTodayTotal(t *testing.T) {
	env := newTestEnv(t)
	agg := record.NewAggregator(env.store, env.tracker)
	d := newDashboardModel(env.store, env.tracker, agg, env.det, env.clk)

	env.tracker.Start("writing", timer.Meta{EntityLabel: "writing"})
	env.clk.Advance(600 * time.Second)

	msg := d.loadData()()
	data, ok := msg.(dashboardDataMsg)
	if !ok {
		t.Fatalf("unexpected msg type %T", msg)
	}
	if data.todayTotal != 600 {
		t.Errorf("todayTotal = %d, want 600 (live open segment)", data.todayTotal)
	}
}

// ============================================================
// History
// ============================================================

func TestHistoryDayTotals(t *testing.T) {
	env := newTestEnv(t)
	h := newHistoryModel(env.store, env.clk)
	h.setSize(100, 40)

	base := env.clk.Now()
	mustCreate := func(r record.TimeRecord) {
		t.Helper()
		if err := env.store.CreateRecord(r); err != nil {
			t.Fatal(err)
		}
	}
	mustCreate(record.TimeRecord{
		ID: "r1", EntityLabel: "a",
		StartTime: base.Add(-2 * time.Hour), EndTime: base.Add(-time.Hour),
		DurationSeconds: 3600, CreatedAt: base,
	})
	mustCreate(record.TimeRecord{
		ID: "r2", EntityLabel: "b",
		StartTime: base.Add(-90 * time.Minute), EndTime: base.Add(-time.Hour),
		DurationSeconds: 1800, CreatedAt: base,
	})
	mustCreate(record.TimeRecord{
		ID: "r3", EntityLabel: "c",
		StartTime: base.AddDate(0, 0, -1), EndTime: base.AddDate(0, 0, -1).Add(time.Hour),
		DurationSeconds: 3600, CreatedAt: base,
	})

	msg := h.refresh()()
	h, _ = h.update(msg)

	totals := h.dayTotals()
	off := tzOffsetMinutes(env.clk.Now().Local())
	today := dayspan.LogicalDayStart(base, 0, off).Format("2006-01-02")
	yesterday := dayspan.LogicalDayStart(base.AddDate(0, 0, -1), 0, off).Format("2006-01-02")

	if totals[today] != 5400 {
		t.Errorf("today total = %d, want 5400", totals[today])
	}
	if totals[yesterday] != 3600 {
		t.Errorf("yesterday total = %d, want 3600", totals[yesterday])
	}
}

func TestHistoryNavigation(t *testing.T) {
	env := newTestEnv(t)
	h := newHistoryModel(env.store, env.clk)
	h.setSize(100, 40)

	h, _ = h.update(keyMsg("h"))
	if h.offset != 1 {
		t.Errorf("offset = %d, want 1 after navigating back", h.offset)
	}

	h, _ = h.update(keyMsg("l"))
	h, _ = h.update(keyMsg("l"))
	if h.offset != 0 {
		t.Errorf("offset = %d, want 0 (cannot navigate past today)", h.offset)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsFormatValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"idle_timeout", "300", "5 min"},
		{"daily_goal", "28800", "8.0 hours"},
		{"day_start_hour", "4", "04:00"},
		{"day_end_extension", "3", "+3h past midnight"},
		{"unknown", "raw", "raw"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestSettingsConversions(t *testing.T) {
	if got := minToSecs("5"); got != "300" {
		t.Errorf("minToSecs(5) = %q, want 300", got)
	}
	if got := hoursToSecs("1.5"); got != "5400" {
		t.Errorf("hoursToSecs(1.5) = %q, want 5400", got)
	}
	if got := secsToHours("5400"); got != "1.5" {
		t.Errorf("secsToHours(5400) = %q, want 1.5", got)
	}
}

func TestSettingsSaveAppliesIdleTimeout(t *testing.T) {
	env := newTestEnv(t)
	s := newSettingsModel(env.store, env.det)

	*s.dayStartHour = "4"
	*s.dayEndExtension = "3"
	*s.idleTimeout = "10"
	*s.dailyGoal = "6"
	s.saveSettings()

	cfg := env.store.BoundaryConfig()
	if cfg.StartHour != 4 || cfg.EndHourExtension != 3 {
		t.Errorf("boundary config = %+v, want {4 3}", cfg)
	}
	if got := env.store.IdleTimeout(); got != 10*time.Minute {
		t.Errorf("idle timeout = %v, want 10m", got)
	}
	if got := env.store.DailyGoal(); got != 21600 {
		t.Errorf("daily goal = %d, want 21600", got)
	}

	// The new timeout takes effect without a restart.
	env.clk.Advance(7 * time.Minute)
	if env.det.Poll() {
		t.Error("detector should use the new 10m timeout")
	}
	env.clk.Advance(4 * time.Minute)
	if !env.det.Poll() {
		t.Error("detector should flip idle past the new timeout")
	}
}
