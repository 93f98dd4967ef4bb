package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/timekeep/internal/dayspan"
	"github.com/sadopc/timekeep/internal/record"
	"github.com/sadopc/timekeep/internal/store"
	"github.com/sadopc/timekeep/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewHistory
	viewSettings
)

var viewNames = []string{"Dashboard", "History", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	entityID string
}

type timerStoppedMsg struct {
	entityID string
	seconds  int64
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type dashboardDataMsg struct {
	todayTotal int64
	dailyGoal  int64
	cfg        dayspan.Config
	statuses   []timer.Status
	recent     []record.TimeRecord
}

type historyDataMsg struct {
	records []record.TimeRecord
	cfg     dayspan.Config
}

type settingsDataMsg struct {
	settings []store.Setting
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// tzOffsetMinutes extracts the explicit offset passed to the boundary
// calculator from a local timestamp. The calculator itself never reads
// the ambient zone.
func tzOffsetMinutes(t time.Time) int {
	_, secs := t.Zone()
	return secs / 60
}

// dayLabel names the logical day a timestamp belongs to, relative to now.
func dayLabel(ts, now time.Time, startHour, offsetMinutes int) string {
	switch {
	case dayspan.IsLogicalToday(ts, now, startHour, offsetMinutes):
		return "Today"
	case dayspan.IsLogicalYesterday(ts, now, startHour, offsetMinutes):
		return "Yesterday"
	default:
		return dayspan.LogicalDayStart(ts, startHour, offsetMinutes).Format("Mon, Jan 02")
	}
}
