// Package dayspan maps user-configurable day boundaries to concrete time
// windows. A "logical day" does not have to start at midnight: a start hour
// of 10 with an end extension of 3 means the day runs from 10:00 until 03:00
// past the following midnight. Every "is this today / which day does this
// record belong to" decision must route through this package so that all
// views agree on the definition of a day.
//
// All functions take an explicit timezone offset (minutes east of UTC) and
// never consult the ambient process zone, so window edges come out identical
// no matter where the math is evaluated.
package dayspan

import "time"

// Config holds the user-chosen day boundaries.
type Config struct {
	// StartHour is the hour of day (0-23) at which a logical day begins.
	StartHour int
	// EndHourExtension is the number of hours past the *next* midnight
	// that still count as the same day. Zero means the day ends at
	// midnight.
	EndHourExtension int
}

func zone(offsetMinutes int) *time.Location {
	if offsetMinutes == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetMinutes*60)
}

// Window returns the [start, end) interval covered by date's logical day.
//
// The window is deliberately asymmetric: it runs from StartHour on date to
// EndHourExtension hours past the next midnight, not a fixed 24 hours from
// StartHour. With {StartHour: 10, EndHourExtension: 3} the window for
// March 10 is [Mar 10 10:00, Mar 11 03:00). The start edge is inclusive,
// the end edge exclusive.
func Window(date time.Time, cfg Config, offsetMinutes int) (start, end time.Time) {
	loc := zone(offsetMinutes)
	y, m, d := date.In(loc).Date()
	start = time.Date(y, m, d, cfg.StartHour, 0, 0, 0, loc)
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	end = midnight.Add(time.Duration(cfg.EndHourExtension) * time.Hour)
	return start, end
}

// Contains reports whether ts falls inside [start, end).
func Contains(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}

// LogicalDayStart returns the calendar date (midnight, in the given zone)
// of the logical day ts belongs to under the simple midnight+startHour rule
// used for history grouping. A timestamp before startHour on its calendar
// date belongs to the previous date's logical day.
func LogicalDayStart(ts time.Time, startHour, offsetMinutes int) time.Time {
	loc := zone(offsetMinutes)
	local := ts.In(loc)
	y, m, d := local.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if local.Sub(day) < time.Duration(startHour)*time.Hour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// IsLogicalToday reports whether ts falls in the same logical day as now.
func IsLogicalToday(ts, now time.Time, startHour, offsetMinutes int) bool {
	return LogicalDayStart(ts, startHour, offsetMinutes).
		Equal(LogicalDayStart(now, startHour, offsetMinutes))
}

// IsLogicalYesterday reports whether ts falls in the logical day
// immediately before now's.
func IsLogicalYesterday(ts, now time.Time, startHour, offsetMinutes int) bool {
	yesterday := LogicalDayStart(now, startHour, offsetMinutes).AddDate(0, 0, -1)
	return LogicalDayStart(ts, startHour, offsetMinutes).Equal(yesterday)
}
