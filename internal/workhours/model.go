// Package workhours models the weekly hours during which a doctor can be
// booked, and the compact text encoding stored on doctor records.
package workhours

import (
	"time"

	"github.com/hackgods/clinic-scheduling/internal/timeutil"
)

// Range is one bookable opening on a weekday. Open must be before Close;
// the model itself does not enforce it.
type Range struct {
	Open  timeutil.TimeOfDay
	Close timeutil.TimeOfDay
}

func (r Range) Valid() bool {
	return r.Open < r.Close
}

func (r Range) String() string {
	return r.Open.String() + "-" + r.Close.String()
}

// Model maps a weekday to its ordered ranges. A missing weekday means the
// doctor does not work that day.
type Model map[time.Weekday][]Range

// RangesFor returns the ranges for weekday, or nil when the doctor is off.
func (m Model) RangesFor(weekday time.Weekday) []Range {
	if m == nil {
		return nil
	}
	return m[weekday]
}

// Set replaces the ranges of weekday. An empty list removes the day.
func (m Model) Set(weekday time.Weekday, ranges ...Range) {
	if len(ranges) == 0 {
		delete(m, weekday)
		return
	}
	m[weekday] = append([]Range(nil), ranges...)
}

// WorksOn reports whether at least one range is defined for weekday.
func (m Model) WorksOn(weekday time.Weekday) bool {
	return len(m.RangesFor(weekday)) > 0
}

func (m Model) String() string {
	return Encode(m)
}
