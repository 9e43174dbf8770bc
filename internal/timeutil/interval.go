package timeutil

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a half-open [Start, End) span.
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrInvalidInterval, start.Format(time.DateTime), end.Format(time.DateTime))
	}
	return Interval{Start: start, End: end}, nil
}

// IntervalOf builds the interval covering minutes starting at start.
func IntervalOf(start time.Time, minutes int) (Interval, error) {
	if minutes <= 0 {
		return Interval{}, fmt.Errorf("%w: duration must be positive, got %d minutes", ErrInvalidInterval, minutes)
	}
	return Interval{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}, nil
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// Overlaps reports whether [startA, endA) and [startB, endB) share an
// interior point. Intervals that only touch at an endpoint do not overlap.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// GenerateSlots returns start, start+step, ... up to and including end when
// end lands on a step boundary.
func GenerateSlots(start, end TimeOfDay, stepMinutes int) []TimeOfDay {
	if stepMinutes <= 0 || start > end {
		return nil
	}

	slots := make([]TimeOfDay, 0, int(end-start)/stepMinutes+1)
	for t := start; t <= end; t = t.Add(stepMinutes) {
		slots = append(slots, t)
	}
	return slots
}

// FirstDayOfWeek returns the Monday on or before d.
func FirstDayOfWeek(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// LastDayOfWeek returns the Sunday on or after d.
func LastDayOfWeek(d Date) Date {
	return FirstDayOfWeek(d).AddDays(6)
}

// DaysBetween counts the days from a to b, both included.
func DaysBetween(a, b Date) int {
	return int(b.Time().Sub(a.Time()).Hours()/24) + 1
}
