package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/timeutil"
)

// AvailableSlots lists the start times on date at which a stepMinutes long
// appointment with doctor would fit inside working hours without clashing
// with existing. Slots come out in range order, chronological within a
// range. Overlapping ranges may yield duplicates; they are not removed.
//
// A slot t is returned iff HasConflict(doctor.ID, t, t+step, existing,
// uuid.Nil) is false.
func AvailableSlots(doctor Doctor, date timeutil.Date, existing []Appointment, stepMinutes int) ([]timeutil.TimeOfDay, error) {
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("%w: slot step must be positive, got %d", timeutil.ErrInvalidInterval, stepMinutes)
	}

	ranges := doctor.WorkHours.RangesFor(date.Weekday())
	if len(ranges) == 0 {
		return []timeutil.TimeOfDay{}, nil
	}

	step := time.Duration(stepMinutes) * time.Minute
	slots := make([]timeutil.TimeOfDay, 0)

	for _, r := range ranges {
		if !r.Valid() {
			continue
		}
		for _, t := range timeutil.GenerateSlots(r.Open, r.Close, stepMinutes) {
			// The whole slot must fit before the range closes.
			if t.Add(stepMinutes) > r.Close {
				break
			}
			start := date.At(t)
			if HasConflict(doctor.ID, start, start.Add(step), existing, uuid.Nil) {
				continue
			}
			slots = append(slots, t)
		}
	}

	return slots, nil
}
