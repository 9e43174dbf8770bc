package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/timeutil"
)

// HasConflict reports whether [start, end) overlaps an active appointment of
// doctorID in existing. The appointment with id excludeID is ignored so an
// update can be checked against everything but its own stored interval;
// pass uuid.Nil when booking something new.
//
// Callers normally pass only active appointments. The list is filtered again
// here so a caller that forgets cannot cause a double booking.
func HasConflict(doctorID uuid.UUID, start, end time.Time, existing []Appointment, excludeID uuid.UUID) bool {
	return FindConflict(doctorID, start, end, existing, excludeID) != nil
}

// FindConflict is HasConflict returning the first clashing appointment.
func FindConflict(doctorID uuid.UUID, start, end time.Time, existing []Appointment, excludeID uuid.UUID) *Appointment {
	for i := range existing {
		a := &existing[i]
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		if a.DoctorID != doctorID || !a.Status.IsActive() {
			continue
		}
		if timeutil.Overlaps(start, end, a.Start, a.End()) {
			return a
		}
	}
	return nil
}
