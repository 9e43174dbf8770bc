package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

// 2026-03-02 is a Monday.
var monday = timeutil.NewDate(2026, time.March, 2)

func tod(h, m int) timeutil.TimeOfDay { return timeutil.NewTimeOfDay(h, m) }

func newAppt(doctorID uuid.UUID, start time.Time, minutes int, status Status) Appointment {
	return Appointment{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		DoctorID:        doctorID,
		CreatorID:       uuid.New(),
		Start:           start,
		DurationMinutes: minutes,
		Kind:            KindStandard,
		Status:          status,
	}
}

func morningDoctor() Doctor {
	return Doctor{
		ID:   uuid.New(),
		Name: "Dr Martin",
		WorkHours: workhours.Model{
			time.Monday: {{Open: tod(9, 0), Close: tod(12, 0)}},
		},
	}
}
