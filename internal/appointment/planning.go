package appointment

import (
	"sort"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/timeutil"
)

const daysPerWeek = 7

// Week maps each of the seven days starting at a week start to that day's
// appointments ordered by start time.
type Week map[timeutil.Date][]Appointment

// Days returns the week's dates in calendar order.
func (w Week) Days() []timeutil.Date {
	days := make([]timeutil.Date, 0, len(w))
	for d := range w {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// GroupByDay buckets appointments into the seven days starting at
// weekStart. Every day is present, empty or not; appointments outside the
// week are left out. The input slice is not modified.
func GroupByDay(appointments []Appointment, weekStart timeutil.Date) Week {
	week := make(Week, daysPerWeek)
	for i := 0; i < daysPerWeek; i++ {
		week[weekStart.AddDays(i)] = []Appointment{}
	}

	for _, a := range appointments {
		day := a.Date()
		if _, ok := week[day]; !ok {
			continue
		}
		week[day] = append(week[day], a)
	}

	for _, list := range week {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Start.Before(list[j].Start)
		})
	}

	return week
}

// CountFor counts doctorID's appointments on date that are not cancelled.
// It matches the rule the store uses for its own counts.
func CountFor(doctorID uuid.UUID, date timeutil.Date, appointments []Appointment) int {
	n := 0
	for _, a := range appointments {
		if a.DoctorID == doctorID && a.Date() == date && !a.Status.IsCancelled() {
			n++
		}
	}
	return n
}
