package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

// Consultation kinds offered by the clinic. Kind is free text, these are the
// labels the front desk picks from.
const (
	KindStandard   = "standard"
	KindFirstVisit = "first visit"
	KindUrgent     = "urgent"
	KindFollowUp   = "follow-up"
	KindCheckUp    = "check-up"
)

var Kinds = []string{KindStandard, KindFirstVisit, KindUrgent, KindFollowUp, KindCheckUp}

type Role string

const (
	RoleDoctor    Role = "doctor"
	RoleSecretary Role = "secretary"
)

// Capabilities is what a staff role may do. Enforcement belongs to the
// authorization layer in front of the service.
type Capabilities struct {
	CanBook          bool
	CanManageDoctors bool
	CanAddPatients   bool
	CanExportPlans   bool
	CanViewOwnPlan   bool
}

func (r Role) Capabilities() Capabilities {
	switch r {
	case RoleSecretary:
		return Capabilities{CanBook: true, CanManageDoctors: true, CanAddPatients: true, CanExportPlans: true}
	case RoleDoctor:
		return Capabilities{CanViewOwnPlan: true, CanExportPlans: true}
	default:
		return Capabilities{}
	}
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	WorkHours workhours.Model
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Staff is a clinic user who can be recorded as the creator of a booking.
type Staff struct {
	ID        uuid.UUID
	Name      string
	Role      Role
	CreatedAt time.Time
}

type Appointment struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	CreatorID       uuid.UUID
	Start           time.Time
	DurationMinutes int
	Kind            string
	Status          Status
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// End is Start plus the duration.
func (a Appointment) End() time.Time {
	return a.Start.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

func (a Appointment) Interval() timeutil.Interval {
	return timeutil.Interval{Start: a.Start, End: a.End()}
}

func (a Appointment) Date() timeutil.Date {
	return timeutil.DateOf(a.Start)
}

func (a Appointment) IsActive() bool    { return a.Status.IsActive() }
func (a Appointment) IsCancelled() bool { return a.Status.IsCancelled() }
func (a Appointment) IsCompleted() bool { return a.Status.IsCompleted() }

// Touch refreshes UpdatedAt; every mutation goes through it.
func (a *Appointment) Touch(now time.Time) {
	a.UpdatedAt = now
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

type AppointmentDetail struct {
	Appointment
	Patient *Patient
	Doctor  *Doctor
}
