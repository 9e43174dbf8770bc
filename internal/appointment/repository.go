package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrStaffNotFound       = errors.New("staff member not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	UpdateDoctorWorkHours(ctx context.Context, id uuid.UUID, encoded string) error

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// GetAppointmentForUpdate locks the row for the rest of the transaction.
	GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)

	// Appointments of a doctor starting in [from, to), any status, ordered by start.
	ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListUpcomingByDoctor(ctx context.Context, doctorID uuid.UUID, now time.Time, limit int) ([]Appointment, error)
	ListUpcomingByPatient(ctx context.Context, patientID uuid.UUID, now time.Time, limit int) ([]Appointment, error)

	// Creation and updates. UpdateAppointment never touches status.
	CreateAppointment(ctx context.Context, a *Appointment) error
	UpdateAppointment(ctx context.Context, a *Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status Status, now time.Time) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error

	// InTx runs fn against a repository bound to a single transaction that
	// is committed when fn returns nil.
	InTx(ctx context.Context, fn func(tx Repository) error) error
}
