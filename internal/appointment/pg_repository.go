package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool *pgxpool.Pool
	q    querier
	log  *zap.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *zap.Logger) *PgRepository {
	return &PgRepository{pool: pool, q: pool, log: log}
}

const appointmentColumns = `id, patient_id, doctor_id, creator_id, start_at, duration_minutes, kind, status, notes, created_at, updated_at`

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func (r *PgRepository) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialty *string
	var hours string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&specialty,
		&hours,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	model, skipped := workhours.Decode(hours)
	for _, s := range skipped {
		r.log.Warn("skipping malformed working hours segment",
			zap.String("doctor_id", d.ID.String()),
			zap.String("segment", s.Segment),
			zap.String("reason", s.Reason),
		)
	}

	d.Specialty = specialty
	d.WorkHours = model
	return &d, nil
}

func (r *PgRepository) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.CreatorID,
		&a.Start,
		&a.DurationMinutes,
		&a.Kind,
		&status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	s, ok := FromLabel(status)
	if !ok {
		r.log.Warn("unrecognized appointment status, treating as scheduled",
			zap.String("appointment_id", a.ID.String()),
			zap.String("status", status),
		)
	}
	a.Status = s

	return &a, nil
}

func (r *PgRepository) collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// mapWriteErr turns the constraint and isolation failures that guard the
// no-overlap rule into service errors.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return &ConflictError{}
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", ErrDoctorBusy, pgErr.Message)
		}
	}
	return err
}

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, name, specialty, work_hours, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return r.scanDoctor(row)
}

// ListDoctors returns every doctor ordered by name.
func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, specialty, work_hours, created_at, updated_at
		FROM doctors
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := []Doctor{}
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *PgRepository) GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	var s Staff
	var role string

	err := r.q.QueryRow(ctx, `
		SELECT id, name, role, created_at
		FROM staff
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &role, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	s.Role = Role(role)
	return &s, nil
}

func (r *PgRepository) UpdateDoctorWorkHours(ctx context.Context, id uuid.UUID, encoded string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE doctors
		SET work_hours = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, encoded)
	if err != nil {
		return fmt.Errorf("update work hours: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return r.scanAppointment(row)
}

// GetAppointmentForUpdate reads the row and holds its lock until the
// surrounding transaction ends. Outside a transaction it behaves like
// GetAppointmentByID.
func (r *PgRepository) GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id)
	return r.scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := r.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &AppointmentDetail{Appointment: *appt}

	patient, err := r.GetPatientByID(ctx, appt.PatientID)
	if err != nil && !errors.Is(err, ErrPatientNotFound) {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	detail.Patient = patient

	doctor, err := r.GetDoctorByID(ctx, appt.DoctorID)
	if err != nil && !errors.Is(err, ErrDoctorNotFound) {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	detail.Doctor = doctor

	return detail, nil
}

func (r *PgRepository) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND start_at >= $2
		  AND start_at < $3
		ORDER BY start_at
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	return r.collectAppointments(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_at DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return r.collectAppointments(rows)
}

func (r *PgRepository) ListUpcomingByDoctor(ctx context.Context, doctorID uuid.UUID, now time.Time, limit int) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND start_at >= $2
		  AND status NOT IN ('CANCELLED_BY_PATIENT', 'CANCELLED_BY_CLINIC')
		ORDER BY start_at
		LIMIT $3
	`, doctorID, now, limit)
	if err != nil {
		return nil, err
	}
	return r.collectAppointments(rows)
}

func (r *PgRepository) ListUpcomingByPatient(ctx context.Context, patientID uuid.UUID, now time.Time, limit int) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND start_at >= $2
		  AND status IN ('SCHEDULED', 'CONFIRMED')
		ORDER BY start_at
		LIMIT $3
	`, patientID, now, limit)
	if err != nil {
		return nil, err
	}
	return r.collectAppointments(rows)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	row := r.q.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, creator_id, start_at, duration_minutes, end_at,
		                          kind, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+appointmentColumns+`
	`, a.ID, a.PatientID, a.DoctorID, a.CreatorID, a.Start, a.DurationMinutes, a.End(),
		a.Kind, string(a.Status), a.Notes, a.CreatedAt, a.UpdatedAt)

	created, err := r.scanAppointment(row)
	if err != nil {
		return mapWriteErr(err)
	}
	*a = *created
	return nil
}

// UpdateAppointment rewrites the scheduling fields of a. Status is left
// alone; it only changes through UpdateAppointmentStatus.
func (r *PgRepository) UpdateAppointment(ctx context.Context, a *Appointment) error {
	row := r.q.QueryRow(ctx, `
		UPDATE appointments
		SET patient_id = $2,
		    doctor_id = $3,
		    start_at = $4,
		    duration_minutes = $5,
		    end_at = $6,
		    kind = $7,
		    notes = $8,
		    updated_at = $9
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, a.ID, a.PatientID, a.DoctorID, a.Start, a.DurationMinutes, a.End(),
		a.Kind, a.Notes, a.UpdatedAt)

	updated, err := r.scanAppointment(row)
	if err != nil {
		return mapWriteErr(err)
	}
	*a = *updated
	return nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status Status, now time.Time) (*Appointment, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, string(status), now)

	a, err := r.scanAppointment(row)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return a, nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4::timestamp, now()::timestamp))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func (r *PgRepository) InTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.pool == nil {
		// Already bound to a transaction.
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&PgRepository{q: tx, log: r.log}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapWriteErr(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
