package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/events"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

// Longest appointment accepted. It bounds how far back the conflict check
// has to look for appointments still running at a given start.
const maxDurationMinutes = 24 * 60

const lookback = time.Duration(maxDurationMinutes) * time.Minute

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxRangeDays     = 366
)

var (
	ErrConflict                = errors.New("time slot unavailable")
	ErrDoctorBusy              = errors.New("doctor calendar is being updated, please retry")
	ErrInvalidAppointment      = errors.New("invalid appointment")
	ErrStartInPast             = errors.New("appointment start is in the past")
	ErrInvalidStatus           = errors.New("unknown appointment status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// ConflictError is returned when a write would overlap an active
// appointment of the same doctor. With is uuid.Nil when the clash was
// caught by the database constraint rather than by the service.
type ConflictError struct {
	With  uuid.UUID
	Start time.Time
	End   time.Time
}

func (e *ConflictError) Error() string {
	if e.With == uuid.Nil {
		return ErrConflict.Error()
	}
	return fmt.Sprintf("%s: overlaps appointment %s (%s - %s)",
		ErrConflict, e.With, e.Start.Format("2006-01-02 15:04"), e.End.Format("15:04"))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

type Service struct {
	repo      Repository
	locker    redisclient.Locker
	publisher events.Publisher
	clock     timeutil.Clock
	guard     TransitionGuard
	cfg       config.Config
	log       *zap.Logger
}

type Option func(*Service)

func WithClock(c timeutil.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithTransitionGuard(g TransitionGuard) Option {
	return func(s *Service) { s.guard = g }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(repo Repository, locker redisclient.Locker, cfg config.Config, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		locker:    locker,
		publisher: events.NopPublisher{},
		clock:     timeutil.SystemClock{},
		guard:     AllowAnyTransition,
		cfg:       cfg,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type BookingRequest struct {
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	CreatorID       uuid.UUID
	Start           time.Time
	DurationMinutes int
	Kind            string
	Notes           string
}

// UpdateRequest carries the fields to change; nil means keep.
type UpdateRequest struct {
	PatientID       *uuid.UUID
	DoctorID        *uuid.UUID
	Start           *time.Time
	DurationMinutes *int
	Kind            *string
	Notes           *string
}

// Book creates a scheduled appointment. The overlap check and the insert
// run under the doctor's lock inside one transaction.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	now := s.clock.Now()

	if req.Kind == "" {
		req.Kind = KindStandard
	}

	appt := &Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		CreatorID:       req.CreatorID,
		Start:           timeutil.Naive(req.Start),
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Status:          StatusScheduled,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := validateAppointment(appt); err != nil {
		return nil, err
	}
	if appt.Start.Before(now) {
		return nil, ErrStartInPast
	}

	if err := s.checkReferences(ctx, appt.PatientID, appt.DoctorID, appt.CreatorID); err != nil {
		return nil, err
	}

	err := s.withDoctorLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		return s.repo.InTx(lockCtx, func(tx Repository) error {
			if err := checkFree(lockCtx, tx, appt.DoctorID, appt.Start, appt.End(), uuid.Nil); err != nil {
				return err
			}
			if err := tx.CreateAppointment(lockCtx, appt); err != nil {
				return fmt.Errorf("create appointment: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, appt, events.TypeAppointmentCreated, map[string]any{
		"patient_id":       appt.PatientID.String(),
		"creator_id":       appt.CreatorID.String(),
		"start":            appt.Start,
		"duration_minutes": appt.DurationMinutes,
		"kind":             appt.Kind,
	})

	return appt, nil
}

// Reschedule changes an appointment's details. When the result still
// occupies the calendar it is re-checked against every other appointment
// of its doctor. Status is never written here, so a cancellation that lands
// first is kept.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Appointment, error) {
	if req.PatientID != nil {
		if _, err := s.repo.GetPatientByID(ctx, *req.PatientID); err != nil {
			return nil, wrapLookup("load patient", err, ErrPatientNotFound)
		}
	}
	if req.DoctorID != nil {
		if _, err := s.repo.GetDoctorByID(ctx, *req.DoctorID); err != nil {
			return nil, wrapLookup("load doctor", err, ErrDoctorNotFound)
		}
	}

	now := s.clock.Now()

	before, after, err := s.modify(ctx, id, func(current *Appointment) (*edit, error) {
		updated := *current

		if req.PatientID != nil {
			updated.PatientID = *req.PatientID
		}
		if req.DoctorID != nil {
			updated.DoctorID = *req.DoctorID
		}
		if req.Start != nil {
			updated.Start = timeutil.Naive(*req.Start)
		}
		if req.DurationMinutes != nil {
			updated.DurationMinutes = *req.DurationMinutes
		}
		if req.Kind != nil {
			updated.Kind = *req.Kind
		}
		if req.Notes != nil {
			updated.Notes = *req.Notes
		}
		updated.Touch(now)

		if err := validateAppointment(&updated); err != nil {
			return nil, err
		}
		if !updated.Start.Equal(current.Start) && updated.Start.Before(now) {
			return nil, ErrStartInPast
		}

		return &edit{
			result:   &updated,
			occupies: updated.IsActive(),
			write: func(ctx context.Context, tx Repository) error {
				if err := tx.UpdateAppointment(ctx, &updated); err != nil {
					return fmt.Errorf("update appointment: %w", err)
				}
				return nil
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, after, events.TypeAppointmentRescheduled, map[string]any{
		"from_start":            before.Start,
		"to_start":              after.Start,
		"from_duration_minutes": before.DurationMinutes,
		"to_duration_minutes":   after.DurationMinutes,
		"from_doctor_id":        before.DoctorID.String(),
	})

	return after, nil
}

// SetStatus moves an appointment to status. Bringing a cancelled or closed
// appointment back into the calendar goes through the same locked overlap
// check as a new booking.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	now := s.clock.Now()

	before, after, err := s.modify(ctx, id, func(current *Appointment) (*edit, error) {
		if err := s.guard(current.Status, status); err != nil {
			return nil, err
		}

		updated := *current
		updated.Status = status
		updated.Touch(now)

		return &edit{
			result:   &updated,
			occupies: !current.IsActive() && status.IsActive(),
			write: func(ctx context.Context, tx Repository) error {
				a, err := tx.UpdateAppointmentStatus(ctx, id, status, now)
				if err != nil {
					return fmt.Errorf("update appointment status: %w", err)
				}
				updated = *a
				return nil
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, after, events.TypeAppointmentStatusChanged, map[string]any{
		"from": string(before.Status),
		"to":   string(after.Status),
	})

	return after, nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.SetStatus(ctx, id, StatusConfirmed)
}

// Cancel marks the appointment cancelled by the patient or by the clinic.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, byPatient bool) (*Appointment, error) {
	status := StatusCancelledByClinic
	if byPatient {
		status = StatusCancelledByPatient
	}
	return s.SetStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.logEvent(ctx, appt, events.TypeAppointmentDeleted, map[string]any{
		"status": string(appt.Status),
		"start":  appt.Start,
	})
	return nil
}

// Get retrieves a fully hydrated appointment by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return detail, nil
}

// ListByPatient pages through a patient's appointments, most recent first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	limit = normalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

// ListByDoctorOnDate returns every appointment of the doctor starting on
// date, whatever its status.
func (s *Service) ListByDoctorOnDate(ctx context.Context, doctorID uuid.UUID, date timeutil.Date) ([]Appointment, error) {
	appointments, err := s.repo.ListByDoctorBetween(ctx, doctorID, date.Time(), date.AddDays(1).Time())
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appointments, nil
}

// ListByDoctorBetween returns the doctor's appointments starting on any day
// from from to to inclusive, whatever their status.
func (s *Service) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to timeutil.Date) ([]Appointment, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range ends before it starts", timeutil.ErrInvalidInterval)
	}
	if timeutil.DaysBetween(from, to) > maxRangeDays {
		return nil, fmt.Errorf("%w: range longer than %d days", timeutil.ErrInvalidInterval, maxRangeDays)
	}

	appointments, err := s.repo.ListByDoctorBetween(ctx, doctorID, from.Time(), to.AddDays(1).Time())
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appointments, nil
}

// AvailableDoctors lists the doctors whose working hours cover
// [at, at+minutes) and who have no active appointment overlapping it.
func (s *Service) AvailableDoctors(ctx context.Context, at time.Time, minutes int) ([]Doctor, error) {
	at = timeutil.Naive(at)
	slot, err := timeutil.IntervalOf(at, minutes)
	if err != nil {
		return nil, err
	}

	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	available := []Doctor{}
	for _, d := range doctors {
		if !worksDuring(d, slot) {
			continue
		}

		existing, err := s.repo.ListByDoctorBetween(ctx, d.ID, slot.Start.Add(-lookback), slot.End)
		if err != nil {
			return nil, fmt.Errorf("load doctor appointments: %w", err)
		}
		if HasConflict(d.ID, slot.Start, slot.End, existing, uuid.Nil) {
			continue
		}
		available = append(available, d)
	}
	return available, nil
}

// worksDuring reports whether one of the doctor's ranges on the slot's day
// contains the whole slot.
func worksDuring(d Doctor, slot timeutil.Interval) bool {
	day := timeutil.DateOf(slot.Start)
	for _, r := range d.WorkHours.RangesFor(day.Weekday()) {
		if !r.Valid() {
			continue
		}
		if !slot.Start.Before(day.At(r.Open)) && !slot.End.After(day.At(r.Close)) {
			return true
		}
	}
	return false
}

// DaysWithAppointments returns the days of the month on which the doctor
// has at least one appointment that is not cancelled, in order.
func (s *Service) DaysWithAppointments(ctx context.Context, doctorID uuid.UUID, year int, month time.Month) ([]timeutil.Date, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", timeutil.ErrInvalidInterval, month)
	}

	first := timeutil.NewDate(year, month, 1)
	next := timeutil.NewDate(year, month+1, 1)

	appointments, err := s.repo.ListByDoctorBetween(ctx, doctorID, first.Time(), next.Time())
	if err != nil {
		return nil, fmt.Errorf("load month appointments: %w", err)
	}

	days := []timeutil.Date{}
	for d := first; d.Before(next); d = d.AddDays(1) {
		if CountFor(doctorID, d, appointments) > 0 {
			days = append(days, d)
		}
	}
	return days, nil
}

// UpcomingForDoctor lists the doctor's next appointments that are not
// cancelled.
func (s *Service) UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, limit int) ([]Appointment, error) {
	appointments, err := s.repo.ListUpcomingByDoctor(ctx, doctorID, s.clock.Now(), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list upcoming by doctor: %w", err)
	}
	return appointments, nil
}

// UpcomingForPatient lists the patient's next active appointments.
func (s *Service) UpcomingForPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]Appointment, error) {
	appointments, err := s.repo.ListUpcomingByPatient(ctx, patientID, s.clock.Now(), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list upcoming by patient: %w", err)
	}
	return appointments, nil
}

// CheckConflict reports whether [start, end) clashes with an active
// appointment of the doctor other than excludeID. It takes no lock, so the
// answer is advisory.
func (s *Service) CheckConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	start, end = timeutil.Naive(start), timeutil.Naive(end)
	if !start.Before(end) {
		return false, fmt.Errorf("%w: start must be before end", timeutil.ErrInvalidInterval)
	}

	existing, err := s.repo.ListByDoctorBetween(ctx, doctorID, start.Add(-lookback), end)
	if err != nil {
		return false, fmt.Errorf("load doctor appointments: %w", err)
	}

	return HasConflict(doctorID, start, end, existing, excludeID), nil
}

// AvailableSlots lists free start times for the doctor on date. A zero step
// uses the configured default; slots already in the past are dropped.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date timeutil.Date, stepMinutes int) ([]timeutil.TimeOfDay, error) {
	if stepMinutes == 0 {
		stepMinutes = s.cfg.SlotStepMinutes
	}

	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		return nil, wrapLookup("load doctor", err, ErrDoctorNotFound)
	}

	dayStart := date.Time()
	existing, err := s.repo.ListByDoctorBetween(ctx, doctorID, dayStart.Add(-lookback), date.AddDays(1).Time())
	if err != nil {
		return nil, fmt.Errorf("load doctor appointments: %w", err)
	}

	slots, err := AvailableSlots(*doctor, date, existing, stepMinutes)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	upcoming := slots[:0]
	for _, t := range slots {
		if date.At(t).Before(now) {
			continue
		}
		upcoming = append(upcoming, t)
	}
	return upcoming, nil
}

// WeekPlanning groups the doctor's appointments over the Monday to Sunday
// week containing anyDate.
func (s *Service) WeekPlanning(ctx context.Context, doctorID uuid.UUID, anyDate timeutil.Date) (Week, error) {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		return nil, wrapLookup("load doctor", err, ErrDoctorNotFound)
	}

	weekStart := timeutil.FirstDayOfWeek(anyDate)
	appointments, err := s.repo.ListByDoctorBetween(ctx, doctorID, weekStart.Time(), weekStart.AddDays(daysPerWeek).Time())
	if err != nil {
		return nil, fmt.Errorf("load week appointments: %w", err)
	}

	return GroupByDay(appointments, weekStart), nil
}

// CountForDay counts the doctor's non-cancelled appointments on date.
func (s *Service) CountForDay(ctx context.Context, doctorID uuid.UUID, date timeutil.Date) (int, error) {
	appointments, err := s.ListByDoctorOnDate(ctx, doctorID, date)
	if err != nil {
		return 0, err
	}
	return CountFor(doctorID, date, appointments), nil
}

// SetWorkingHours replaces a doctor's weekly hours. The text must decode
// cleanly; it is stored in canonical form.
func (s *Service) SetWorkingHours(ctx context.Context, doctorID uuid.UUID, text string) (workhours.Model, error) {
	model, err := workhours.DecodeStrict(text)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDoctorWorkHours(ctx, doctorID, workhours.Encode(model)); err != nil {
		return nil, wrapLookup("update work hours", err, ErrDoctorNotFound)
	}

	s.log.Info("doctor working hours updated",
		zap.String("doctor_id", doctorID.String()),
		zap.String("work_hours", model.String()),
	)
	return model, nil
}

// edit is a change planned against one copy of an appointment row.
type edit struct {
	result *Appointment
	// occupies means result must be checked against the doctor's calendar
	// before it is written.
	occupies bool
	write    func(ctx context.Context, tx Repository) error
}

// relockError reports that the fresh row needs a different doctor lock
// than the one modify is holding.
type relockError struct {
	doctorID uuid.UUID
}

func (e *relockError) Error() string {
	return "appointment needs the lock of doctor " + e.doctorID.String()
}

const maxRelocks = 3

// modify applies plan to the appointment inside a transaction holding the
// row lock, so concurrent writers never overwrite each other. plan runs
// once on an unlocked read to decide which doctor lock to take, then again
// on the locked row; only the second result is written. If the locked row
// needs a different lock the whole attempt is retried.
func (s *Service) modify(ctx context.Context, id uuid.UUID, plan func(current *Appointment) (*edit, error)) (before, after *Appointment, err error) {
	current, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load appointment: %w", err)
	}
	guess, err := plan(current)
	if err != nil {
		return nil, nil, err
	}

	lockDoctor := uuid.Nil
	if guess.occupies {
		lockDoctor = guess.result.DoctorID
	}

	for attempt := 0; attempt < maxRelocks; attempt++ {
		run := func(ctx context.Context) error {
			return s.repo.InTx(ctx, func(tx Repository) error {
				fresh, err := tx.GetAppointmentForUpdate(ctx, id)
				if err != nil {
					return fmt.Errorf("load appointment: %w", err)
				}

				e, err := plan(fresh)
				if err != nil {
					return err
				}

				if e.occupies {
					if e.result.DoctorID != lockDoctor {
						return &relockError{doctorID: e.result.DoctorID}
					}
					if err := checkFree(ctx, tx, e.result.DoctorID, e.result.Start, e.result.End(), id); err != nil {
						return err
					}
				}

				if err := e.write(ctx, tx); err != nil {
					return err
				}
				before, after = fresh, e.result
				return nil
			})
		}

		if lockDoctor == uuid.Nil {
			err = run(ctx)
		} else {
			err = s.withDoctorLock(ctx, lockDoctor, run)
		}

		var relock *relockError
		if !errors.As(err, &relock) {
			return before, after, err
		}
		s.log.Debug("appointment changed under us, retrying with doctor lock",
			zap.String("appointment_id", id.String()),
			zap.String("doctor_id", relock.doctorID.String()),
		)
		lockDoctor = relock.doctorID
	}

	return nil, nil, ErrDoctorBusy
}

// withDoctorLock runs fn while holding the doctor's calendar lock.
func (s *Service) withDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	err := s.locker.WithDoctorLock(ctx, doctorID, fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrDoctorBusy
	}
	return err
}

// checkFree re-reads the doctor's calendar through tx and rejects
// [start, end) if it overlaps an active appointment other than excludeID.
func checkFree(ctx context.Context, tx Repository, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) error {
	existing, err := tx.ListByDoctorBetween(ctx, doctorID, start.Add(-lookback), end)
	if err != nil {
		return fmt.Errorf("load doctor appointments: %w", err)
	}

	if c := FindConflict(doctorID, start, end, existing, excludeID); c != nil {
		return &ConflictError{With: c.ID, Start: c.Start, End: c.End()}
	}
	return nil
}

func (s *Service) checkReferences(ctx context.Context, patientID, doctorID, creatorID uuid.UUID) error {
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		return wrapLookup("load patient", err, ErrPatientNotFound)
	}
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		return wrapLookup("load doctor", err, ErrDoctorNotFound)
	}
	if _, err := s.repo.GetStaffByID(ctx, creatorID); err != nil {
		return wrapLookup("load staff", err, ErrStaffNotFound)
	}
	return nil
}

func (s *Service) logEvent(ctx context.Context, appt *Appointment, eventType string, payload map[string]any) {
	now := s.clock.Now()

	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("failed to marshal event payload", zap.String("event", eventType), zap.Error(err))
		data = nil
	}

	apptID := appt.ID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     now,
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Warn("failed to insert event log",
			zap.String("event", eventType),
			zap.String("appointment_id", appt.ID.String()),
			zap.Error(err),
		)
	}

	err = s.publisher.Publish(ctx, events.Event{
		ID:            uuid.New(),
		Type:          eventType,
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		OccurredAt:    now,
		Payload:       payload,
	})
	if err != nil {
		s.log.Warn("failed to publish event",
			zap.String("event", eventType),
			zap.String("appointment_id", appt.ID.String()),
			zap.Error(err),
		)
	}
}

func validateAppointment(a *Appointment) error {
	switch {
	case a.PatientID == uuid.Nil:
		return fmt.Errorf("%w: patient_id is required", ErrInvalidAppointment)
	case a.DoctorID == uuid.Nil:
		return fmt.Errorf("%w: doctor_id is required", ErrInvalidAppointment)
	case a.CreatorID == uuid.Nil:
		return fmt.Errorf("%w: creator_id is required", ErrInvalidAppointment)
	case a.Start.IsZero():
		return fmt.Errorf("%w: start is required", ErrInvalidAppointment)
	case a.DurationMinutes <= 0:
		return fmt.Errorf("%w: %w: duration must be positive, got %d",
			ErrInvalidAppointment, timeutil.ErrInvalidInterval, a.DurationMinutes)
	case a.DurationMinutes > maxDurationMinutes:
		return fmt.Errorf("%w: duration must not exceed %d minutes", ErrInvalidAppointment, maxDurationMinutes)
	}
	return nil
}

// wrapLookup keeps not-found sentinels bare so callers can map them and
// wraps everything else with op.
func wrapLookup(op string, err, notFound error) error {
	if errors.Is(err, notFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
