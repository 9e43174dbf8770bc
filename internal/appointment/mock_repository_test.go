package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

// memRepository is an in-memory Repository for service tests.
type memRepository struct {
	mu           sync.Mutex
	patients     map[uuid.UUID]Patient
	doctors      map[uuid.UUID]Doctor
	staff        map[uuid.UUID]Staff
	appointments map[uuid.UUID]Appointment
	events       []EventLog
	txCount      int
}

func newMemRepository() *memRepository {
	return &memRepository{
		patients:     map[uuid.UUID]Patient{},
		doctors:      map[uuid.UUID]Doctor{},
		staff:        map[uuid.UUID]Staff{},
		appointments: map[uuid.UUID]Appointment{},
	}
}

func (m *memRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (m *memRepository) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (m *memRepository) GetStaffByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, ErrStaffNotFound
	}
	return &s, nil
}

func (m *memRepository) ListDoctors(_ context.Context) ([]Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memRepository) UpdateDoctorWorkHours(_ context.Context, id uuid.UUID, encoded string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return ErrDoctorNotFound
	}
	d.WorkHours, _ = workhours.Decode(encoded)
	m.doctors[id] = d
	return nil
}

func (m *memRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (m *memRepository) GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return m.GetAppointmentByID(ctx, id)
}

func (m *memRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	a, err := m.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &AppointmentDetail{Appointment: *a}
	detail.Patient, _ = m.GetPatientByID(ctx, a.PatientID)
	detail.Doctor, _ = m.GetDoctorByID(ctx, a.DoctorID)
	return detail, nil
}

func (m *memRepository) filter(keep func(Appointment) bool) []Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Appointment{}
	for _, a := range m.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func (m *memRepository) ListByDoctorBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	return m.filter(func(a Appointment) bool {
		return a.DoctorID == doctorID && !a.Start.Before(from) && a.Start.Before(to)
	}), nil
}

func (m *memRepository) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	all := m.filter(func(a Appointment) bool { return a.PatientID == patientID })
	sort.Slice(all, func(i, j int) bool { return all[i].Start.After(all[j].Start) })
	return page(all, limit, offset), nil
}

func (m *memRepository) ListUpcomingByDoctor(_ context.Context, doctorID uuid.UUID, now time.Time, limit int) ([]Appointment, error) {
	all := m.filter(func(a Appointment) bool {
		return a.DoctorID == doctorID && !a.Start.Before(now) && !a.IsCancelled()
	})
	return page(all, limit, 0), nil
}

func (m *memRepository) ListUpcomingByPatient(_ context.Context, patientID uuid.UUID, now time.Time, limit int) ([]Appointment, error) {
	all := m.filter(func(a Appointment) bool {
		return a.PatientID == patientID && !a.Start.Before(now) && a.IsActive()
	})
	return page(all, limit, 0), nil
}

func (m *memRepository) CreateAppointment(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.appointments[a.ID] = *a
	return nil
}

func (m *memRepository) UpdateAppointment(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.appointments[a.ID]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.Status = stored.Status
	a.CreatorID = stored.CreatorID
	a.CreatedAt = stored.CreatedAt
	m.appointments[a.ID] = *a
	return nil
}

func (m *memRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, status Status, now time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = status
	a.Touch(now)
	m.appointments[id] = a
	return &a, nil
}

func (m *memRepository) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appointments, id)
	return nil
}

func (m *memRepository) InsertEvent(_ context.Context, ev EventLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memRepository) InTx(_ context.Context, fn func(tx Repository) error) error {
	m.mu.Lock()
	m.txCount++
	m.mu.Unlock()
	return fn(m)
}

func (m *memRepository) eventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.EventType)
	}
	return out
}

func page(all []Appointment, limit, offset int) []Appointment {
	if offset >= len(all) {
		return []Appointment{}
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all
}

// memLocker serializes per doctor with in-process mutexes. busy makes
// every acquisition fail the way a held Redis key does.
type memLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
	calls int
	busy  bool
}

func newMemLocker() *memLocker {
	return &memLocker{locks: map[uuid.UUID]*sync.Mutex{}}
}

func (l *memLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	l.calls++
	if l.busy {
		l.mu.Unlock()
		return redisclient.ErrLockNotAcquired
	}
	lock, ok := l.locks[doctorID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[doctorID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}
