package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

// stubService overrides only what a test needs; anything else panics.
type stubService struct {
	AppointmentService

	book          func(req appointment.BookingRequest) (*appointment.Appointment, error)
	reschedule    func(id uuid.UUID, req appointment.UpdateRequest) (*appointment.Appointment, error)
	setStatus     func(id uuid.UUID, s appointment.Status) (*appointment.Appointment, error)
	cancel        func(id uuid.UUID, byPatient bool) (*appointment.Appointment, error)
	del           func(id uuid.UUID) error
	get           func(id uuid.UUID) (*appointment.AppointmentDetail, error)
	checkConflict func(doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
	slots         func(doctorID uuid.UUID, date timeutil.Date, step int) ([]timeutil.TimeOfDay, error)
	planning      func(doctorID uuid.UUID, anyDate timeutil.Date) (appointment.Week, error)
	count         func(doctorID uuid.UUID, date timeutil.Date) (int, error)
	workHours     func(doctorID uuid.UUID, text string) (workhours.Model, error)
	listPatient   func(patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error)
	listDoctor    func(doctorID uuid.UUID, date timeutil.Date) ([]appointment.Appointment, error)
	listRange     func(doctorID uuid.UUID, from, to timeutil.Date) ([]appointment.Appointment, error)
	freeDoctors   func(at time.Time, minutes int) ([]appointment.Doctor, error)
	busyDays      func(doctorID uuid.UUID, year int, month time.Month) ([]timeutil.Date, error)
}

func (s *stubService) Book(_ context.Context, req appointment.BookingRequest) (*appointment.Appointment, error) {
	return s.book(req)
}

func (s *stubService) Reschedule(_ context.Context, id uuid.UUID, req appointment.UpdateRequest) (*appointment.Appointment, error) {
	return s.reschedule(id, req)
}

func (s *stubService) SetStatus(_ context.Context, id uuid.UUID, st appointment.Status) (*appointment.Appointment, error) {
	return s.setStatus(id, st)
}

func (s *stubService) Cancel(_ context.Context, id uuid.UUID, byPatient bool) (*appointment.Appointment, error) {
	return s.cancel(id, byPatient)
}

func (s *stubService) Delete(_ context.Context, id uuid.UUID) error { return s.del(id) }

func (s *stubService) Get(_ context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error) {
	return s.get(id)
}

func (s *stubService) CheckConflict(_ context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	return s.checkConflict(doctorID, start, end, excludeID)
}

func (s *stubService) AvailableSlots(_ context.Context, doctorID uuid.UUID, date timeutil.Date, step int) ([]timeutil.TimeOfDay, error) {
	return s.slots(doctorID, date, step)
}

func (s *stubService) WeekPlanning(_ context.Context, doctorID uuid.UUID, anyDate timeutil.Date) (appointment.Week, error) {
	return s.planning(doctorID, anyDate)
}

func (s *stubService) CountForDay(_ context.Context, doctorID uuid.UUID, date timeutil.Date) (int, error) {
	return s.count(doctorID, date)
}

func (s *stubService) SetWorkingHours(_ context.Context, doctorID uuid.UUID, text string) (workhours.Model, error) {
	return s.workHours(doctorID, text)
}

func (s *stubService) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error) {
	return s.listPatient(patientID, limit, offset)
}

func (s *stubService) ListByDoctorOnDate(_ context.Context, doctorID uuid.UUID, date timeutil.Date) ([]appointment.Appointment, error) {
	return s.listDoctor(doctorID, date)
}

func (s *stubService) ListByDoctorBetween(_ context.Context, doctorID uuid.UUID, from, to timeutil.Date) ([]appointment.Appointment, error) {
	return s.listRange(doctorID, from, to)
}

func (s *stubService) AvailableDoctors(_ context.Context, at time.Time, minutes int) ([]appointment.Doctor, error) {
	return s.freeDoctors(at, minutes)
}

func (s *stubService) DaysWithAppointments(_ context.Context, doctorID uuid.UUID, year int, month time.Month) ([]timeutil.Date, error) {
	return s.busyDays(doctorID, year, month)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var monday = timeutil.NewDate(2026, time.March, 2)

func newTestRouter(svc AppointmentService) http.Handler {
	return NewRouter(RouterConfig{
		Service:     svc,
		Health:      NewHealthHandler(fakePinger{}, fakePinger{}, "test", "v0"),
		Logger:      zap.NewNop(),
		Clock:       timeutil.FixedClock{T: monday.At(timeutil.NewTimeOfDay(8, 0))},
		CORSOrigins: []string{"*"},
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleAppointment() *appointment.Appointment {
	return &appointment.Appointment{
		ID:              uuid.New(),
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		CreatorID:       uuid.New(),
		Start:           monday.At(timeutil.NewTimeOfDay(10, 0)),
		DurationMinutes: 30,
		Kind:            appointment.KindStandard,
		Status:          appointment.StatusScheduled,
	}
}

func TestCreateAppointment(t *testing.T) {
	patientID, doctorID, creatorID := uuid.New(), uuid.New(), uuid.New()

	var got appointment.BookingRequest
	svc := &stubService{book: func(req appointment.BookingRequest) (*appointment.Appointment, error) {
		got = req
		a := sampleAppointment()
		a.Start = req.Start
		return a, nil
	}}

	body := fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"creator_id":%q,"start":"02/03/2026 10:00","duration_minutes":45}`,
		patientID, doctorID, creatorID)
	rec := do(t, newTestRouter(svc), http.MethodPost, "/appointments", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, patientID, got.PatientID)
	assert.Equal(t, doctorID, got.DoctorID)
	assert.Equal(t, creatorID, got.CreatorID)
	assert.Equal(t, 45, got.DurationMinutes)
	assert.Equal(t, monday.At(timeutil.NewTimeOfDay(10, 0)), got.Start)

	resp := decode[AppointmentResponse](t, rec)
	assert.Equal(t, "2026-03-02T10:00:00", resp.Start)
	assert.Equal(t, "2026-03-02T10:30:00", resp.End)
	assert.Equal(t, "SCHEDULED", resp.Status)
	assert.Equal(t, "Scheduled", resp.StatusLabel)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateAppointmentDefaultDuration(t *testing.T) {
	var got appointment.BookingRequest
	svc := &stubService{book: func(req appointment.BookingRequest) (*appointment.Appointment, error) {
		got = req
		return sampleAppointment(), nil
	}}
	router := NewRouter(RouterConfig{Service: svc, DefaultDuration: 20})

	id := uuid.NewString()
	body := fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"creator_id":%q,"start":"2026-03-02T10:00"}`, id, id, id)
	rec := do(t, router, http.MethodPost, "/appointments", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 20, got.DurationMinutes)
}

func TestCreateAppointmentBadInput(t *testing.T) {
	svc := &stubService{book: func(appointment.BookingRequest) (*appointment.Appointment, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	router := newTestRouter(svc)
	id := uuid.NewString()

	tests := []struct {
		name string
		body string
		code string
	}{
		{"not json", `{`, "invalid_request_body"},
		{"missing doctor", fmt.Sprintf(`{"patient_id":%q,"creator_id":%q,"start":"2026-03-02T10:00"}`, id, id), "validation_failed"},
		{"bad uuid", fmt.Sprintf(`{"patient_id":"nope","doctor_id":%q,"creator_id":%q,"start":"2026-03-02T10:00"}`, id, id), "validation_failed"},
		{"negative duration", fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"creator_id":%q,"start":"2026-03-02T10:00","duration_minutes":-5}`, id, id, id), "validation_failed"},
		{"zero duration", fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"creator_id":%q,"start":"2026-03-02T10:00","duration_minutes":0}`, id, id, id), "validation_failed"},
		{"bad start", fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"creator_id":%q,"start":"tomorrow"}`, id, id, id), "invalid_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&appointment.ConflictError{With: uuid.New()}, http.StatusConflict, "slot_unavailable"},
		{fmt.Errorf("create appointment: %w", &appointment.ConflictError{}), http.StatusConflict, "slot_unavailable"},
		{appointment.ErrDoctorBusy, http.StatusConflict, "doctor_busy"},
		{appointment.ErrPatientNotFound, http.StatusNotFound, "patient_not_found"},
		{appointment.ErrDoctorNotFound, http.StatusNotFound, "doctor_not_found"},
		{appointment.ErrStaffNotFound, http.StatusNotFound, "staff_not_found"},
		{appointment.ErrStartInPast, http.StatusUnprocessableEntity, "start_in_past"},
		{fmt.Errorf("%w: duration", appointment.ErrInvalidAppointment), http.StatusBadRequest, "invalid_request"},
		{fmt.Errorf("%w: %w", appointment.ErrInvalidAppointment, timeutil.ErrInvalidInterval), http.StatusBadRequest, "invalid_request"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	id := uuid.NewString()
	body := fmt.Sprintf(`{"patient_id":%q,"doctor_id":%q,"creator_id":%q,"start":"2026-03-02T10:00"}`, id, id, id)

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc := &stubService{book: func(appointment.BookingRequest) (*appointment.Appointment, error) {
				return nil, tt.err
			}}
			rec := do(t, newTestRouter(svc), http.MethodPost, "/appointments", body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestGetAppointment(t *testing.T) {
	a := sampleAppointment()
	email := "alice@example.com"
	svc := &stubService{get: func(id uuid.UUID) (*appointment.AppointmentDetail, error) {
		if id != a.ID {
			return nil, appointment.ErrAppointmentNotFound
		}
		return &appointment.AppointmentDetail{
			Appointment: *a,
			Patient:     &appointment.Patient{ID: a.PatientID, Name: "Alice", Email: &email},
			Doctor: &appointment.Doctor{ID: a.DoctorID, Name: "Dr Martin", WorkHours: workhours.Model{
				time.Monday: {{Open: timeutil.NewTimeOfDay(9, 0), Close: timeutil.NewTimeOfDay(12, 0)}},
			}},
		}, nil
	}}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/appointments/"+a.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[AppointmentDetailResponse](t, rec)
	assert.Equal(t, a.ID, resp.ID)
	require.NotNil(t, resp.Patient)
	assert.Equal(t, "Alice", resp.Patient.Name)
	require.NotNil(t, resp.Doctor)
	assert.Equal(t, "monday:09:00-12:00", resp.Doctor.WorkHours)

	rec = do(t, router, http.MethodGet, "/appointments/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/appointments/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAppointment(t *testing.T) {
	a := sampleAppointment()
	var got appointment.UpdateRequest
	svc := &stubService{reschedule: func(id uuid.UUID, req appointment.UpdateRequest) (*appointment.Appointment, error) {
		got = req
		return a, nil
	}}

	rec := do(t, newTestRouter(svc), http.MethodPut, "/appointments/"+a.ID.String(), `{"start":"2026-03-03T11:15","notes":"moved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotNil(t, got.Start)
	assert.Equal(t, monday.AddDays(1).At(timeutil.NewTimeOfDay(11, 15)), *got.Start)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "moved", *got.Notes)
	assert.Nil(t, got.DurationMinutes)
	assert.Nil(t, got.DoctorID)
}

func TestSetStatusAcceptsLabelsAndCodes(t *testing.T) {
	a := sampleAppointment()
	var got []appointment.Status
	svc := &stubService{setStatus: func(id uuid.UUID, s appointment.Status) (*appointment.Appointment, error) {
		got = append(got, s)
		a.Status = s
		return a, nil
	}}
	router := newTestRouter(svc)
	target := "/appointments/" + a.ID.String() + "/status"

	rec := do(t, router, http.MethodPost, target, `{"status":"No show"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, target, `{"status":"CONFIRMED"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Confirmed", decode[AppointmentResponse](t, rec).StatusLabel)

	rec = do(t, router, http.MethodPost, target, `{"status":"Pending"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status", decode[ErrorResponse](t, rec).Error)

	assert.Equal(t, []appointment.Status{appointment.StatusNoShow, appointment.StatusConfirmed}, got)
}

func TestCancelAndDelete(t *testing.T) {
	a := sampleAppointment()
	var byPatient []bool
	deleted := false
	svc := &stubService{
		cancel: func(id uuid.UUID, bp bool) (*appointment.Appointment, error) {
			byPatient = append(byPatient, bp)
			return a, nil
		},
		del: func(id uuid.UUID) error {
			deleted = id == a.ID
			return nil
		},
	}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodPost, "/appointments/"+a.ID.String()+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/appointments/"+a.ID.String()+"/cancel", `{"by_patient":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{false, true}, byPatient)

	rec = do(t, router, http.MethodDelete, "/appointments/"+a.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)
}

func TestCheckConflict(t *testing.T) {
	doctorID := uuid.New()
	excludeID := uuid.New()
	svc := &stubService{checkConflict: func(d uuid.UUID, start, end time.Time, ex uuid.UUID) (bool, error) {
		assert.Equal(t, doctorID, d)
		assert.Equal(t, excludeID, ex)
		assert.Equal(t, 30*time.Minute, end.Sub(start))
		return true, nil
	}}

	body := fmt.Sprintf(`{"doctor_id":%q,"start":"2026-03-02T10:00","duration_minutes":30,"exclude_id":%q}`, doctorID, excludeID)
	rec := do(t, newTestRouter(svc), http.MethodPost, "/appointments/check", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[ConflictCheckResponse](t, rec).Conflict)
}

func TestAvailability(t *testing.T) {
	doctorID := uuid.New()
	svc := &stubService{slots: func(d uuid.UUID, date timeutil.Date, step int) ([]timeutil.TimeOfDay, error) {
		if date != monday {
			return nil, fmt.Errorf("unexpected date %s", date)
		}
		if step < 0 {
			return nil, timeutil.ErrInvalidInterval
		}
		return []timeutil.TimeOfDay{
			timeutil.NewTimeOfDay(9, 0),
			timeutil.NewTimeOfDay(10, 0),
			timeutil.NewTimeOfDay(10, 30),
		}, nil
	}}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/availability?date=2026-03-02&step=30", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[AvailabilityResponse](t, rec)
	assert.Equal(t, "2026-03-02", resp.Date)
	assert.Equal(t, 30, resp.StepMinutes)
	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, resp.Slots)

	// configured display layout works too
	rec = do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/availability?date=02/03/2026", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/availability", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/availability?date=March", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/availability?date=2026-03-02&step=-15", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decode[ErrorResponse](t, rec).Error)
}

func TestPlanning(t *testing.T) {
	doctorID := uuid.New()
	a := sampleAppointment()
	svc := &stubService{planning: func(d uuid.UUID, anyDate timeutil.Date) (appointment.Week, error) {
		return appointment.GroupByDay([]appointment.Appointment{*a}, timeutil.FirstDayOfWeek(anyDate)), nil
	}}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/planning?week=2026-03-05", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[PlanningResponse](t, rec)
	assert.Equal(t, "2026-03-02", resp.WeekStart)
	assert.Equal(t, "2026-03-08", resp.WeekEnd)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, "monday", resp.Days[0].Weekday)
	assert.Len(t, resp.Days[0].Appointments, 1)
	assert.Empty(t, resp.Days[1].Appointments)

	// defaults to the clock's current week
	rec = do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/planning", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-03-02", decode[PlanningResponse](t, rec).WeekStart)
}

func TestCountForDay(t *testing.T) {
	doctorID := uuid.New()
	svc := &stubService{count: func(d uuid.UUID, date timeutil.Date) (int, error) {
		return 4, nil
	}}

	rec := do(t, newTestRouter(svc), http.MethodGet, "/doctors/"+doctorID.String()+"/count?date=2026-03-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[CountResponse](t, rec).Count)
}

func TestSetWorkHours(t *testing.T) {
	doctorID := uuid.New()
	svc := &stubService{workHours: func(d uuid.UUID, text string) (workhours.Model, error) {
		return workhours.DecodeStrict(text)
	}}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodPut, "/doctors/"+doctorID.String()+"/work-hours",
		`{"work_hours":"tuesday:14:00-18:00;monday:09:00-12:30,14:00-18:00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[WorkHoursResponse](t, rec)
	assert.Equal(t, "monday:09:00-12:30,14:00-18:00;tuesday:14:00-18:00", resp.WorkHours)
	assert.Equal(t, []string{"09:00-12:30", "14:00-18:00"}, resp.Days["monday"])

	rec = do(t, router, http.MethodPut, "/doctors/"+doctorID.String()+"/work-hours", `{"work_hours":"monday 9 to 5"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_format", decode[ErrorResponse](t, rec).Error)
}

func TestListAppointments(t *testing.T) {
	patientID := uuid.New()
	svc := &stubService{listPatient: func(p uuid.UUID, limit, offset int) ([]appointment.Appointment, error) {
		assert.Equal(t, patientID, p)
		assert.Equal(t, 5, limit)
		assert.Equal(t, 10, offset)
		return []appointment.Appointment{*sampleAppointment()}, nil
	}}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/appointments?patient_id="+patientID.String()+"&limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[AppointmentListResponse](t, rec).Items, 1)

	rec = do(t, router, http.MethodGet, "/appointments?patient_id="+patientID.String()+"&limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/appointments", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDoctorAppointmentsRange(t *testing.T) {
	doctorID := uuid.New()
	svc := &stubService{
		listRange: func(d uuid.UUID, from, to timeutil.Date) ([]appointment.Appointment, error) {
			assert.Equal(t, doctorID, d)
			assert.Equal(t, monday, from)
			assert.Equal(t, monday.AddDays(6), to)
			return []appointment.Appointment{*sampleAppointment(), *sampleAppointment()}, nil
		},
		listDoctor: func(d uuid.UUID, date timeutil.Date) ([]appointment.Appointment, error) {
			assert.Equal(t, monday, date)
			return []appointment.Appointment{*sampleAppointment()}, nil
		},
	}
	router := newTestRouter(svc)
	base := "/doctors/" + doctorID.String() + "/appointments"

	rec := do(t, router, http.MethodGet, base+"?from=2026-03-02&to=2026-03-08", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[AppointmentListResponse](t, rec).Items, 2)

	rec = do(t, router, http.MethodGet, base+"?date=2026-03-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[AppointmentListResponse](t, rec).Items, 1)

	rec = do(t, router, http.MethodGet, base+"?from=2026-03-02", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_to", decode[ErrorResponse](t, rec).Error)
}

func TestAvailableDoctors(t *testing.T) {
	name := "Dr House"
	doctor := appointment.Doctor{ID: uuid.New(), Name: name}

	svc := &stubService{freeDoctors: func(at time.Time, minutes int) ([]appointment.Doctor, error) {
		assert.Equal(t, monday.At(timeutil.NewTimeOfDay(10, 0)), at)
		assert.Equal(t, 30, minutes)
		return []appointment.Doctor{doctor}, nil
	}}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/doctors/available?at=2026-03-02T10:00", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[DoctorListResponse](t, rec)
	assert.Equal(t, "2026-03-02T10:00:00", resp.At)
	assert.Equal(t, 30, resp.DurationMinutes)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, doctor.ID, resp.Items[0].ID)
	assert.Equal(t, name, resp.Items[0].Name)

	rec = do(t, router, http.MethodGet, "/doctors/available", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_at", decode[ErrorResponse](t, rec).Error)
}

func TestCalendar(t *testing.T) {
	doctorID := uuid.New()
	var gotYear int
	var gotMonth time.Month
	svc := &stubService{busyDays: func(d uuid.UUID, year int, month time.Month) ([]timeutil.Date, error) {
		gotYear, gotMonth = year, month
		return []timeutil.Date{monday, monday.AddDays(2)}, nil
	}}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/calendar?month=2026-04", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2026, gotYear)
	assert.Equal(t, time.April, gotMonth)

	resp := decode[CalendarResponse](t, rec)
	assert.Equal(t, "2026-04", resp.Month)
	assert.Equal(t, []string{"2026-03-02", "2026-03-04"}, resp.Days)

	// defaults to the clock's month
	rec = do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/calendar", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.March, gotMonth)

	rec = do(t, router, http.MethodGet, "/doctors/"+doctorID.String()+"/calendar?month=03-2026", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_month", decode[ErrorResponse](t, rec).Error)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pg, redis  error
		wantCode   int
		wantStatus string
	}{
		{"all up", nil, nil, http.StatusOK, "ok"},
		{"redis down", nil, errors.New("down"), http.StatusOK, "degraded"},
		{"postgres down", errors.New("down"), nil, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterConfig{
				Service: &stubService{},
				Health:  NewHealthHandler(fakePinger{tt.pg}, fakePinger{tt.redis}, "test", "v0"),
			})

			rec := do(t, router, http.MethodGet, "/health/ready", "")
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, decode[ReadinessResponse](t, rec).Status)
		})
	}

	rec := do(t, newTestRouter(&stubService{}), http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[LivenessResponse](t, rec).Status)
}
