package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

// AppointmentService is what the HTTP layer needs from the booking service.
type AppointmentService interface {
	Book(ctx context.Context, req appointment.BookingRequest) (*appointment.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, req appointment.UpdateRequest) (*appointment.Appointment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status appointment.Status) (*appointment.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, byPatient bool) (*appointment.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error)
	ListByDoctorOnDate(ctx context.Context, doctorID uuid.UUID, date timeutil.Date) ([]appointment.Appointment, error)
	ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to timeutil.Date) ([]appointment.Appointment, error)
	AvailableDoctors(ctx context.Context, at time.Time, minutes int) ([]appointment.Doctor, error)
	DaysWithAppointments(ctx context.Context, doctorID uuid.UUID, year int, month time.Month) ([]timeutil.Date, error)
	UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, limit int) ([]appointment.Appointment, error)
	UpcomingForPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]appointment.Appointment, error)
	CheckConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date timeutil.Date, stepMinutes int) ([]timeutil.TimeOfDay, error)
	WeekPlanning(ctx context.Context, doctorID uuid.UUID, anyDate timeutil.Date) (appointment.Week, error)
	CountForDay(ctx context.Context, doctorID uuid.UUID, date timeutil.Date) (int, error)
	SetWorkingHours(ctx context.Context, doctorID uuid.UUID, text string) (workhours.Model, error)
}

type RouterConfig struct {
	Service AppointmentService
	Health  *HealthHandler
	Logger  *zap.Logger
	Layouts timeutil.Layouts
	Clock   timeutil.Clock
	// DefaultDuration fills in bookings that omit duration_minutes.
	DefaultDuration int
	RateLimitRPS    int
	CORSOrigins     []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.SystemClock{}
	}
	if cfg.Layouts == (timeutil.Layouts{}) {
		cfg.Layouts = timeutil.DefaultLayouts
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 30
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRPS, time.Second))
	}
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	// Health endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}

	h := &handlers{
		svc:             cfg.Service,
		layouts:         cfg.Layouts,
		clock:           cfg.Clock,
		defaultDuration: cfg.DefaultDuration,
		log:             cfg.Logger,
	}

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", h.createAppointment)
		r.Get("/", h.listAppointments)
		r.Post("/check", h.checkConflict)
		r.Get("/{id}", h.getAppointment)
		r.Put("/{id}", h.updateAppointment)
		r.Delete("/{id}", h.deleteAppointment)
		r.Post("/{id}/status", h.setStatus)
		r.Post("/{id}/cancel", h.cancelAppointment)
	})

	r.Get("/doctors/available", h.availableDoctors)
	r.Route("/doctors/{id}", func(r chi.Router) {
		r.Get("/availability", h.availability)
		r.Get("/calendar", h.calendar)
		r.Get("/planning", h.planning)
		r.Get("/appointments", h.doctorAppointments)
		r.Get("/count", h.countForDay)
		r.Get("/upcoming", h.doctorUpcoming)
		r.Put("/work-hours", h.setWorkHours)
	})

	r.Get("/patients/{id}/upcoming", h.patientUpcoming)

	return r
}
