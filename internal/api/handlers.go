package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/timeutil"
	"github.com/hackgods/clinic-scheduling/internal/workhours"
)

type handlers struct {
	svc             AppointmentService
	layouts         timeutil.Layouts
	clock           timeutil.Clock
	defaultDuration int
	log             *zap.Logger
}

func (h *handlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start, err := h.layouts.ParseDateTime(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start", err.Error())
		return
	}

	duration := h.defaultDuration
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	appt, err := h.svc.Book(r.Context(), appointment.BookingRequest{
		PatientID:       uuid.MustParse(req.PatientID),
		DoctorID:        uuid.MustParse(req.DoctorID),
		CreatorID:       uuid.MustParse(req.CreatorID),
		Start:           start,
		DurationMinutes: duration,
		Kind:            req.Kind,
		Notes:           req.Notes,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
}

func (h *handlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.URL.Query().Get("patient_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
		return
	}

	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}

	list, err := h.svc.ListByPatient(r.Context(), patientID, limit, offset)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, AppointmentListResponse{
		Items:  toAppointmentResponses(list),
		Limit:  limit,
		Offset: offset,
	})
}

func (h *handlers) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid_appointment_id")
	if !ok {
		return
	}

	detail, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

func (h *handlers) updateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid_appointment_id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	update := appointment.UpdateRequest{
		DurationMinutes: req.DurationMinutes,
		Kind:            req.Kind,
		Notes:           req.Notes,
	}
	if req.PatientID != nil {
		pid := uuid.MustParse(*req.PatientID)
		update.PatientID = &pid
	}
	if req.DoctorID != nil {
		did := uuid.MustParse(*req.DoctorID)
		update.DoctorID = &did
	}
	if req.Start != nil {
		start, err := h.layouts.ParseDateTime(*req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start", err.Error())
			return
		}
		update.Start = &start
	}

	appt, err := h.svc.Reschedule(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
}

func (h *handlers) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid_appointment_id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid_appointment_id")
	if !ok {
		return
	}

	var req StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Unknown text is rejected here rather than falling back to Scheduled.
	status, known := appointment.FromLabel(req.Status)
	if !known {
		writeError(w, http.StatusBadRequest, "invalid_status", "unknown status "+strconv.Quote(req.Status))
		return
	}

	appt, err := h.svc.SetStatus(r.Context(), id, status)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
}

func (h *handlers) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid_appointment_id")
	if !ok {
		return
	}

	var req CancelRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	appt, err := h.svc.Cancel(r.Context(), id, req.ByPatient)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
}

func (h *handlers) checkConflict(w http.ResponseWriter, r *http.Request) {
	var req CheckConflictRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start, err := h.layouts.ParseDateTime(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start", err.Error())
		return
	}

	excludeID := uuid.Nil
	if req.ExcludeID != "" {
		excludeID = uuid.MustParse(req.ExcludeID)
	}

	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	conflict, err := h.svc.CheckConflict(r.Context(), uuid.MustParse(req.DoctorID), start, end, excludeID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, ConflictCheckResponse{Conflict: conflict})
}

func (h *handlers) availability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "invalid_doctor_id")
	if !ok {
		return
	}
	date, ok := h.queryDate(w, r, "date", false)
	if !ok {
		return
	}
	step, ok := queryInt(w, r, "step", 0)
	if !ok {
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), doctorID, date, step)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := AvailabilityResponse{
		DoctorID:    doctorID,
		Date:        date.String(),
		StepMinutes: step,
		Slots:       make([]string, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, s.String())
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) planning(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "invalid_doctor_id")
	if !ok {
		return
	}
	anyDate, ok := h.queryDate(w, r, "week", true)
	if !ok {
		return
	}

	week, err := h.svc.WeekPlanning(r.Context(), doctorID, anyDate)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := PlanningResponse{
		DoctorID:  doctorID,
		WeekStart: timeutil.FirstDayOfWeek(anyDate).String(),
		WeekEnd:   timeutil.LastDayOfWeek(anyDate).String(),
		Days:      make([]PlanningDay, 0, len(week)),
	}
	for _, day := range week.Days() {
		resp.Days = append(resp.Days, PlanningDay{
			Date:         day.String(),
			Weekday:      workhours.DayName(day.Weekday()),
			Appointments: toAppointmentResponses(week[day]),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// doctorAppointments serves either one day (?date=) or an inclusive range
// of days (?from=&to=).
func (h *handlers) doctorAppointments(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "invalid_doctor_id")
	if !ok {
		return
	}

	var (
		list []appointment.Appointment
		err  error
	)
	if r.URL.Query().Has("from") || r.URL.Query().Has("to") {
		from, ok := h.queryDate(w, r, "from", false)
		if !ok {
			return
		}
		to, ok := h.queryDate(w, r, "to", false)
		if !ok {
			return
		}
		list, err = h.svc.ListByDoctorBetween(r.Context(), doctorID, from, to)
	} else {
		date, ok := h.queryDate(w, r, "date", false)
		if !ok {
			return
		}
		list, err = h.svc.ListByDoctorOnDate(r.Context(), doctorID, date)
	}
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, AppointmentListResponse{Items: toAppointmentResponses(list)})
}

func (h *handlers) availableDoctors(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "invalid_at", "at is required")
		return
	}
	at, err := h.layouts.ParseDateTime(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_at", err.Error())
		return
	}
	duration, ok := queryInt(w, r, "duration", h.defaultDuration)
	if !ok {
		return
	}

	doctors, err := h.svc.AvailableDoctors(r.Context(), at, duration)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	items := make([]DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		items = append(items, toDoctorResponse(d))
	}
	writeJSON(w, http.StatusOK, DoctorListResponse{At: formatWire(at), DurationMinutes: duration, Items: items})
}

// calendar marks the days of ?month=YYYY-MM (default: current month) on
// which the doctor has appointments.
func (h *handlers) calendar(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "invalid_doctor_id")
	if !ok {
		return
	}

	month := h.clock.Now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse(monthLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_month", "month must look like 2006-01")
			return
		}
		month = parsed
	}

	days, err := h.svc.DaysWithAppointments(r.Context(), doctorID, month.Year(), month.Month())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	writeJSON(w, http.StatusOK, CalendarResponse{DoctorID: doctorID, Month: month.Format(monthLayout), Days: out})
}

func (h *handlers) countForDay(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "invalid_doctor_id")
	if !ok {
		return
	}
	date, ok := h.queryDate(w, r, "date", false)
	if !ok {
		return
	}

	n, err := h.svc.CountForDay(r.Context(), doctorID, date)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{DoctorID: doctorID, Date: date.String(), Count: n})
}

func (h *handlers) doctorUpcoming(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "invalid_doctor_id")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	list, err := h.svc.UpcomingForDoctor(r.Context(), doctorID, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, AppointmentListResponse{Items: toAppointmentResponses(list), Limit: limit})
}

func (h *handlers) patientUpcoming(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathID(w, r, "invalid_patient_id")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 0)
	if !ok {
		return
	}

	list, err := h.svc.UpcomingForPatient(r.Context(), patientID, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, AppointmentListResponse{Items: toAppointmentResponses(list), Limit: limit})
}

func (h *handlers) setWorkHours(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "invalid_doctor_id")
	if !ok {
		return
	}

	var req WorkHoursRequest
	if !decodeBody(w, r, &req) {
		return
	}

	model, err := h.svc.SetWorkingHours(r.Context(), doctorID, req.WorkHours)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	days := make(map[string][]string, len(model))
	for weekday, ranges := range model {
		names := make([]string, 0, len(ranges))
		for _, rg := range ranges {
			names = append(names, rg.String())
		}
		days[workhours.DayName(weekday)] = names
	}

	writeJSON(w, http.StatusOK, WorkHoursResponse{
		DoctorID:  doctorID,
		WorkHours: workhours.Encode(model),
		Days:      days,
	})
}

func pathID(w http.ResponseWriter, r *http.Request, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, code, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// queryDate parses a date query parameter. When optional and missing, it
// defaults to today.
func (h *handlers) queryDate(w http.ResponseWriter, r *http.Request, name string, optional bool) (timeutil.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if optional {
			return timeutil.DateOf(h.clock.Now()), true
		}
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" is required")
		return timeutil.Date{}, false
	}

	d, err := h.layouts.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, err.Error())
		return timeutil.Date{}, false
	}
	return d, true
}
