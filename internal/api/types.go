package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
)

// Naive wall clock times go over the wire without a zone.
const wireDateTime = "2006-01-02T15:04:05"

const monthLayout = "2006-01"

type CreateAppointmentRequest struct {
	PatientID       string `json:"patient_id" validate:"required,uuid"`
	DoctorID        string `json:"doctor_id" validate:"required,uuid"`
	CreatorID       string `json:"creator_id" validate:"required,uuid"`
	Start           string `json:"start" validate:"required"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitnil,min=1,max=1440"`
	Kind            string `json:"kind" validate:"omitempty,max=64"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateAppointmentRequest struct {
	PatientID       *string `json:"patient_id" validate:"omitempty,uuid"`
	DoctorID        *string `json:"doctor_id" validate:"omitempty,uuid"`
	Start           *string `json:"start" validate:"omitempty,min=1"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitnil,min=1,max=1440"`
	Kind            *string `json:"kind" validate:"omitempty,max=64"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

// StatusRequest accepts a status code (CONFIRMED) or its label (Confirmed).
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CancelRequest struct {
	ByPatient bool `json:"by_patient"`
}

type CheckConflictRequest struct {
	DoctorID        string `json:"doctor_id" validate:"required,uuid"`
	Start           string `json:"start" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1,max=1440"`
	ExcludeID       string `json:"exclude_id" validate:"omitempty,uuid"`
}

type WorkHoursRequest struct {
	WorkHours string `json:"work_hours" validate:"required"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	CreatorID       uuid.UUID `json:"creator_id"`
	Start           string    `json:"start"`
	End             string    `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	Kind            string    `json:"kind"`
	Status          string    `json:"status"`
	StatusLabel     string    `json:"status_label"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       string    `json:"created_at"`
	UpdatedAt       string    `json:"updated_at"`
}

type PatientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
	WorkHours string    `json:"work_hours"`
}

type DoctorListResponse struct {
	At              string           `json:"at"`
	DurationMinutes int              `json:"duration_minutes"`
	Items           []DoctorResponse `json:"items"`
}

type CalendarResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Month    string    `json:"month"`
	Days     []string  `json:"days"`
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	Patient *PatientResponse `json:"patient,omitempty"`
	Doctor  *DoctorResponse  `json:"doctor,omitempty"`
}

type AppointmentListResponse struct {
	Items  []AppointmentResponse `json:"items"`
	Limit  int                   `json:"limit,omitempty"`
	Offset int                   `json:"offset,omitempty"`
}

type AvailabilityResponse struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	Date        string    `json:"date"`
	StepMinutes int       `json:"step_minutes,omitempty"`
	Slots       []string  `json:"slots"`
}

type PlanningDay struct {
	Date         string                `json:"date"`
	Weekday      string                `json:"weekday"`
	Appointments []AppointmentResponse `json:"appointments"`
}

type PlanningResponse struct {
	DoctorID  uuid.UUID     `json:"doctor_id"`
	WeekStart string        `json:"week_start"`
	WeekEnd   string        `json:"week_end"`
	Days      []PlanningDay `json:"days"`
}

type CountResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Count    int       `json:"count"`
}

type ConflictCheckResponse struct {
	Conflict bool `json:"conflict"`
}

type WorkHoursResponse struct {
	DoctorID  uuid.UUID           `json:"doctor_id"`
	WorkHours string              `json:"work_hours"`
	Days      map[string][]string `json:"days"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func formatWire(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(wireDateTime)
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		CreatorID:       a.CreatorID,
		Start:           formatWire(a.Start),
		End:             formatWire(a.End()),
		DurationMinutes: a.DurationMinutes,
		Kind:            a.Kind,
		Status:          string(a.Status),
		StatusLabel:     a.Status.Label(),
		Notes:           a.Notes,
		CreatedAt:       formatWire(a.CreatedAt),
		UpdatedAt:       formatWire(a.UpdatedAt),
	}
}

func toAppointmentResponses(list []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func toDetailResponse(d *appointment.AppointmentDetail) AppointmentDetailResponse {
	resp := AppointmentDetailResponse{AppointmentResponse: toAppointmentResponse(d.Appointment)}
	if d.Patient != nil {
		resp.Patient = &PatientResponse{ID: d.Patient.ID, Name: d.Patient.Name, Email: d.Patient.Email}
	}
	if d.Doctor != nil {
		doctor := toDoctorResponse(*d.Doctor)
		resp.Doctor = &doctor
	}
	return resp
}

func toDoctorResponse(d appointment.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		WorkHours: d.WorkHours.String(),
	}
}
