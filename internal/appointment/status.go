package appointment

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusScheduled          Status = "SCHEDULED"
	StatusConfirmed          Status = "CONFIRMED"
	StatusCancelledByPatient Status = "CANCELLED_BY_PATIENT"
	StatusCancelledByClinic  Status = "CANCELLED_BY_CLINIC"
	StatusCompleted          Status = "COMPLETED"
	StatusNoShow             Status = "NO_SHOW"
)

var Statuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusCancelledByPatient,
	StatusCancelledByClinic,
	StatusCompleted,
	StatusNoShow,
}

var statusLabels = map[Status]string{
	StatusScheduled:          "Scheduled",
	StatusConfirmed:          "Confirmed",
	StatusCancelledByPatient: "Cancelled by patient",
	StatusCancelledByClinic:  "Cancelled by clinic",
	StatusCompleted:          "Completed",
	StatusNoShow:             "No show",
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsActive: the appointment occupies the calendar and takes part in
// conflict checks.
func (s Status) IsActive() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

func (s Status) IsCancelled() bool {
	return s == StatusCancelledByPatient || s == StatusCancelledByClinic
}

// IsCompleted: the appointment already happened (or the patient did not come).
func (s Status) IsCompleted() bool {
	return s == StatusCompleted || s == StatusNoShow
}

func IsActive(s Status) bool    { return s.IsActive() }
func IsCancelled(s Status) bool { return s.IsCancelled() }
func IsCompleted(s Status) bool { return s.IsCompleted() }

// FromLabel matches text against status labels and codes, ignoring case.
// Unrecognized text yields StatusScheduled with ok == false; callers are
// expected to log that fallback.
func FromLabel(text string) (status Status, ok bool) {
	text = strings.TrimSpace(text)
	for _, s := range Statuses {
		if strings.EqualFold(text, statusLabels[s]) || strings.EqualFold(text, string(s)) {
			return s, true
		}
	}
	return StatusScheduled, false
}

// TransitionGuard decides whether a status change is allowed.
type TransitionGuard func(from, to Status) error

// AllowAnyTransition is the default: any status may follow any other.
func AllowAnyTransition(from, to Status) error {
	return nil
}

// TransitionTable lists, per status, the statuses it may move to. Statuses
// absent from the table may move anywhere.
type TransitionTable map[Status][]Status

func (t TransitionTable) Guard() TransitionGuard {
	return func(from, to Status) error {
		allowed, ok := t[from]
		if !ok || from == to {
			return nil
		}
		for _, s := range allowed {
			if s == to {
				return nil
			}
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
	}
}
