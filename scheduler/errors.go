package scheduler

import (
	"errors"
	"fmt"

	"github.com/meddesk/clinic-booking/models"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrSlotNotFound        = errors.New("availability slot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrScheduleBusy means the per-doctor booking lock could not be taken;
	// the caller should retry.
	ErrScheduleBusy = errors.New("schedule is busy, please retry")
)

// ValidationError is a caller-facing rejection: the request violates a stated
// rule (bad date range, outside working hours, in break window, bad id).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError means the requested window is taken. When possible it carries
// the next free start on the same day, or a hint to try the following day.
type ConflictError struct {
	Reason         string
	SuggestedTime  *models.TimeOfDay
	SuggestNextDay bool
}

func (e *ConflictError) Error() string { return e.Reason }
