package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/scheduler"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ConflictResponse carries the alternative the slot search computed alongside
// a booking rejection.
type ConflictResponse struct {
	Message        string `json:"message"`
	SuggestedTime  string `json:"suggested_time,omitempty"`
	SuggestNextDay bool   `json:"suggest_next_day,omitempty"`
}

// RenderSchedulingError maps the scheduling core's rejection values onto HTTP
// responses, so controllers never show a generic error page for a business
// rule.
func RenderSchedulingError(c *fiber.Ctx, err error) error {
	var validation *scheduler.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: validation.Reason,
		})
	}

	var conflict *scheduler.ConflictError
	if errors.As(err, &conflict) {
		resp := ConflictResponse{
			Message:        conflict.Reason,
			SuggestNextDay: conflict.SuggestNextDay,
		}
		if conflict.SuggestedTime != nil {
			resp.SuggestedTime = conflict.SuggestedTime.String()
		}
		return c.Status(fiber.StatusConflict).JSON(resp)
	}

	switch {
	case errors.Is(err, scheduler.ErrDoctorNotFound),
		errors.Is(err, scheduler.ErrPatientNotFound),
		errors.Is(err, scheduler.ErrSlotNotFound),
		errors.Is(err, scheduler.ErrAppointmentNotFound),
		errors.Is(err, scheduler.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: "Something went wrong",
		Error:   err.Error(),
	})
}
