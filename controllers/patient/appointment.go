package patient

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
	"github.com/meddesk/clinic-booking/scheduler"
	"github.com/meddesk/clinic-booking/utils"
)

var validate = validator.New()

type BookingInput struct {
	DoctorID  uint   `json:"doctor_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time"` // accepted but ignored: duration is fixed
	Reason    string `json:"reason"`
}

// BookAppointment books a visit with a doctor. The start time is snapped to
// the 30-minute grid and the visit always lasts one slot, whatever end time
// the client sent. On a conflict the response carries the next free time.
func BookAppointment(c *fiber.Ctx) error {
	patientID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	input := new(BookingInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid request",
			Error:   err.Error(),
		})
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date format. Please use YYYY-MM-DD.",
		})
	}
	start, err := models.ParseTimeOfDay(input.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	appointment, err := scheduler.Default.Create(c.Context(), scheduler.CreateRequest{
		DoctorID:  input.DoctorID,
		PatientID: patientID,
		Date:      date,
		StartTime: start,
		Fee:       decimal.Zero, // defaults to the doctor's current fee
		Reason:    input.Reason,
	})
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// CancelAppointment cancels one of the patient's own bookings.
func CancelAppointment(c *fiber.Ctx) error {
	patientID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	appointmentID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment, appointmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}
	if appointment.PatientID != patientID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only cancel your own appointments",
		})
	}

	cancelled, err := scheduler.Default.Cancel(c.Context(), uint(appointmentID))
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Appointment cancelled",
		"appointment": cancelled,
	})
}

// GetMyAppointments lists the patient's bookings, newest first.
func GetMyAppointments(c *fiber.Ctx) error {
	patientID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var appointments []models.Appointment
	query := db.DB.
		Preload("Doctor").
		Where("patient_id = ?", patientID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", models.AppointmentStatus(status))
	}

	if err := query.Order("date desc, start_time desc").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// GetAvailableSlots shows a doctor's open start times for a date.
func GetAvailableSlots(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid doctor ID",
		})
	}

	dateStr := c.Query("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date format. Please use YYYY-MM-DD.",
		})
	}

	slots, err := scheduler.Default.GetAvailableSlots(c.Context(), uint(doctorID), date)
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}

	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.String())
	}

	return c.JSON(fiber.Map{
		"doctor_id": doctorID,
		"date":      date.Format("2006-01-02"),
		"slots":     times,
	})
}

// GetNextAvailableSlot suggests the first open time of a doctor's day.
func GetNextAvailableSlot(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid doctor ID",
		})
	}

	dateStr := c.Query("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date format. Please use YYYY-MM-DD.",
		})
	}

	next, err := scheduler.Default.FindNextAvailableSlot(c.Context(), uint(doctorID), date)
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}
	if next == nil {
		return c.JSON(fiber.Map{
			"doctor_id":        doctorID,
			"date":             date.Format("2006-01-02"),
			"next_slot":        nil,
			"suggest_next_day": true,
		})
	}

	return c.JSON(fiber.Map{
		"doctor_id": doctorID,
		"date":      date.Format("2006-01-02"),
		"next_slot": next.String(),
	})
}
