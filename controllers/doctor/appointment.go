package doctor

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
	"github.com/meddesk/clinic-booking/scheduler"
	"github.com/meddesk/clinic-booking/utils"
)

// GetUpcomingAppointments returns upcoming appointments for the logged-in doctor
func GetUpcomingAppointments(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	limit := 10
	if c.Query("limit") != "" {
		if parsedLimit := c.QueryInt("limit"); parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	now := time.Now()
	startDate := scheduler.DateOnly(now)
	endDate := startDate.AddDate(0, 1, 0)

	dateFilter := c.Query("filter", "month")
	switch dateFilter {
	case "today":
		endDate = startDate
	case "tomorrow":
		startDate = startDate.AddDate(0, 0, 1)
		endDate = startDate
	case "week":
		endDate = startDate.AddDate(0, 0, 7)
	case "month":
		endDate = startDate.AddDate(0, 1, 0)
	}

	var appointments []models.Appointment
	query := db.DB.
		Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Where("status IN ?", []models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed}).
		Order("date asc, start_time asc")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"count":        len(appointments),
		"filter":       dateFilter,
		"start_date":   startDate.Format("2006-01-02"),
		"end_date":     endDate.Format("2006-01-02"),
	})
}

// GetAppointmentHistory returns past appointments for the logged-in doctor
func GetAppointmentHistory(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	page := 1
	limit := 10
	if c.Query("page") != "" {
		if parsedPage := c.QueryInt("page"); parsedPage > 0 {
			page = parsedPage
		}
	}
	if c.Query("limit") != "" {
		if parsedLimit := c.QueryInt("limit"); parsedLimit > 0 {
			limit = parsedLimit
		}
	}
	offset := (page - 1) * limit

	var statuses []models.AppointmentStatus
	status := c.Query("status")
	switch models.AppointmentStatus(status) {
	case models.StatusCompleted:
		statuses = []models.AppointmentStatus{models.StatusCompleted}
	case models.StatusCancelled:
		statuses = []models.AppointmentStatus{models.StatusCancelled}
	default:
		statuses = []models.AppointmentStatus{models.StatusCompleted, models.StatusCancelled}
	}

	var appointments []models.Appointment
	var total int64

	db.DB.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("status IN ?", statuses).
		Count(&total)

	if err := db.DB.
		Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Where("status IN ?", statuses).
		Order("date desc, start_time desc").
		Offset(offset).
		Limit(limit).
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"total":        total,
		"page":         page,
		"limit":        limit,
		"pages":        (total + int64(limit) - 1) / int64(limit), // Ceiling division
		"status":       status,
	})
}

// UpdateAppointmentStatus confirms, cancels or completes an appointment
func UpdateAppointmentStatus(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
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

	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var appointment models.Appointment
	if err := db.DB.First(&appointment, appointmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}
	if appointment.DoctorID != doctorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only update your own appointments",
		})
	}

	var updated *models.Appointment
	switch models.AppointmentStatus(updateData.Status) {
	case models.StatusConfirmed:
		updated, err = scheduler.Default.Confirm(c.Context(), uint(appointmentID))
	case models.StatusCancelled:
		updated, err = scheduler.Default.Cancel(c.Context(), uint(appointmentID))
	case models.StatusCompleted:
		updated, err = scheduler.Default.Complete(c.Context(), uint(appointmentID))
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status. Must be 'confirmed', 'cancelled', or 'completed'.",
		})
	}
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Appointment status updated successfully",
		"appointment": updated,
	})
}

// RescheduleAppointment shifts one of today's appointments to a new time.
func RescheduleAppointment(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
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

	var rescheduleData struct {
		StartTime string `json:"start_time"`
	}
	if err := c.BodyParser(&rescheduleData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	newStart, err := models.ParseTimeOfDay(rescheduleData.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid start time format. Please use HH:MM.",
		})
	}

	appointment, err := scheduler.Default.Reschedule(c.Context(), doctorID, uint(appointmentID), newStart)
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Appointment rescheduled successfully",
		"appointment": appointment,
	})
}
