package doctor

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
	"github.com/meddesk/clinic-booking/scheduler"
)

// GetDashboard summarizes the doctor's schedule: today's visits, counts per
// status and completed-visit revenue over the last 30 days.
func GetDashboard(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	today := scheduler.DateOnly(time.Now())

	var todays []models.Appointment
	if err := db.DB.
		Preload("Patient").
		Where("doctor_id = ? AND date = ?", doctorID, today).
		Where("status IN ?", []models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed}).
		Order("start_time asc").
		Find(&todays).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	statusCounts := map[string]int64{}
	for _, status := range []models.AppointmentStatus{
		models.StatusScheduled,
		models.StatusConfirmed,
		models.StatusCompleted,
		models.StatusCancelled,
	} {
		var count int64
		db.DB.Model(&models.Appointment{}).
			Where("doctor_id = ? AND status = ?", doctorID, status).
			Count(&count)
		statusCounts[string(status)] = count
	}

	since := today.AddDate(0, 0, -30)
	type revenueRow struct {
		Total float64
	}
	var revenue revenueRow
	db.DB.Model(&models.Appointment{}).
		Select("COALESCE(SUM(fee), 0) as total").
		Where("doctor_id = ? AND status = ?", doctorID, models.StatusCompleted).
		Where("date >= ?", since).
		Scan(&revenue)

	var avgRating float64
	db.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("doctor_id = ?", doctorID).
		Scan(&avgRating)

	return c.JSON(fiber.Map{
		"today":          todays,
		"today_count":    len(todays),
		"status_counts":  statusCounts,
		"revenue_30d":    revenue.Total,
		"average_rating": avgRating,
	})
}
