package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/controllers/doctor"
	"github.com/meddesk/clinic-booking/middleware"
)

// SetupDoctorRoutes configures all doctor related routes
func SetupDoctorRoutes(app *fiber.App) {
	doc := app.Group("/doctor", middleware.Protected(), middleware.RequireRole("doctor"))

	// Profile
	doc.Get("/profile", doctor.GetProfile)
	doc.Patch("/profile", doctor.UpdateProfile)
	doc.Post("/profile/avatar", doctor.UploadAvatar)

	// Availability slots
	doc.Get("/slots", doctor.ListSlots)
	doc.Post("/slots", doctor.CreateSlot)
	doc.Patch("/slots/:id", doctor.UpdateSlot)
	doc.Delete("/slots/:id", doctor.DeleteSlot)

	// Appointments
	doc.Get("/appointments/upcoming", doctor.GetUpcomingAppointments)
	doc.Get("/appointments/history", doctor.GetAppointmentHistory)
	doc.Patch("/appointments/:id/status", doctor.UpdateAppointmentStatus)
	doc.Patch("/appointments/:id/reschedule", doctor.RescheduleAppointment)

	// Dashboard
	doc.Get("/dashboard", doctor.GetDashboard)
}
