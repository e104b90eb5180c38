package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/controllers/patient"
	"github.com/meddesk/clinic-booking/middleware"
)

// SetupPatientRoutes configures all patient related routes
func SetupPatientRoutes(app *fiber.App) {
	pat := app.Group("/patient", middleware.Protected(), middleware.RequireRole("patient"))

	// Doctor directory
	pat.Get("/doctors", patient.ListDoctors)
	pat.Get("/doctors/:id", patient.GetDoctorDetails)
	pat.Get("/doctors/:id/slots", patient.GetAvailableSlots)
	pat.Get("/doctors/:id/next-slot", patient.GetNextAvailableSlot)
	pat.Get("/doctors/:id/reviews", patient.ListDoctorReviews)

	// Appointments
	pat.Post("/appointments", patient.BookAppointment)
	pat.Get("/appointments", patient.GetMyAppointments)
	pat.Delete("/appointments/:id", patient.CancelAppointment)

	// Reviews
	pat.Post("/reviews", patient.CreateReview)
}
