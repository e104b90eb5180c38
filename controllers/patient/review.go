package patient

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
)

type ReviewInput struct {
	DoctorID    uint    `json:"doctor_id" validate:"required,gt=0"`
	Rating      float64 `json:"rating" validate:"required,gte=1,lte=5"`
	Comment     string  `json:"comment"`
	IsAnonymous bool    `json:"is_anonymous"`
}

// CreateReview leaves a rating for a doctor. Reviews backed by a completed
// appointment are marked verified.
func CreateReview(c *fiber.Ctx) error {
	patientID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	input := new(ReviewInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	review := models.Review{
		DoctorID:    input.DoctorID,
		PatientID:   patientID,
		Rating:      input.Rating,
		Comment:     input.Comment,
		IsAnonymous: input.IsAnonymous,
	}

	exists, err := review.HasExistingReview(db.DB)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check existing reviews",
		})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "You have already reviewed this doctor",
		})
	}

	// Verified when the patient actually completed a visit with the doctor.
	var completed models.Appointment
	if db.DB.Where("patient_id = ? AND doctor_id = ? AND status = ?",
		patientID, input.DoctorID, models.StatusCompleted).
		First(&completed).RowsAffected > 0 {
		review.IsVerified = true
		review.AppointmentID = &completed.ID
	}

	if err := db.DB.Create(&review).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create review",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// ListDoctorReviews returns a doctor's reviews, newest first.
func ListDoctorReviews(c *fiber.Ctx) error {
	doctorID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid doctor ID",
		})
	}

	var reviews []models.Review
	if err := db.DB.
		Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("created_at desc").
		Find(&reviews).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch reviews",
		})
	}

	// Hide the author of anonymous reviews.
	for i := range reviews {
		reviews[i].Patient.Password = ""
		if reviews[i].IsAnonymous {
			reviews[i].Patient = models.User{}
			reviews[i].PatientID = 0
		}
	}

	return c.JSON(fiber.Map{
		"reviews": reviews,
		"count":   len(reviews),
	})
}
