package patient

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
)

// ListDoctors returns the doctor directory, optionally filtered by
// specialization or city.
func ListDoctors(c *fiber.Ctx) error {
	var doctors []models.User

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	query := db.DB.Preload("Role").Preload("DoctorProfile").
		Joins("JOIN roles ON users.role_id = roles.id").
		Where("roles.name = ?", models.RoleDoctor)

	if spec := c.Query("specialization"); spec != "" {
		query = query.
			Joins("JOIN doctor_profiles ON doctor_profiles.doctor_id = users.id").
			Where("doctor_profiles.specialization ILIKE ?", "%"+spec+"%")
	} else if city := c.Query("city"); city != "" {
		query = query.
			Joins("JOIN doctor_profiles ON doctor_profiles.doctor_id = users.id").
			Where("doctor_profiles.city ILIKE ?", "%"+city+"%")
	}

	if err := query.Limit(limit).Offset(offset).Find(&doctors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch doctors",
		})
	}

	var count int64
	db.DB.Model(&models.User{}).
		Joins("JOIN roles ON users.role_id = roles.id").
		Where("roles.name = ?", models.RoleDoctor).
		Count(&count)

	for i := range doctors {
		doctors[i].Password = ""
	}

	return c.JSON(fiber.Map{
		"doctors": doctors,
		"total":   count,
		"page":    page,
		"limit":   limit,
		"pages":   (int(count) + limit - 1) / limit,
	})
}

// GetDoctorDetails returns a doctor with their clinic working profile and
// rating summary.
func GetDoctorDetails(c *fiber.Ctx) error {
	id := c.Params("id")

	var doctor models.User
	if err := db.DB.Preload("Role").Preload("DoctorProfile").First(&doctor, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor not found",
		})
	}
	if doctor.Role.Name != models.RoleDoctor {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User is not a doctor",
		})
	}

	var avgRating float64
	var reviewCount int64
	db.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0)").
		Where("doctor_id = ?", doctor.ID).
		Scan(&avgRating)
	db.DB.Model(&models.Review{}).
		Where("doctor_id = ?", doctor.ID).
		Count(&reviewCount)

	doctor.Password = ""

	return c.JSON(fiber.Map{
		"doctor":         doctor,
		"average_rating": avgRating,
		"review_count":   reviewCount,
	})
}
