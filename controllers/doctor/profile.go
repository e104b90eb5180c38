package doctor

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
	"github.com/meddesk/clinic-booking/utils"
)

type ProfileInput struct {
	Specialization string `json:"specialization"`
	ClinicName     string `json:"clinic_name"`
	ClinicAddress  string `json:"clinic_address"`
	City           string `json:"city"`
	Fee            string `json:"fee" validate:"omitempty,numeric"`
	OpeningTime    string `json:"opening_time"`
	ClosingTime    string `json:"closing_time"`
	BreakStart     string `json:"break_start"`
	BreakEnd       string `json:"break_end"`
	About          string `json:"about"`
}

// GetProfile returns the logged-in doctor's clinic working profile.
func GetProfile(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var profile models.DoctorProfile
	if err := db.DB.Where("doctor_id = ?", doctorID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor profile not found",
		})
	}
	return c.JSON(profile)
}

// UpdateProfile edits the clinic working profile: specialization, fee,
// clinic hours and the break window. Empty fields are left untouched.
func UpdateProfile(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	input := new(ProfileInput)
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

	var profile models.DoctorProfile
	if err := db.DB.Where("doctor_id = ?", doctorID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor profile not found",
		})
	}

	if input.Specialization != "" {
		profile.Specialization = input.Specialization
	}
	if input.ClinicName != "" {
		profile.ClinicName = input.ClinicName
	}
	if input.ClinicAddress != "" {
		profile.ClinicAddress = input.ClinicAddress
	}
	if input.City != "" {
		profile.City = input.City
	}
	if input.About != "" {
		profile.About = input.About
	}
	if input.Fee != "" {
		fee, err := decimal.NewFromString(input.Fee)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid fee",
			})
		}
		profile.Fee = fee
	}

	type timeField struct {
		raw    string
		target *models.TimeOfDay
	}
	for _, f := range []timeField{
		{input.OpeningTime, &profile.OpeningTime},
		{input.ClosingTime, &profile.ClosingTime},
		{input.BreakStart, &profile.BreakStart},
		{input.BreakEnd, &profile.BreakEnd},
	} {
		if f.raw == "" {
			continue
		}
		parsed, err := models.ParseTimeOfDay(f.raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		*f.target = parsed
	}

	if profile.OpeningTime >= profile.ClosingTime {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Opening time must be before closing time",
		})
	}

	if err := db.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}
	return c.JSON(profile)
}

// UploadAvatar stores the doctor's profile picture on Cloudinary.
func UploadAvatar(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing avatar file",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read avatar file",
		})
	}
	defer file.Close()

	publicID := fmt.Sprintf("doctor-%d-%s", doctorID, uuid.NewString())
	url, err := utils.UploadToCloudinary(file, publicID, "avatars")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload avatar",
		})
	}

	var profile models.DoctorProfile
	if err := db.DB.Where("doctor_id = ?", doctorID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor profile not found",
		})
	}
	profile.AvatarURL = url
	if err := db.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save avatar",
		})
	}

	return c.JSON(fiber.Map{
		"avatar_url": url,
	})
}
