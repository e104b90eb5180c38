package doctor

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/meddesk/clinic-booking/models"
	"github.com/meddesk/clinic-booking/scheduler"
	"github.com/meddesk/clinic-booking/utils"
)

var validate = validator.New()

type SlotInput struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func (in *SlotInput) parse() (time.Time, models.TimeOfDay, models.TimeOfDay, error) {
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	start, err := models.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	end, err := models.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return time.Time{}, 0, 0, err
	}
	return date, start, end, nil
}

// CreateSlot declares a new bookable window for the logged-in doctor.
func CreateSlot(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	input := new(SlotInput)
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
	date, start, end, err := input.parse()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date or time format",
			Error:   err.Error(),
		})
	}

	slot, err := scheduler.Default.AddSlot(c.Context(), doctorID, date, start, end)
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

// UpdateSlot moves one of the doctor's unbooked windows.
func UpdateSlot(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}
	slotID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid slot ID",
		})
	}

	existing, err := scheduler.Default.GetSlot(c.Context(), uint(slotID))
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}
	if existing.DoctorID != doctorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only manage your own availability",
		})
	}

	input := new(SlotInput)
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
	date, start, end, err := input.parse()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date or time format",
			Error:   err.Error(),
		})
	}

	slot, err := scheduler.Default.UpdateSlot(c.Context(), uint(slotID), date, start, end)
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}
	return c.JSON(slot)
}

// DeleteSlot soft-deletes an unbooked window.
func DeleteSlot(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}
	slotID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid slot ID",
		})
	}

	existing, err := scheduler.Default.GetSlot(c.Context(), uint(slotID))
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}
	if existing.DoctorID != doctorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only manage your own availability",
		})
	}

	if err := scheduler.Default.DeleteSlot(c.Context(), uint(slotID)); err != nil {
		return utils.RenderSchedulingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSlots returns the doctor's active windows for a date range,
// defaulting to the coming week.
func ListSlots(c *fiber.Ctx) error {
	doctorID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	now := time.Now()
	from := now
	to := now.AddDate(0, 0, 7)
	if q := c.Query("from"); q != "" {
		if parsed, err := time.Parse("2006-01-02", q); err == nil {
			from = parsed
		}
	}
	if q := c.Query("to"); q != "" {
		if parsed, err := time.Parse("2006-01-02", q); err == nil {
			to = parsed
		}
	}

	slots, err := scheduler.Default.ListSlots(c.Context(), doctorID, from, to)
	if err != nil {
		return utils.RenderSchedulingError(c, err)
	}
	return c.JSON(fiber.Map{
		"slots": slots,
		"count": len(slots),
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
	})
}
