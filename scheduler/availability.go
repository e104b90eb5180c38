package scheduler

import (
	"context"
	"time"

	"github.com/meddesk/clinic-booking/models"
)

// AddSlot declares a bookable window for a doctor. The window is snapped to
// the slot grid and must not overlap any other active slot of the doctor on
// that date. The overlap scan and the insert run in one transaction.
func (s *Service) AddSlot(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay) (*models.AvailabilitySlot, error) {
	if doctorID == 0 {
		return nil, validationf("doctor id is required")
	}
	if _, err := s.repo.GetDoctorProfile(ctx, doctorID); err != nil {
		return nil, err
	}

	day := DateOnly(date)
	today := DateOnly(s.clock.Now())
	if day.Before(today) {
		return nil, validationf("cannot declare availability for a past date")
	}

	start, end, err := s.normalizeWindow(start, end)
	if err != nil {
		return nil, err
	}

	slot := &models.AvailabilitySlot{
		DoctorID:  doctorID,
		Date:      day,
		StartTime: start,
		EndTime:   end,
		IsBooked:  false,
		IsActive:  true,
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		if err := checkSlotOverlap(ctx, tx, doctorID, day, start, end, 0); err != nil {
			return err
		}
		return tx.CreateSlot(ctx, slot)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// UpdateSlot moves an unbooked slot to a new window, re-validating exactly
// like AddSlot but excluding the slot itself from the overlap scan. A slot
// that has been booked is immutable.
func (s *Service) UpdateSlot(ctx context.Context, slotID uint, date time.Time, start, end models.TimeOfDay) (*models.AvailabilitySlot, error) {
	var updated *models.AvailabilitySlot

	err := s.repo.InTx(ctx, func(tx Repository) error {
		slot, err := tx.GetSlotByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.IsBooked {
			return validationf("cannot modify a booked slot")
		}
		if !slot.IsActive {
			return validationf("cannot modify a deleted slot")
		}

		day := DateOnly(date)
		today := DateOnly(s.clock.Now())
		if day.Before(today) {
			return validationf("cannot declare availability for a past date")
		}

		start, end, err := s.normalizeWindow(start, end)
		if err != nil {
			return err
		}

		if err := checkSlotOverlap(ctx, tx, slot.DoctorID, day, start, end, slot.ID); err != nil {
			return err
		}

		slot.Date = day
		slot.StartTime = start
		slot.EndTime = end
		if err := tx.SaveSlot(ctx, slot); err != nil {
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSlot soft-deletes an unbooked slot: the row stays retrievable by id
// for audit but disappears from listings. Booked slots cannot be deleted.
func (s *Service) DeleteSlot(ctx context.Context, slotID uint) error {
	return s.repo.InTx(ctx, func(tx Repository) error {
		slot, err := tx.GetSlotByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot.IsBooked {
			return validationf("cannot delete a booked slot")
		}
		slot.IsActive = false
		return tx.SaveSlot(ctx, slot)
	})
}

// ListSlots returns the doctor's active slots in the date range, ordered by
// date then start time. Soft-deleted slots are excluded.
func (s *Service) ListSlots(ctx context.Context, doctorID uint, from, to time.Time) ([]models.AvailabilitySlot, error) {
	return s.repo.ListActiveSlots(ctx, doctorID, from, to)
}

// GetSlot fetches a slot by id regardless of its active flag, so booked
// history stays queryable after deletion.
func (s *Service) GetSlot(ctx context.Context, slotID uint) (*models.AvailabilitySlot, error) {
	return s.repo.GetSlotByID(ctx, slotID)
}

func (s *Service) normalizeWindow(start, end models.TimeOfDay) (models.TimeOfDay, models.TimeOfDay, error) {
	start = RoundToNearestInterval(start, s.cfg.SlotInterval)
	end = RoundToNearestInterval(end, s.cfg.SlotInterval)
	if start >= end {
		return 0, 0, validationf("start time %s must be before end time %s", start, end)
	}
	return start, end, nil
}

func checkSlotOverlap(ctx context.Context, repo Repository, doctorID uint, date time.Time, start, end models.TimeOfDay, excludeSlotID uint) error {
	existing, err := repo.ListActiveSlotsForDate(ctx, doctorID, date, excludeSlotID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if Overlaps(start, end, other.StartTime, other.EndTime) {
			return &ConflictError{
				Reason: "window " + start.String() + "-" + end.String() + " overlaps existing slot " +
					other.StartTime.String() + "-" + other.EndTime.String(),
			}
		}
	}
	return nil
}
