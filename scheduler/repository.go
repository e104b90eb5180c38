package scheduler

import (
	"context"
	"time"

	"github.com/meddesk/clinic-booking/models"
)

// Repository contains all DB interactions needed by the scheduling core.
// Implementations must make the overlap queries row-locking when running
// inside InTx, so a conflict check and the write it guards cannot race
// another writer for the same doctor and date.
type Repository interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetDoctorProfile(ctx context.Context, doctorID uint) (*models.DoctorProfile, error)

	// Availability slots
	GetSlotByID(ctx context.Context, id uint) (*models.AvailabilitySlot, error)
	ListActiveSlotsForDate(ctx context.Context, doctorID uint, date time.Time, excludeSlotID uint) ([]models.AvailabilitySlot, error)
	ListActiveSlots(ctx context.Context, doctorID uint, from, to time.Time) ([]models.AvailabilitySlot, error)
	FindActiveSlotCovering(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay) (*models.AvailabilitySlot, error)
	CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error
	SaveSlot(ctx context.Context, slot *models.AvailabilitySlot) error

	// Appointments
	GetAppointmentByID(ctx context.Context, id uint) (*models.Appointment, error)
	CountOverlappingAppointments(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay, excludeAppointmentID uint) (int64, error)
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	SaveAppointment(ctx context.Context, appt *models.Appointment) error

	// InTx runs fn against a transaction-bound copy of the repository.
	// A returned error rolls the transaction back.
	InTx(ctx context.Context, fn func(Repository) error) error
}
