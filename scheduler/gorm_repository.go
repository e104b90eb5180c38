package scheduler

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meddesk/clinic-booking/models"
)

// GormRepository is the production Repository backed by the relational store.
type GormRepository struct {
	db   *gorm.DB
	inTx bool
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Role").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepository) GetDoctorProfile(ctx context.Context, doctorID uint) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *GormRepository) GetSlotByID(ctx context.Context, id uint) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	query := r.db.WithContext(ctx)
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(&slot, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *GormRepository) ListActiveSlotsForDate(ctx context.Context, doctorID uint, date time.Time, excludeSlotID uint) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	query := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND is_active = ?", doctorID, DateOnly(date), true)
	if excludeSlotID != 0 {
		query = query.Where("id <> ?", excludeSlotID)
	}
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Order("start_time asc").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormRepository) ListActiveSlots(ctx context.Context, doctorID uint, from, to time.Time) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND is_active = ?", doctorID, true).
		Where("date >= ? AND date <= ?", DateOnly(from), DateOnly(to)).
		Order("date asc, start_time asc").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *GormRepository) FindActiveSlotCovering(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	query := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND is_active = ?", doctorID, DateOnly(date), true).
		Where("start_time <= ? AND end_time >= ?", start, end)
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Order("start_time asc").First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *GormRepository) CreateSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(slot).Error
}

func (r *GormRepository) SaveSlot(ctx context.Context, slot *models.AvailabilitySlot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(slot).Error
}

func (r *GormRepository) GetAppointmentByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appt models.Appointment
	query := r.db.WithContext(ctx).Preload("Doctor").Preload("Patient")
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// CountOverlappingAppointments scans the doctor's non-cancelled appointments
// for the date against the half-open window [start, end). Inside a
// transaction the matching rows are locked so the check-then-write sequence
// cannot race another booking.
func (r *GormRepository) CountOverlappingAppointments(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay, excludeAppointmentID uint) (int64, error) {
	var overlapping []models.Appointment
	query := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ?", doctorID, DateOnly(date)).
		Where("status <> ?", models.StatusCancelled).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeAppointmentID != 0 {
		query = query.Where("id <> ?", excludeAppointmentID)
	}
	if r.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Find(&overlapping).Error; err != nil {
		return 0, err
	}
	return int64(len(overlapping)), nil
}

func (r *GormRepository) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(appt).Error
}

func (r *GormRepository) SaveAppointment(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(appt).Error
}

func (r *GormRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx, inTx: true})
	})
}
