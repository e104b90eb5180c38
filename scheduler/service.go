package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meddesk/clinic-booking/models"
	"github.com/meddesk/clinic-booking/notifications"
	redisclient "github.com/meddesk/clinic-booking/redis"
)

// Config carries the scheduling policy knobs.
type Config struct {
	// SlotInterval is the fixed appointment duration; every start time is
	// rounded to this grid and every appointment lasts exactly this long.
	SlotInterval time.Duration
	// AdvanceBookingMonths bounds how far ahead an appointment may be booked.
	AdvanceBookingMonths int
}

func DefaultConfig() Config {
	return Config{
		SlotInterval:         30 * time.Minute,
		AdvanceBookingMonths: 3,
	}
}

// Service is the scheduling facade: it owns availability slots, the
// appointment lifecycle and conflict detection. Controllers call it and map
// its rejection values onto HTTP responses.
type Service struct {
	repo     Repository
	locker   redisclient.Locker
	notifier notifications.Notifier
	clock    Clock
	cfg      Config
}

func NewService(repo Repository, locker redisclient.Locker, notifier notifications.Notifier, clock Clock, cfg Config) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		clock:    clock,
		cfg:      cfg,
	}
}

// CreateRequest is a booking request. EndTime is accepted from callers for
// compatibility but always overwritten: appointments last exactly one slot
// interval.
type CreateRequest struct {
	DoctorID  uint
	PatientID uint
	Date      time.Time
	StartTime models.TimeOfDay
	Fee       decimal.Decimal
	Reason    string
}

// Create books an appointment. The request's start time is rounded to the
// slot grid, validated against the doctor's clinic hours and break window,
// and checked for conflicts inside a locked transaction so two concurrent
// requests cannot both take the same window. On a conflict the returned
// ConflictError carries the next free start time of the day, or a hint to
// try the following day.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Appointment, error) {
	if req.DoctorID == 0 || req.PatientID == 0 {
		return nil, validationf("doctor id and patient id are required")
	}

	patient, err := s.repo.GetUserByID(ctx, req.PatientID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, err
	}

	doctor, err := s.repo.GetUserByID(ctx, req.DoctorID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.GetDoctorProfile(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	date := DateOnly(req.Date)
	if err := s.checkDateBounds(date); err != nil {
		return nil, err
	}

	start := RoundToNearestInterval(req.StartTime, s.cfg.SlotInterval)
	end := start.Add(s.cfg.SlotInterval)

	if err := s.checkClinicWindow(profile, start, end); err != nil {
		return nil, err
	}

	fee := req.Fee
	if fee.IsZero() {
		fee = profile.Fee
	}

	var created *models.Appointment
	err = s.withScheduleLock(ctx, req.DoctorID, date, func(lockCtx context.Context) error {
		return s.repo.InTx(lockCtx, func(tx Repository) error {
			overlapping, err := tx.CountOverlappingAppointments(lockCtx, req.DoctorID, date, start, end, 0)
			if err != nil {
				return err
			}
			if overlapping > 0 {
				return s.conflictWithSuggestion(lockCtx, tx, profile, req.DoctorID, date, start, end, 0)
			}

			appt := &models.Appointment{
				DoctorID:  req.DoctorID,
				PatientID: req.PatientID,
				Date:      date,
				StartTime: start,
				EndTime:   end,
				Status:    models.StatusScheduled,
				Fee:       fee,
				Reason:    req.Reason,
			}

			// Reserve the covering availability slot when the doctor declared
			// one, so slot state and bookings stay in sync.
			slot, err := tx.FindActiveSlotCovering(lockCtx, req.DoctorID, date, start, end)
			if err != nil && !errors.Is(err, ErrSlotNotFound) {
				return err
			}
			if slot != nil && !slot.IsBooked {
				slot.IsBooked = true
				if err := tx.SaveSlot(lockCtx, slot); err != nil {
					return err
				}
				appt.SlotID = &slot.ID
			}

			if err := tx.CreateAppointment(lockCtx, appt); err != nil {
				return err
			}
			created = appt
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	created.Doctor = *doctor
	created.Patient = *patient
	s.dispatch("created", s.notifier.NotifyAppointmentCreated, created)

	return created, nil
}

// Confirm moves a scheduled appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uint) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.StatusConfirmed {
		return nil, validationf("appointment is already confirmed")
	}
	if err := appt.CanTransitionTo(models.StatusConfirmed); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	appt.Status = models.StatusConfirmed
	if err := s.repo.SaveAppointment(ctx, appt); err != nil {
		return nil, err
	}
	appt.IsConfirmed = true

	s.dispatch("confirmed", s.notifier.NotifyAppointmentConfirmed, appt)
	return appt, nil
}

// Cancel marks an appointment cancelled. The record is kept for audit; if the
// booking had reserved an availability slot the slot becomes bookable again.
func (s *Service) Cancel(ctx context.Context, id uint) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == models.StatusCancelled {
		return nil, validationf("appointment is already cancelled")
	}
	if err := appt.CanTransitionTo(models.StatusCancelled); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	err = s.repo.InTx(ctx, func(tx Repository) error {
		appt.Status = models.StatusCancelled
		if err := tx.SaveAppointment(ctx, appt); err != nil {
			return err
		}
		if appt.SlotID != nil {
			slot, err := tx.GetSlotByID(ctx, *appt.SlotID)
			if err != nil {
				return err
			}
			slot.IsBooked = false
			return tx.SaveSlot(ctx, slot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	appt.IsConfirmed = false

	s.dispatch("cancelled", s.notifier.NotifyAppointmentCancelled, appt)
	return appt, nil
}

// Complete closes out a confirmed appointment after the visit.
func (s *Service) Complete(ctx context.Context, id uint) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appt.CanTransitionTo(models.StatusCompleted); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	appt.Status = models.StatusCompleted
	if err := s.repo.SaveAppointment(ctx, appt); err != nil {
		return nil, err
	}
	appt.IsConfirmed = false
	return appt, nil
}

// Reschedule is the doctor-initiated time change. It is restricted to the
// owning doctor and to appointments happening today, and re-runs the full
// conflict check excluding the appointment's own window.
func (s *Service) Reschedule(ctx context.Context, doctorID, id uint, newStart models.TimeOfDay) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, validationf("you can only reschedule your own appointments")
	}
	if !SameDate(appt.Date, s.clock.Now()) {
		return nil, validationf("appointments can only be time-shifted on the day of the visit")
	}
	if appt.Status.IsTerminal() {
		return nil, validationf("a %s appointment cannot be rescheduled", appt.Status)
	}

	profile, err := s.repo.GetDoctorProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	start := RoundToNearestInterval(newStart, s.cfg.SlotInterval)
	end := start.Add(s.cfg.SlotInterval)
	if err := s.checkClinicWindow(profile, start, end); err != nil {
		return nil, err
	}

	err = s.withScheduleLock(ctx, doctorID, appt.Date, func(lockCtx context.Context) error {
		return s.repo.InTx(lockCtx, func(tx Repository) error {
			overlapping, err := tx.CountOverlappingAppointments(lockCtx, doctorID, appt.Date, start, end, appt.ID)
			if err != nil {
				return err
			}
			if overlapping > 0 {
				return s.conflictWithSuggestion(lockCtx, tx, profile, doctorID, appt.Date, start, end, appt.ID)
			}
			appt.StartTime = start
			appt.EndTime = end
			return tx.SaveAppointment(lockCtx, appt)
		})
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// UpdateRequest is the generic mutation: a nil field is left untouched.
// Status changes are delegated to the lifecycle transitions so their
// invariants and notification intents hold no matter which path is used.
type UpdateRequest struct {
	StartTime *models.TimeOfDay
	Status    *models.AppointmentStatus
	Notes     *string
}

func (s *Service) Update(ctx context.Context, id uint, req UpdateRequest) (*models.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.StartTime != nil {
		start := RoundToNearestInterval(*req.StartTime, s.cfg.SlotInterval)
		if start != appt.StartTime {
			if appt.Status.IsTerminal() {
				return nil, validationf("a %s appointment cannot be moved", appt.Status)
			}
			profile, err := s.repo.GetDoctorProfile(ctx, appt.DoctorID)
			if err != nil {
				return nil, err
			}
			end := start.Add(s.cfg.SlotInterval)
			if err := s.checkClinicWindow(profile, start, end); err != nil {
				return nil, err
			}
			err = s.withScheduleLock(ctx, appt.DoctorID, appt.Date, func(lockCtx context.Context) error {
				return s.repo.InTx(lockCtx, func(tx Repository) error {
					overlapping, err := tx.CountOverlappingAppointments(lockCtx, appt.DoctorID, appt.Date, start, end, appt.ID)
					if err != nil {
						return err
					}
					if overlapping > 0 {
						return s.conflictWithSuggestion(lockCtx, tx, profile, appt.DoctorID, appt.Date, start, end, appt.ID)
					}
					appt.StartTime = start
					appt.EndTime = end
					return tx.SaveAppointment(lockCtx, appt)
				})
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if req.Notes != nil {
		appt.Notes = *req.Notes
		if err := s.repo.SaveAppointment(ctx, appt); err != nil {
			return nil, err
		}
	}

	if req.Status != nil && *req.Status != appt.Status {
		switch *req.Status {
		case models.StatusConfirmed:
			return s.Confirm(ctx, id)
		case models.StatusCancelled:
			return s.Cancel(ctx, id)
		case models.StatusCompleted:
			return s.Complete(ctx, id)
		default:
			return nil, validationf("unknown status %q", *req.Status)
		}
	}

	return appt, nil
}

// IsTimeSlotAvailable reports whether no non-cancelled appointment of the
// doctor overlaps [start, end) on the date. excludeAppointmentID skips the
// appointment being rescheduled; pass 0 for none.
func (s *Service) IsTimeSlotAvailable(ctx context.Context, doctorID uint, date time.Time, start, end models.TimeOfDay, excludeAppointmentID uint) (bool, error) {
	overlapping, err := s.repo.CountOverlappingAppointments(ctx, doctorID, DateOnly(date), start, end, excludeAppointmentID)
	if err != nil {
		return false, err
	}
	return overlapping == 0, nil
}

// FindNextAvailableSlot returns the first bookable start of the doctor's day,
// or nil when the day is fully booked. It only suggests; nothing is reserved.
func (s *Service) FindNextAvailableSlot(ctx context.Context, doctorID uint, date time.Time) (*models.TimeOfDay, error) {
	profile, err := s.repo.GetDoctorProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.nextAvailable(ctx, s.repo, profile, doctorID, DateOnly(date), 0)
}

// GetAvailableSlots is the read-only "show me open times" view: every
// grid-aligned start inside working hours, outside the break, with no
// conflicting appointment.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorID uint, date time.Time) ([]models.TimeOfDay, error) {
	profile, err := s.repo.GetDoctorProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	day := DateOnly(date)
	open := []models.TimeOfDay{}
	for start := profile.OpeningTime; start.Add(s.cfg.SlotInterval) <= profile.ClosingTime; start = start.Add(s.cfg.SlotInterval) {
		if IsBreakTime(start, profile.BreakStart, profile.BreakEnd) {
			continue
		}
		end := start.Add(s.cfg.SlotInterval)
		overlapping, err := s.repo.CountOverlappingAppointments(ctx, doctorID, day, start, end, 0)
		if err != nil {
			return nil, err
		}
		if overlapping == 0 {
			open = append(open, start)
		}
	}
	return open, nil
}

func (s *Service) checkDateBounds(date time.Time) error {
	today := DateOnly(s.clock.Now())
	if date.Before(today) {
		return validationf("appointment date %s is in the past", date.Format("2006-01-02"))
	}
	horizon := today.AddDate(0, s.cfg.AdvanceBookingMonths, 0)
	if date.After(horizon) {
		return validationf("appointments can be booked only up to %d months in advance", s.cfg.AdvanceBookingMonths)
	}
	return nil
}

func (s *Service) checkClinicWindow(profile *models.DoctorProfile, start, end models.TimeOfDay) error {
	if IsBreakTime(start, profile.BreakStart, profile.BreakEnd) {
		return validationf("requested time %s falls in the clinic break (%s-%s); clinic hours are %s-%s",
			start, profile.BreakStart, profile.BreakEnd, profile.OpeningTime, profile.ClosingTime)
	}
	if !IsWithinWorkingHours(start, end, profile.OpeningTime, profile.ClosingTime) {
		return validationf("requested window %s-%s is outside clinic hours %s-%s",
			start, end, profile.OpeningTime, profile.ClosingTime)
	}
	return nil
}

// nextAvailable walks the working day on the slot grid and returns the first
// start that is inside clinic hours, outside the break and free of
// conflicting appointments.
func (s *Service) nextAvailable(ctx context.Context, repo Repository, profile *models.DoctorProfile, doctorID uint, date time.Time, excludeAppointmentID uint) (*models.TimeOfDay, error) {
	for start := profile.OpeningTime; start.Add(s.cfg.SlotInterval) <= profile.ClosingTime; start = start.Add(s.cfg.SlotInterval) {
		if IsBreakTime(start, profile.BreakStart, profile.BreakEnd) {
			continue
		}
		end := start.Add(s.cfg.SlotInterval)
		overlapping, err := repo.CountOverlappingAppointments(ctx, doctorID, date, start, end, excludeAppointmentID)
		if err != nil {
			return nil, err
		}
		if overlapping == 0 {
			found := start
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Service) conflictWithSuggestion(ctx context.Context, repo Repository, profile *models.DoctorProfile, doctorID uint, date time.Time, start, end models.TimeOfDay, excludeAppointmentID uint) error {
	conflict := &ConflictError{
		Reason: fmt.Sprintf("time slot %s-%s is not available", start, end),
	}
	next, err := s.nextAvailable(ctx, repo, profile, doctorID, date, excludeAppointmentID)
	if err != nil {
		log.Printf("failed to compute slot suggestion for doctor %d on %s: %v", doctorID, date.Format("2006-01-02"), err)
		return conflict
	}
	if next != nil {
		conflict.SuggestedTime = next
	} else {
		conflict.SuggestNextDay = true
	}
	return conflict
}

func (s *Service) withScheduleLock(ctx context.Context, doctorID uint, date time.Time, fn func(ctx context.Context) error) error {
	err := s.locker.WithScheduleLock(ctx, doctorID, date, fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return &ConflictError{Reason: ErrScheduleBusy.Error()}
	}
	return err
}

// dispatch fires a notification intent without blocking or failing the
// triggering operation.
func (s *Service) dispatch(event string, fn func(*models.Appointment) error, appt *models.Appointment) {
	a := *appt
	go func() {
		if err := fn(&a); err != nil {
			log.Printf("notification %q for appointment %d failed: %v", event, a.ID, err)
		}
	}()
}
