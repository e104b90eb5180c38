package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment is a booked consultation. Status is the single source of truth
// for lifecycle state; IsConfirmed is derived from it, never stored.
// Appointments are never physically deleted: cancellation is a status change.
type Appointment struct {
	gorm.Model
	DoctorID    uint              `json:"doctor_id" gorm:"index:idx_appt_doctor_date"`
	Doctor      User              `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	PatientID   uint              `json:"patient_id" gorm:"index"`
	Patient     User              `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	Date        time.Time         `json:"date" gorm:"type:date;index:idx_appt_doctor_date"`
	StartTime   TimeOfDay         `json:"start_time" gorm:"type:varchar(5)"`
	EndTime     TimeOfDay         `json:"end_time" gorm:"type:varchar(5)"`
	Status      AppointmentStatus `json:"status" gorm:"type:varchar(16);default:'scheduled'"`
	IsConfirmed bool              `json:"is_confirmed" gorm:"-"`
	SlotID      *uint             `json:"slot_id,omitempty"`
	Slot        *AvailabilitySlot `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
	Fee         decimal.Decimal   `json:"fee" gorm:"type:decimal(10,2)"`
	Reason      string            `json:"reason"`
	Notes       string            `json:"notes"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	return nil
}

func (a *Appointment) AfterFind(tx *gorm.DB) error {
	a.IsConfirmed = a.Status == StatusConfirmed
	return nil
}

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo enforces the forward-only state machine:
// scheduled -> confirmed -> completed, with cancellation allowed from
// scheduled or confirmed. Completed and cancelled are terminal.
func (a *Appointment) CanTransitionTo(newStatus AppointmentStatus) error {
	switch a.Status {
	case StatusScheduled:
		if newStatus != StatusConfirmed && newStatus != StatusCancelled {
			return fmt.Errorf("invalid transition from scheduled to %s", newStatus)
		}
	case StatusConfirmed:
		if newStatus != StatusCompleted && newStatus != StatusCancelled {
			return fmt.Errorf("invalid transition from confirmed to %s", newStatus)
		}
	case StatusCompleted, StatusCancelled:
		return fmt.Errorf("no transitions allowed from %s", a.Status)
	default:
		return fmt.Errorf("unknown appointment status %q", a.Status)
	}
	return nil
}
