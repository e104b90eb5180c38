package models

import (
	"time"

	"gorm.io/gorm"
)

// AvailabilitySlot is a doctor-declared bookable window on a specific date.
// Slots are never physically removed once they may have booking history:
// delete degrades to IsActive=false so booked slots stay auditable.
type AvailabilitySlot struct {
	gorm.Model
	DoctorID  uint      `json:"doctor_id" gorm:"index:idx_slot_doctor_date"`
	Doctor    User      `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Date      time.Time `json:"date" gorm:"type:date;index:idx_slot_doctor_date"`
	StartTime TimeOfDay `json:"start_time" gorm:"type:varchar(5)"`
	EndTime   TimeOfDay `json:"end_time" gorm:"type:varchar(5)"`
	IsBooked  bool      `json:"is_booked" gorm:"default:false"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
}
