package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DoctorProfile is the clinic working profile for a doctor: specialization,
// consultation fee, clinic hours and the daily break window. The scheduling
// core reads it, it never writes it.
type DoctorProfile struct {
	gorm.Model
	DoctorID       uint            `json:"doctor_id" gorm:"uniqueIndex"`
	Doctor         User            `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Specialization string          `json:"specialization"`
	ClinicName     string          `json:"clinic_name"`
	ClinicAddress  string          `json:"clinic_address"`
	City           string          `json:"city"`
	Fee            decimal.Decimal `json:"fee" gorm:"type:decimal(10,2)"`
	OpeningTime    TimeOfDay       `json:"opening_time" gorm:"type:varchar(5);default:'09:00'"`
	ClosingTime    TimeOfDay       `json:"closing_time" gorm:"type:varchar(5);default:'17:00'"`
	BreakStart     TimeOfDay       `json:"break_start" gorm:"type:varchar(5);default:'13:00'"`
	BreakEnd       TimeOfDay       `json:"break_end" gorm:"type:varchar(5);default:'14:00'"`
	AvatarURL      string          `json:"avatar_url"`
	About          string          `json:"about"`
}
