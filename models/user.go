package models

import (
	"time"
)

type User struct {
	ID                  uint               `json:"id" gorm:"primaryKey"`
	Name                string             `json:"name"`
	Email               string             `json:"email" gorm:"unique"`
	Password            string             `json:"password,omitempty"`
	Phone               string             `json:"phone"`
	RoleID              uint               `json:"role_id"`
	Role                Role               `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	DoctorProfile       *DoctorProfile     `json:"doctor_profile,omitempty" gorm:"foreignKey:DoctorID"`
	AvailabilitySlots   []AvailabilitySlot `json:"availability_slots,omitempty" gorm:"foreignKey:DoctorID"`
	DoctorAppointments  []Appointment      `json:"doctor_appointments,omitempty" gorm:"foreignKey:DoctorID"`
	PatientAppointments []Appointment      `json:"patient_appointments,omitempty" gorm:"foreignKey:PatientID"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}
