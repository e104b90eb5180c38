package models

import (
	"gorm.io/gorm"
)

type Review struct {
	gorm.Model
	Rating        float64 `json:"rating" gorm:"type:decimal(2,1);not null"`
	Comment       string  `json:"comment"`
	DoctorID      uint    `json:"doctor_id"`
	Doctor        User    `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	PatientID     uint    `json:"patient_id"`
	Patient       User    `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	IsAnonymous   bool    `json:"is_anonymous" gorm:"default:false"`
	IsVerified    bool    `json:"is_verified" gorm:"default:false"` // From a completed appointment
	AppointmentID *uint   `json:"appointment_id"`
}

// BeforeCreate clamps the rating into the 1.0–5.0 scale.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.Rating < 1.0 {
		r.Rating = 1.0
	} else if r.Rating > 5.0 {
		r.Rating = 5.0
	}
	return nil
}

// HasExistingReview reports whether the patient has already reviewed this doctor.
func (r *Review) HasExistingReview(tx *gorm.DB) (bool, error) {
	var count int64
	err := tx.Model(&Review{}).
		Where("patient_id = ? AND doctor_id = ? AND deleted_at IS NULL", r.PatientID, r.DoctorID).
		Count(&count).Error

	return count > 0, err
}
