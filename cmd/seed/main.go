package main

import (
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/meddesk/clinic-booking/config"
	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
)

var specializations = []string{
	"General Medicine", "Pediatrics", "Dermatology", "Cardiology",
	"Orthopedics", "ENT", "Ophthalmology", "Psychiatry",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db.Init(cfg.DatabaseURL)
	db.Migrate()

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	var doctorRole, patientRole models.Role
	if err := db.DB.Where("name = ?", models.RoleDoctor).First(&doctorRole).Error; err != nil {
		log.Fatalf("doctor role missing, run migrations first: %v", err)
	}
	if err := db.DB.Where("name = ?", models.RolePatient).First(&patientRole).Error; err != nil {
		log.Fatalf("patient role missing, run migrations first: %v", err)
	}

	// Doctors with working profiles and a week of open slots.
	for i := 0; i < 8; i++ {
		doctor := models.User{
			Name:     "Dr. " + gofakeit.Name(),
			Email:    gofakeit.Email(),
			Password: string(password),
			Phone:    gofakeit.Phone(),
			RoleID:   doctorRole.ID,
		}
		if err := db.DB.Create(&doctor).Error; err != nil {
			log.Printf("seed doctor: %v", err)
			continue
		}

		profile := models.DoctorProfile{
			DoctorID:       doctor.ID,
			Specialization: specializations[i%len(specializations)],
			ClinicName:     gofakeit.Company() + " Clinic",
			ClinicAddress:  gofakeit.Street(),
			City:           gofakeit.City(),
			Fee:            decimal.NewFromInt(int64(gofakeit.Number(20, 150))),
			OpeningTime:    models.MustTimeOfDay("09:00"),
			ClosingTime:    models.MustTimeOfDay("17:00"),
			BreakStart:     models.MustTimeOfDay("13:00"),
			BreakEnd:       models.MustTimeOfDay("14:00"),
			About:          gofakeit.Sentence(12),
		}
		if err := db.DB.Create(&profile).Error; err != nil {
			log.Printf("seed profile for doctor %d: %v", doctor.ID, err)
			continue
		}

		seedSlots(doctor.ID)
	}

	// Patients.
	for i := 0; i < 20; i++ {
		patient := models.User{
			Name:     gofakeit.Name(),
			Email:    gofakeit.Email(),
			Password: string(password),
			Phone:    gofakeit.Phone(),
			RoleID:   patientRole.ID,
		}
		if err := db.DB.Create(&patient).Error; err != nil {
			log.Printf("seed patient: %v", err)
		}
	}

	fmt.Println("✅ Seed data created (all accounts use password123)")
}

// seedSlots opens morning and afternoon slots for the next 7 days.
func seedSlots(doctorID uint) {
	today := time.Now().Truncate(24 * time.Hour)
	windows := [][2]string{
		{"09:00", "12:00"},
		{"14:00", "17:00"},
	}
	for day := 0; day < 7; day++ {
		date := today.AddDate(0, 0, day)
		for _, w := range windows {
			slot := models.AvailabilitySlot{
				DoctorID:  doctorID,
				Date:      date,
				StartTime: models.MustTimeOfDay(w[0]),
				EndTime:   models.MustTimeOfDay(w[1]),
				IsActive:  true,
			}
			if err := db.DB.Create(&slot).Error; err != nil {
				log.Printf("seed slot for doctor %d: %v", doctorID, err)
			}
		}
	}
}
