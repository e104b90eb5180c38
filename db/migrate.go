package db

import (
	"fmt"
	"log"

	"github.com/meddesk/clinic-booking/models"
)

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.DoctorProfile{},
		&models.AvailabilitySlot{},
		&models.Appointment{},
		&models.Review{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	// A doctor can hold at most one non-cancelled appointment per start time.
	// Backstop against concurrent bookings slipping past the overlap check.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_appointment_start
		ON appointments (doctor_id, date, start_time)
		WHERE status <> 'cancelled' AND deleted_at IS NULL
	`).Error
	if err != nil {
		log.Fatal("Failed to create appointment uniqueness index: ", err)
	}

	seedRoles()

	fmt.Println("✅ Migrations applied successfully!")
}

func seedRoles() {
	roles := []models.Role{
		{Name: models.RoleAdmin, Description: "Administrator with full access"},
		{Name: models.RoleDoctor, Description: "Doctor who declares availability and manages appointments"},
		{Name: models.RolePatient, Description: "Patient who books appointments"},
	}

	for _, role := range roles {
		var existing models.Role
		if DB.Where("name = ?", role.Name).First(&existing).RowsAffected == 0 {
			DB.Create(&role)
		}
	}
}
