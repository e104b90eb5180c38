package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/meddesk/clinic-booking/db"
	"github.com/meddesk/clinic-booking/models"
	"github.com/meddesk/clinic-booking/notifications"
)

var notifier notifications.Notifier = notifications.LogNotifier{}

// StartCronJobs initializes and starts the cron scheduler for appointment reminders
func StartCronJobs(n notifications.Notifier) {
	if n != nil {
		notifier = n
	}
	fmt.Println("Starting cron job scheduler...")
	c := cron.New()
	// Run every minute to check for appointments in the next hour
	_, err := c.AddFunc("* * * * *", sendAppointmentReminders)
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for appointment reminders")
}

// sendAppointmentReminders finds confirmed appointments starting in about an
// hour and sends each patient a reminder.
func sendAppointmentReminders() {
	now := time.Now()
	startWindow := models.TimeOfDayFromTime(now.Add(55 * time.Minute))
	endWindow := models.TimeOfDayFromTime(now.Add(65 * time.Minute))
	if endWindow < startWindow {
		// Window crosses midnight; tomorrow's appointments go out in the
		// first runs after the day rolls over.
		return
	}

	var appointments []models.Appointment
	err := db.DB.Preload("Doctor").Preload("Patient").
		Where("status = ? AND date = ? AND start_time BETWEEN ? AND ?",
			models.StatusConfirmed, now.Format("2006-01-02"),
			startWindow.String(), endWindow.String()).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}

	fmt.Printf("Found %d appointments for reminders\n", len(appointments))

	for i := range appointments {
		appt := appointments[i]
		if err := notifier.SendAppointmentReminder(&appt); err != nil {
			log.Printf("Failed to send reminder for appointment %d: %v", appt.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %d to %s", appt.ID, appt.Patient.Email)
	}
}
