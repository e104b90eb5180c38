package notifications

import (
	"log"

	"github.com/meddesk/clinic-booking/models"
)

// Notifier receives lifecycle events from the scheduling core. Deliveries are
// fire-and-forget: a failed notification is logged by the caller and never
// fails the operation that triggered it.
type Notifier interface {
	NotifyAppointmentCreated(appt *models.Appointment) error
	NotifyAppointmentConfirmed(appt *models.Appointment) error
	NotifyAppointmentCancelled(appt *models.Appointment) error
	SendAppointmentReminder(appt *models.Appointment) error
}

// LogNotifier writes intents to the log. Used when no SMTP credentials are
// configured (dev environments).
type LogNotifier struct{}

func (LogNotifier) NotifyAppointmentCreated(appt *models.Appointment) error {
	log.Printf("notification: appointment %d created (%s %s)", appt.ID, appt.Date.Format("2006-01-02"), appt.StartTime)
	return nil
}

func (LogNotifier) NotifyAppointmentConfirmed(appt *models.Appointment) error {
	log.Printf("notification: appointment %d confirmed", appt.ID)
	return nil
}

func (LogNotifier) NotifyAppointmentCancelled(appt *models.Appointment) error {
	log.Printf("notification: appointment %d cancelled", appt.ID)
	return nil
}

func (LogNotifier) SendAppointmentReminder(appt *models.Appointment) error {
	log.Printf("notification: reminder for appointment %d at %s", appt.ID, appt.StartTime)
	return nil
}
