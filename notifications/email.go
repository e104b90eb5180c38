package notifications

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/meddesk/clinic-booking/config"
	"github.com/meddesk/clinic-booking/models"
)

// EmailNotifier delivers lifecycle notifications over SMTP to both the
// patient and the doctor.
type EmailNotifier struct {
	host string
	port int
	user string
	pass string
}

func NewEmailNotifier(cfg config.Config) *EmailNotifier {
	return &EmailNotifier{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.EmailUser,
		pass: cfg.EmailPass,
	}
}

// NewFromConfig picks the email notifier when SMTP is configured and falls
// back to the log notifier otherwise.
func NewFromConfig(cfg config.Config) Notifier {
	if cfg.SMTPHost == "" {
		return LogNotifier{}
	}
	return NewEmailNotifier(cfg)
}

func (n *EmailNotifier) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.user)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(n.host, n.port, n.user, n.pass)
	return d.DialAndSend(m)
}

func apptDetails(appt *models.Appointment) string {
	return fmt.Sprintf(`
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
	`, appt.Doctor.Name, appt.Date.Format("2006-01-02"), appt.StartTime, appt.EndTime, appt.Status)
}

func (n *EmailNotifier) NotifyAppointmentCreated(appt *models.Appointment) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment has been booked.</p>
		<p><strong>Details:</strong></p>
		%s
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, appt.Patient.Name, apptDetails(appt))
	if err := n.send(appt.Patient.Email, "Appointment Booked", body); err != nil {
		return err
	}

	body = fmt.Sprintf(`
		<p>Dear Dr. %s,</p>
		<p>You have a new appointment scheduled with %s.</p>
		<p><strong>Details:</strong></p>
		%s
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, appt.Doctor.Name, appt.Patient.Name, apptDetails(appt))
	return n.send(appt.Doctor.Email, "New Appointment Scheduled", body)
}

func (n *EmailNotifier) NotifyAppointmentConfirmed(appt *models.Appointment) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment has been confirmed by the clinic.</p>
		<p><strong>Details:</strong></p>
		%s
		<p>Please arrive a few minutes early.</p>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, appt.Patient.Name, apptDetails(appt))
	return n.send(appt.Patient.Email, "Appointment Confirmed", body)
}

func (n *EmailNotifier) NotifyAppointmentCancelled(appt *models.Appointment) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment has been cancelled.</p>
		<p><strong>Details:</strong></p>
		%s
		<p>You can book a new appointment at any time.</p>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, appt.Patient.Name, apptDetails(appt))
	if err := n.send(appt.Patient.Email, "Appointment Cancelled", body); err != nil {
		return err
	}

	body = fmt.Sprintf(`
		<p>Dear Dr. %s,</p>
		<p>An appointment with %s has been cancelled.</p>
		<p><strong>Details:</strong></p>
		%s
	`, appt.Doctor.Name, appt.Patient.Name, apptDetails(appt))
	return n.send(appt.Doctor.Email, "Appointment Cancelled", body)
}

func (n *EmailNotifier) SendAppointmentReminder(appt *models.Appointment) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		%s
		<p>Please arrive on time. If you need to reschedule or cancel, contact us as soon as possible.</p>
		<p>Best regards,</p>
		<p>Your Clinic Team</p>
	`, appt.Patient.Name, apptDetails(appt))
	return n.send(appt.Patient.Email, fmt.Sprintf("Reminder: Appointment at %s", appt.StartTime), body)
}
