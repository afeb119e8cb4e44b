package notification

import (
	"fmt"

	"github.com/brightpath/scheduler-api/internal/model"
)

// Event selects the subject/body pair for a message.
type Event string

const (
	EventConfirmation Event = "confirmation"
	EventUpdate       Event = "update"
	EventReminder     Event = "reminder"
)

// Message is a fully-formed email ready for the sender.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Render builds the outgoing message for an appointment event. The caller
// is responsible for checking that the appointment has a recipient email.
func Render(apt *model.Appointment, event Event) Message {
	date := apt.AppointmentDate.Format("Monday, January 2, 2006")
	when := fmt.Sprintf("%s at %s", date, apt.AppointmentTime)

	where := "at our clinic"
	if apt.Location == model.LocationInHome {
		where = "at your home"
		if apt.Address != "" {
			where = fmt.Sprintf("at your home (%s)", apt.Address)
		}
	}

	var subject, intro string
	switch event {
	case EventUpdate:
		subject = fmt.Sprintf("Your appointment has been updated: %s", when)
		intro = "Your appointment details have changed. Here is the updated visit:"
	case EventReminder:
		subject = fmt.Sprintf("Reminder: your appointment on %s", when)
		intro = "This is a friendly reminder about your upcoming visit:"
	default:
		subject = fmt.Sprintf("Your appointment is confirmed: %s", when)
		intro = "Your appointment has been scheduled. Here are the details:"
	}

	html := fmt.Sprintf(`<p>Dear %s,</p>
<p>%s</p>
<ul>
  <li><strong>When:</strong> %s</li>
  <li><strong>Where:</strong> %s</li>
  <li><strong>Clinician:</strong> %s</li>
  <li><strong>Duration:</strong> %d minutes</li>
</ul>
<p>If you need to reschedule, please call our office.</p>`,
		apt.PatientName, intro, when, where, apt.Clinician, apt.DurationMinutes)

	return Message{
		To:      apt.PatientEmail,
		Subject: subject,
		HTML:    html,
	}
}
