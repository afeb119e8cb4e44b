package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/pkg/logger"
)

type fakeEmail struct {
	to      string
	subject string
	html    string
	calls   int
	err     error
}

func (f *fakeEmail) Send(_ context.Context, to, subject, html string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.to = to
	f.subject = subject
	f.html = html
	return nil
}

func testAppointment() *model.Appointment {
	return &model.Appointment{
		PatientName:     "Alice Example",
		PatientEmail:    "alice@example.com",
		AppointmentDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "09:00",
		DurationMinutes: 60,
		Clinician:       "J. Thompson",
		Location:        model.LocationClinic,
	}
}

func TestRenderEvents(t *testing.T) {
	apt := testAppointment()

	confirmation := Render(apt, EventConfirmation)
	assert.Contains(t, confirmation.Subject, "confirmed")
	assert.Contains(t, confirmation.HTML, "Alice Example")
	assert.Contains(t, confirmation.HTML, "J. Thompson")
	assert.Contains(t, confirmation.HTML, "Saturday, June 1, 2024")

	update := Render(apt, EventUpdate)
	assert.Contains(t, update.Subject, "updated")

	reminder := Render(apt, EventReminder)
	assert.Contains(t, reminder.Subject, "Reminder")
	assert.Contains(t, reminder.HTML, "09:00")
}

func TestRenderInHomeIncludesAddress(t *testing.T) {
	apt := testAppointment()
	apt.Location = model.LocationInHome
	apt.Address = "12 Maple Street"

	msg := Render(apt, EventConfirmation)
	assert.Contains(t, msg.HTML, "12 Maple Street")
	assert.Contains(t, msg.HTML, "your home")
}

func TestNotifySends(t *testing.T) {
	sender := &fakeEmail{}
	svc := NewService(sender, logger.NewLogger(nil))

	delivered, err := svc.NotifyAppointment(context.Background(), testAppointment(), EventReminder)
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, "alice@example.com", sender.to)
	assert.Equal(t, 1, sender.calls)
}

func TestNotifyMissingEmailIsSilentSkip(t *testing.T) {
	sender := &fakeEmail{}
	svc := NewService(sender, logger.NewLogger(nil))

	apt := testAppointment()
	apt.PatientEmail = ""

	delivered, err := svc.NotifyAppointment(context.Background(), apt, EventConfirmation)
	require.NoError(t, err, "a missing recipient is not an error")
	assert.False(t, delivered)
	assert.Equal(t, 0, sender.calls)
}

func TestNotifySenderFailurePropagates(t *testing.T) {
	sender := &fakeEmail{err: errors.New("smtp down")}
	svc := NewService(sender, logger.NewLogger(nil))

	delivered, err := svc.NotifyAppointment(context.Background(), testAppointment(), EventReminder)
	require.Error(t, err)
	assert.False(t, delivered)
}
