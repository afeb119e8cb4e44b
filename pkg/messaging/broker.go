package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels published by the scheduling core. Consumers (dashboards,
// downstream sync jobs) subscribe to these.
const (
	ChannelAppointments = "appointments"
	ChannelReminders    = "reminders"
)

// Event is the envelope for every message the core publishes.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types
const (
	EventAppointmentCreated = "appointment.created"
	EventStatusChanged      = "appointment.status_changed"
	EventReminderSent       = "appointment.reminder_sent"
)
