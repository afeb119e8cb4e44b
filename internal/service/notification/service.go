package notification

import (
	"context"

	"github.com/brightpath/scheduler-api/internal/email"
	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/pkg/logger"
)

// Service renders appointment messages and hands them to the email sender.
type Service interface {
	// NotifyAppointment sends the message for the given event. It returns
	// false with a nil error when the appointment has no patient email;
	// not every intake channel captures one, so that is a silent skip, not
	// a failure.
	NotifyAppointment(ctx context.Context, apt *model.Appointment, event Event) (delivered bool, err error)
}

type service struct {
	emailSvc email.Service
	logger   *logger.Logger
}

func NewService(emailSvc email.Service, logger *logger.Logger) Service {
	return &service{emailSvc: emailSvc, logger: logger}
}

func (s *service) NotifyAppointment(ctx context.Context, apt *model.Appointment, event Event) (bool, error) {
	if apt.PatientEmail == "" {
		s.logger.ZL.Debug().
			Str("appointment_id", apt.ID.String()).
			Str("event", string(event)).
			Msg("no patient email, skipping notification")
		return false, nil
	}

	msg := Render(apt, event)
	if err := s.emailSvc.Send(ctx, msg.To, msg.Subject, msg.HTML); err != nil {
		return false, err
	}

	s.logger.ZL.Info().
		Str("appointment_id", apt.ID.String()).
		Str("event", string(event)).
		Msg("notification sent")
	return true, nil
}
