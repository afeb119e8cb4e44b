package email

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/brightpath/scheduler-api/internal/config"
	apperrors "github.com/brightpath/scheduler-api/pkg/errors"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) Send(ctx context.Context, to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return apperrors.NewDependency("email sender", err)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return apperrors.NewDependency("email sender", err)
	}
	return nil
}
