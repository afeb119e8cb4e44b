package reminder

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/internal/repository"
	"github.com/brightpath/scheduler-api/internal/service/notification"
	"github.com/brightpath/scheduler-api/pkg/logger"
	"github.com/brightpath/scheduler-api/pkg/messaging"
	"github.com/brightpath/scheduler-api/pkg/metrics"
)

// Config is the runtime configuration of a single scan, fetched from the
// settings store at the invocation boundary and never cached across runs.
type Config struct {
	Enabled       bool
	LeadTimeHours int
}

// Result aggregates one scan. Skipped counts appointments claimed but
// lacking a recipient email.
type Result struct {
	Sent    int
	Failed  int
	Skipped int
}

type Service struct {
	repo     repository.AppointmentRepository
	settings repository.SettingsRepository
	notifier notification.Service
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics
	loc      *time.Location
}

func NewService(
	repo repository.AppointmentRepository,
	settings repository.SettingsRepository,
	notifier notification.Service,
	broker messaging.Broker,
	logger *logger.Logger,
	m *metrics.Metrics,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		settings: settings,
		notifier: notifier,
		broker:   broker,
		logger:   logger,
		metrics:  m,
		loc:      loc,
	}
}

// LoadConfig reads the reminder settings for one scan. Missing keys fall
// back to enabled with the default lead time.
func LoadConfig(ctx context.Context, settings repository.SettingsRepository) (Config, error) {
	cfg := Config{Enabled: true, LeadTimeHours: model.DefaultLeadTimeHours}

	if v, found, err := settings.Get(ctx, model.SettingRemindersEnabled); err != nil {
		return cfg, err
	} else if found {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = enabled
		}
	}

	if v, found, err := settings.Get(ctx, model.SettingLeadTimeHours); err != nil {
		return cfg, err
	} else if found {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.LeadTimeHours = hours
		}
	}

	return cfg, nil
}

// Run fetches the current settings and scans once.
func (s *Service) Run(ctx context.Context, now time.Time) (Result, error) {
	cfg, err := LoadConfig(ctx, s.settings)
	if err != nil {
		return Result{}, err
	}
	return s.Scan(ctx, now, cfg)
}

// Scan finds appointments inside the reminder window and dispatches at most
// one reminder each. Candidates fan out concurrently; one appointment's
// failure never blocks the rest.
func (s *Service) Scan(ctx context.Context, now time.Time, cfg Config) (Result, error) {
	if !cfg.Enabled {
		s.logger.ZL.Debug().Msg("reminders disabled, skipping scan")
		return Result{}, nil
	}

	if s.metrics != nil {
		timer := prometheus.NewTimer(s.metrics.ScanDuration)
		defer timer.ObserveDuration()
	}

	local := now.In(s.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	candidates, err := s.repo.ListReminderCandidates(ctx, today)
	if err != nil {
		return Result{}, err
	}
	if s.metrics != nil {
		s.metrics.ScanCandidates.Set(float64(len(candidates)))
	}

	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)

	for _, apt := range candidates {
		startAt, err := apt.StartAt(s.loc)
		if err != nil {
			s.logger.ZL.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("skipping appointment with bad time")
			continue
		}

		// Outside the window: already past, or further out than the lead
		// time. Reconsidered on the next pass.
		hoursUntil := startAt.Sub(now).Hours()
		if hoursUntil <= 0 || hoursUntil > float64(cfg.LeadTimeHours) {
			continue
		}

		wg.Add(1)
		go func(apt *model.Appointment) {
			defer wg.Done()

			sent, failed, skipped := s.dispatch(ctx, apt)

			mu.Lock()
			result.Sent += sent
			result.Failed += failed
			result.Skipped += skipped
			mu.Unlock()
		}(apt)
	}

	wg.Wait()

	s.logger.ZL.Info().
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int("candidates", len(candidates)).
		Msg("reminder scan complete")
	return result, nil
}

// dispatch claims the reminder flag, then sends. Claiming first is what
// keeps overlapping scans from double-sending: the conditional update lets
// exactly one scan own the appointment. A failed send releases the claim so
// the next scan retries.
func (s *Service) dispatch(ctx context.Context, apt *model.Appointment) (sent, failed, skipped int) {
	claimed, err := s.repo.ClaimReminder(ctx, apt.ID)
	if err != nil {
		s.logger.ZL.Error().Err(err).Str("appointment_id", apt.ID.String()).Msg("failed to claim reminder")
		if s.metrics != nil {
			s.metrics.RemindersFailed.Inc()
		}
		return 0, 1, 0
	}
	if !claimed {
		// another scan got here first
		return 0, 0, 0
	}

	delivered, err := s.notifier.NotifyAppointment(ctx, apt, notification.EventReminder)
	if err != nil {
		if clearErr := s.repo.ClearReminderFlag(ctx, apt.ID); clearErr != nil {
			s.logger.ZL.Error().Err(clearErr).Str("appointment_id", apt.ID.String()).Msg("failed to release reminder claim")
		}
		s.logger.ZL.Error().Err(err).Str("appointment_id", apt.ID.String()).Msg("reminder send failed, will retry next scan")
		if s.metrics != nil {
			s.metrics.RemindersFailed.Inc()
		}
		return 0, 1, 0
	}

	if !delivered {
		// no recipient email: the claim stands so the appointment is not
		// rescanned forever
		if s.metrics != nil {
			s.metrics.RemindersSkipped.Inc()
		}
		return 0, 0, 1
	}

	if s.metrics != nil {
		s.metrics.RemindersSent.Inc()
	}
	if s.broker != nil {
		evt := messaging.Event{Type: messaging.EventReminderSent, Payload: apt}
		if err := s.broker.Publish(ctx, messaging.ChannelReminders, evt); err != nil {
			s.logger.ZL.Warn().Err(err).Str("appointment_id", apt.ID.String()).Msg("failed to publish reminder event")
		}
	}
	return 1, 0, 0
}
