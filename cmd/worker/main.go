package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/brightpath/scheduler-api/internal/config"
	"github.com/brightpath/scheduler-api/internal/email"
	"github.com/brightpath/scheduler-api/internal/repository/postgres"
	"github.com/brightpath/scheduler-api/internal/service/notification"
	"github.com/brightpath/scheduler-api/internal/service/reminder"
	"github.com/brightpath/scheduler-api/pkg/logger"
	"github.com/brightpath/scheduler-api/pkg/messaging"
	redisbroker "github.com/brightpath/scheduler-api/pkg/messaging/redis"
	"github.com/brightpath/scheduler-api/pkg/metrics"
)

// The reminder worker scans on a fixed cadence. The cadence must stay well
// under the smallest lead time operators may configure, or an appointment's
// eligibility window could be skipped entirely.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.NewLogger(nil)

	loc, err := cfg.Location()
	if err != nil {
		appLogger.Fatal(err, "invalid timezone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &appLogger.ZL)
		if err != nil {
			appLogger.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()
	}

	emailSvc := email.NewSMTPService(cfg.SMTP)
	notifier := notification.NewService(emailSvc, appLogger)
	m := metrics.New("reminder_worker")
	scanner := reminder.NewService(appointmentRepo, settingsRepo, notifier, broker, appLogger, m, loc)

	setupSidecar(cfg.Worker.HealthPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down")
		cancel()
	}()

	run(ctx, scanner, cfg.Worker.ScanInterval, appLogger)
}

func run(ctx context.Context, scanner *reminder.Service, interval time.Duration, appLogger *logger.Logger) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	appLogger.ZL.Info().Dur("interval", interval).Msg("reminder worker started")

	for {
		select {
		case <-ctx.Done():
			appLogger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			result, err := scanner.Run(ctx, time.Now())
			if err != nil {
				appLogger.Error(err, "reminder scan failed")
				continue
			}
			if result.Sent > 0 || result.Failed > 0 {
				appLogger.ZL.Info().
					Int("sent", result.Sent).
					Int("failed", result.Failed).
					Msg("reminder scan finished")
			}
		}
	}
}

// setupSidecar serves liveness, readiness and metrics on a side port.
func setupSidecar(port int, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("sidecar server failed")
			os.Exit(1)
		}
	}()
}
