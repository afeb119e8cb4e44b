package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/brightpath/scheduler-api/internal/config"
	"github.com/brightpath/scheduler-api/internal/email"
	appointmentHandler "github.com/brightpath/scheduler-api/internal/handler/appointment"
	availabilityHandler "github.com/brightpath/scheduler-api/internal/handler/availability"
	healthHandler "github.com/brightpath/scheduler-api/internal/handler/health"
	settingsHandler "github.com/brightpath/scheduler-api/internal/handler/settings"
	submissionHandler "github.com/brightpath/scheduler-api/internal/handler/submission"
	"github.com/brightpath/scheduler-api/internal/middleware"
	"github.com/brightpath/scheduler-api/internal/repository/postgres"
	"github.com/brightpath/scheduler-api/internal/router"
	appointmentService "github.com/brightpath/scheduler-api/internal/service/appointment"
	notificationService "github.com/brightpath/scheduler-api/internal/service/notification"
	submissionService "github.com/brightpath/scheduler-api/internal/service/submission"
	"github.com/brightpath/scheduler-api/pkg/logger"
	"github.com/brightpath/scheduler-api/pkg/messaging"
	redisbroker "github.com/brightpath/scheduler-api/pkg/messaging/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	submissionRepo := postgres.NewSubmissionRepository(db)
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
	notifier := notificationService.NewService(emailSvc, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, submissionRepo, notifier, broker, appLogger)
	submissionSvc := submissionService.NewService(submissionRepo, appLogger)

	r := router.New(router.Config{
		RateLimit: rate.Limit(50),
		RateBurst: 100,
		Timeout:   time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORS:      middleware.CORSConfig{AllowedOrigins: []string{"*"}},
	},
		appointmentHandler.NewHandler(appointmentSvc),
		submissionHandler.NewHandler(submissionSvc, appointmentSvc),
		availabilityHandler.NewHandler(appointmentSvc),
		settingsHandler.NewHandler(settingsRepo),
	)
	r.Setup()
	healthHandler.NewHandler(db).RegisterRoutes(r.Engine().Group(""))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.ZL.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error(err, "forced shutdown")
	}
}
