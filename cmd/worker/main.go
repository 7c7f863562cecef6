package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/probook/probook-api/config"
	"github.com/probook/probook-api/internal/email"
	"github.com/probook/probook-api/internal/repository/postgres"
	"github.com/probook/probook-api/internal/worker"
	"github.com/probook/probook-api/pkg/logger"
	"github.com/probook/probook-api/pkg/metrics"
)

func setupHealthCheck(appLogger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	emailSvc := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	digest := worker.NewDigestWorker(
		userRepo,
		appointmentRepo,
		invoiceRepo,
		notificationRepo,
		emailSvc,
		worker.DigestConfig{
			Interval:        cfg.Digest.Interval,
			SendHour:        cfg.Digest.SendHour,
			PruneAfter:      cfg.Digest.PruneAfter,
			MaxItemsPerUser: cfg.Digest.MaxItemsUser,
		},
		appLogger,
		metrics.NewMetrics("probook_worker"),
	)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info().Msg("shutting down...")
		cancel()
	}()

	digest.Start(ctx)
}
