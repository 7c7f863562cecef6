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

	"github.com/probook/probook-api/config"
	appointmentHandler "github.com/probook/probook-api/internal/handler/appointment"
	authHandler "github.com/probook/probook-api/internal/handler/auth"
	clientHandler "github.com/probook/probook-api/internal/handler/client"
	healthHandler "github.com/probook/probook-api/internal/handler/health"
	invoiceHandler "github.com/probook/probook-api/internal/handler/invoice"
	notificationHandler "github.com/probook/probook-api/internal/handler/notification"
	"github.com/probook/probook-api/internal/email"
	"github.com/probook/probook-api/internal/middleware"
	"github.com/probook/probook-api/internal/notifier"
	"github.com/probook/probook-api/internal/repository/postgres"
	"github.com/probook/probook-api/internal/router"
	appointmentService "github.com/probook/probook-api/internal/service/appointment"
	authService "github.com/probook/probook-api/internal/service/auth"
	clientService "github.com/probook/probook-api/internal/service/client"
	invoiceService "github.com/probook/probook-api/internal/service/invoice"
	"github.com/probook/probook-api/pkg/auth"
	kvredis "github.com/probook/probook-api/pkg/kv/redis"
	"github.com/probook/probook-api/pkg/logger"
	"github.com/probook/probook-api/pkg/metrics"
)

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

	kvStore, err := kvredis.NewStore(kvredis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer kvStore.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	emailSvc := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	authSvc := authService.NewService(userRepo, jwtSvc, emailSvc, appLogger)
	clientSvc := clientService.NewService(clientRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, clientRepo, notificationRepo, appLogger)
	invoiceSvc := invoiceService.NewService(invoiceRepo, clientRepo, notificationRepo, appLogger)

	// Notification engine
	m := metrics.NewMetrics("probook")
	readState := notifier.NewReadStateStore(kvStore, notifier.ReadStateConfig{
		Retention: cfg.Notifier.ReadStateRetention,
		MaxIDs:    cfg.Notifier.ReadStateMaxIDs,
		TrimTo:    cfg.Notifier.ReadStateTrimTo,
	}, appLogger)
	notifierSvc := notifier.NewService(
		notifier.ServiceConfig{
			Controller: notifier.Config{
				PollInterval:  cfg.Notifier.PollInterval,
				SnapshotLimit: cfg.Notifier.SnapshotLimit,
				FetchLimit:    cfg.Notifier.FetchLimit,
			},
			FeedCacheTTL: cfg.Notifier.FeedCacheTTL,
		},
		notifier.NewSnapshotReader(appointmentRepo, invoiceRepo),
		notificationRepo,
		readState,
		appLogger,
		m,
	)
	defer notifierSvc.Shutdown()

	// HTTP surface
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	r := router.NewRouter(
		router.Config{
			RateLimitRPS:   50,
			RateLimitBurst: 100,
			CORS:           middleware.DefaultCORSConfig(),
		},
		appLogger,
		authMiddleware,
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(db),
		clientHandler.NewHandler(clientSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		invoiceHandler.NewHandler(invoiceSvc),
		notificationHandler.NewHandler(notifierSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited properly")
}
