package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/probook/probook-api/internal/email"
	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/internal/repository"
	"github.com/probook/probook-api/pkg/metrics"
)

// DigestConfig tunes the reminder digest sweep.
type DigestConfig struct {
	// Interval is how often the worker wakes up to check whether a
	// digest is due.
	Interval time.Duration
	// SendHour is the local hour (0-23) at which digests go out.
	SendHour int
	// PruneAfter bounds how long read durable notifications are kept.
	PruneAfter time.Duration
	// MaxItemsPerUser caps the rows pulled per user per digest.
	MaxItemsPerUser int
}

// DigestWorker emails each provider a morning summary of overdue
// invoices and next-day sessions, and prunes aged-out notifications.
type DigestWorker struct {
	userRepo         repository.UserRepository
	appointmentRepo  repository.AppointmentRepository
	invoiceRepo      repository.InvoiceRepository
	notificationRepo repository.NotificationRepository
	emailSvc         email.Service
	config           DigestConfig
	logger           zerolog.Logger
	metrics          *metrics.Metrics

	lastSent string
}

func NewDigestWorker(
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	invoiceRepo repository.InvoiceRepository,
	notificationRepo repository.NotificationRepository,
	emailSvc email.Service,
	config DigestConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *DigestWorker {
	if config.Interval <= 0 {
		panic("Interval must be greater than 0")
	}
	if config.SendHour < 0 || config.SendHour > 23 {
		panic("SendHour must be between 0 and 23")
	}
	if config.MaxItemsPerUser <= 0 {
		config.MaxItemsPerUser = 20
	}

	return &DigestWorker{
		userRepo:         userRepo,
		appointmentRepo:  appointmentRepo,
		invoiceRepo:      invoiceRepo,
		notificationRepo: notificationRepo,
		emailSvc:         emailSvc,
		config:           config,
		logger:           logger.With().Str("component", "digest_worker").Logger(),
		metrics:          m,
	}
}

func (w *DigestWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info().Msg("starting digest worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("shutting down digest worker")
			return
		case <-ticker.C:
			if err := w.runOnce(ctx, time.Now()); err != nil {
				w.logger.Error().Err(err).Msg("digest sweep failed")
			}
		}
	}
}

// runOnce sends digests if the send hour has arrived and none went out
// today, then prunes aged-out notifications.
func (w *DigestWorker) runOnce(ctx context.Context, now time.Time) error {
	if w.config.PruneAfter > 0 {
		w.prune(ctx, now)
	}

	today := now.Format("2006-01-02")
	if now.Hour() < w.config.SendHour || w.lastSent == today {
		return nil
	}

	users, err := w.userRepo.List(ctx)
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("list_users", "error").Inc()
		return fmt.Errorf("failed to list users: %w", err)
	}
	w.metrics.DatabaseOperations.WithLabelValues("list_users", "success").Inc()

	for _, user := range users {
		if err := w.sendDigest(ctx, user, now); err != nil {
			w.logger.Warn().Err(err).
				Str("user_id", user.ID.String()).
				Msg("failed to send digest")
		}
	}

	w.lastSent = today
	return nil
}

func (w *DigestWorker) sendDigest(ctx context.Context, user *model.User, now time.Time) error {
	loc := time.UTC
	if user.Timezone != "" {
		if l, err := time.LoadLocation(user.Timezone); err == nil {
			loc = l
		}
	}
	local := now.In(loc)

	tomorrowStart := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	tomorrowEnd := tomorrowStart.Add(24 * time.Hour)

	sessions, err := w.appointmentRepo.ListBetween(ctx, user.ID, tomorrowStart, tomorrowEnd)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	outstanding, err := w.invoiceRepo.ListOutstanding(ctx, user.ID, w.config.MaxItemsPerUser)
	if err != nil {
		return fmt.Errorf("failed to list outstanding invoices: %w", err)
	}

	var overdue []*model.Invoice
	for _, inv := range outstanding {
		if inv.Status == model.InvoiceStatusOverdue ||
			(inv.DueDate != nil && inv.DueDate.Before(now)) {
			overdue = append(overdue, inv)
		}
	}

	if len(sessions) == 0 && len(overdue) == 0 {
		return nil
	}

	body := w.composeBody(user, sessions, overdue, loc)
	subject := fmt.Sprintf("Your Probook summary for %s", tomorrowStart.Format("Monday, Jan 2"))

	if err := w.emailSvc.SendDigest(ctx, user.Email, subject, body); err != nil {
		w.metrics.DigestsFailed.Inc()
		return fmt.Errorf("failed to send digest email: %w", err)
	}
	w.metrics.DigestsSent.Inc()
	return nil
}

func (w *DigestWorker) composeBody(user *model.User, sessions []*model.Appointment, overdue []*model.Invoice, loc *time.Location) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<p>Hi %s,</p>", user.Name)

	if len(sessions) > 0 {
		b.WriteString("<h3>Tomorrow's sessions</h3><ul>")
		for i, session := range sessions {
			if i >= w.config.MaxItemsPerUser {
				break
			}
			fmt.Fprintf(&b, "<li>%s with %s</li>",
				session.StartTime.In(loc).Format("3:04 PM"), session.ClientName)
		}
		b.WriteString("</ul>")
	}

	if len(overdue) > 0 {
		b.WriteString("<h3>Overdue invoices</h3><ul>")
		for i, inv := range overdue {
			if i >= w.config.MaxItemsPerUser {
				break
			}
			fmt.Fprintf(&b, "<li>%s for %s ($%.2f)</li>", inv.Number, inv.ClientName, inv.Amount)
		}
		b.WriteString("</ul>")
	}

	return b.String()
}

func (w *DigestWorker) prune(ctx context.Context, now time.Time) {
	deleted, err := w.notificationRepo.DeleteOlderThan(ctx, now.Add(-w.config.PruneAfter))
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("prune_notifications", "error").Inc()
		w.logger.Warn().Err(err).Msg("failed to prune notifications")
		return
	}
	w.metrics.DatabaseOperations.WithLabelValues("prune_notifications", "success").Inc()
	if deleted > 0 {
		w.logger.Info().Int64("deleted", deleted).Msg("pruned aged-out notifications")
	}
}
