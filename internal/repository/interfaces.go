package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
)

type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
	}

	ClientRepository interface {
		Create(ctx context.Context, client *model.Client) error
		Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
		Update(ctx context.Context, client *model.Client) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.Client, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListUpcoming returns scheduled appointments starting at or after
		// now, ascending by start time, bounded by limit.
		ListUpcoming(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*model.Appointment, error)
		ListBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*model.Appointment, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		Update(ctx context.Context, invoice *model.Invoice) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error)
		// ListOutstanding returns sent and overdue invoices ascending by
		// due date, bounded by limit.
		ListOutstanding(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Invoice, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		// ListRecent returns the user's durable notifications newest
		// first, bounded by limit.
		ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) error
		DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	}
)
