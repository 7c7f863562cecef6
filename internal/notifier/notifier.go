// Package notifier implements the notification aggregation engine: it
// reconciles durable notification rows with ephemeral items derived on
// the fly from upcoming appointments and outstanding invoices, and
// serves a single deduplicated feed per user.
package notifier

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/internal/repository"
)

// Snapshot is the bounded slice of domain state ephemeral notifications
// are derived from.
type Snapshot struct {
	Appointments []*model.Appointment
	Invoices     []*model.Invoice
}

// SnapshotReader provides the read-only domain queries behind a
// snapshot. The two populations are fetched separately so one failing
// query only empties its own population for that cycle.
type SnapshotReader interface {
	ListUpcomingAppointments(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*model.Appointment, error)
	ListOutstandingInvoices(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Invoice, error)
}

// Gateway is the durable notification backing store.
type Gateway interface {
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type snapshotReader struct {
	appointments repository.AppointmentRepository
	invoices     repository.InvoiceRepository
}

// NewSnapshotReader adapts the domain repositories to the engine's
// snapshot queries.
func NewSnapshotReader(appointments repository.AppointmentRepository, invoices repository.InvoiceRepository) SnapshotReader {
	return &snapshotReader{appointments: appointments, invoices: invoices}
}

func (r *snapshotReader) ListUpcomingAppointments(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*model.Appointment, error) {
	return r.appointments.ListUpcoming(ctx, userID, now, limit)
}

func (r *snapshotReader) ListOutstandingInvoices(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Invoice, error) {
	return r.invoices.ListOutstanding(ctx, userID, limit)
}

// IsEphemeralID reports whether id belongs to the derived namespace.
// Derived ids are category:subtype:source composites; durable ids are
// bare UUIDs and never contain a colon.
func IsEphemeralID(id string) bool {
	return strings.Contains(id, ":")
}
