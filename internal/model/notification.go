package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationCategory is the closed set of feed item kinds. Loosely
// typed payloads from storage are mapped into this enum at the
// repository boundary and never propagate past it.
type NotificationCategory string

const (
	CategoryAppointmentReminder  NotificationCategory = "appointment_reminder"
	CategoryAppointmentUpcoming  NotificationCategory = "appointment_upcoming"
	CategoryInvoiceDueSoon       NotificationCategory = "invoice_due_soon"
	CategoryInvoiceOverdue       NotificationCategory = "invoice_overdue"
	CategoryInvoicePaid          NotificationCategory = "invoice_paid"
	CategoryAppointmentCancelled NotificationCategory = "appointment_cancelled"
	CategorySystemUpdate         NotificationCategory = "system_update"
)

// Notification is a durable per-user notification row.
type Notification struct {
	ID          uuid.UUID            `db:"id" json:"id"`
	UserID      uuid.UUID            `db:"user_id" json:"user_id"`
	Category    NotificationCategory `db:"category" json:"category"`
	Title       string               `db:"title" json:"title"`
	Message     string               `db:"message" json:"message"`
	RelatedID   *uuid.UUID           `db:"related_id" json:"related_id,omitempty"`
	RelatedType *string              `db:"related_type" json:"related_type,omitempty"`
	ReadAt      *time.Time           `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
}

// Item maps a durable row into the feed unit consumed by the merger.
func (n *Notification) Item() NotificationItem {
	item := NotificationItem{
		ID:        n.ID.String(),
		Category:  n.Category,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
		Read:      n.ReadAt != nil,
	}
	if n.RelatedID != nil {
		item.RelatedID = n.RelatedID.String()
	}
	if n.RelatedType != nil {
		item.RelatedType = *n.RelatedType
	}
	return item
}

// NotificationItem is the unit the feed is made of. Durable items carry
// the backing-store primary key as ID; ephemeral items carry a
// deterministic composite id (category:subtype:source-record-id) so the
// same logical alert keeps the same identity across recomputations.
type NotificationItem struct {
	ID          string               `json:"id"`
	Category    NotificationCategory `json:"category"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	RelatedID   string               `json:"related_id,omitempty"`
	RelatedType string               `json:"related_type,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	Read        bool                 `json:"is_read"`
	Ephemeral   bool                 `json:"ephemeral"`
}
