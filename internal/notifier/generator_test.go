package notifier

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probook/probook-api/internal/model"
)

func scheduledAppointment(start time.Time, clientName string) *model.Appointment {
	return &model.Appointment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ClientID:   uuid.New(),
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     model.AppointmentStatusScheduled,
		ClientName: clientName,
	}
}

func sentInvoice(due time.Time, amount float64) *model.Invoice {
	return &model.Invoice{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ClientID:   uuid.New(),
		Number:     "INV-0042",
		Amount:     amount,
		Status:     model.InvoiceStatusSent,
		DueDate:    &due,
		ClientName: "Dana",
	}
}

func categories(items []model.NotificationItem) []model.NotificationCategory {
	out := make([]model.NotificationCategory, len(items))
	for i, item := range items {
		out[i] = item.Category
	}
	return out
}

func TestGenerateSessionWithinTheHour(t *testing.T) {
	now := time.Date(2025, 6, 12, 14, 0, 0, 0, time.UTC)
	appointment := scheduledAppointment(now.Add(30*time.Minute), "Alex")

	items := Generate(Snapshot{Appointments: []*model.Appointment{appointment}}, now)

	// Same-day session 30 minutes out yields both a reminder and an
	// upcoming-today item, independently dismissable.
	require.Len(t, items, 2)
	assert.ElementsMatch(t,
		[]model.NotificationCategory{model.CategoryAppointmentReminder, model.CategoryAppointmentUpcoming},
		categories(items))
	for _, item := range items {
		assert.Equal(t, appointment.ID.String(), item.RelatedID)
		assert.Equal(t, "appointment", item.RelatedType)
		assert.True(t, item.Ephemeral)
		assert.Equal(t, appointment.StartTime, item.CreatedAt)
	}
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestGenerateSessionRules(t *testing.T) {
	now := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		start  time.Time
		status model.AppointmentStatus
		want   []model.NotificationCategory
	}{
		{
			name:   "starts in exactly one hour",
			start:  now.Add(time.Hour),
			status: model.AppointmentStatusScheduled,
			want:   []model.NotificationCategory{model.CategoryAppointmentReminder, model.CategoryAppointmentUpcoming},
		},
		{
			name:   "later today, outside the reminder window",
			start:  now.Add(5 * time.Hour),
			status: model.AppointmentStatusScheduled,
			want:   []model.NotificationCategory{model.CategoryAppointmentUpcoming},
		},
		{
			name:   "tomorrow",
			start:  now.AddDate(0, 0, 1),
			status: model.AppointmentStatusScheduled,
			want:   []model.NotificationCategory{model.CategoryAppointmentUpcoming},
		},
		{
			name:   "next week",
			start:  now.AddDate(0, 0, 7),
			status: model.AppointmentStatusScheduled,
			want:   nil,
		},
		{
			name:   "already started",
			start:  now.Add(-time.Minute),
			status: model.AppointmentStatusScheduled,
			want:   []model.NotificationCategory{model.CategoryAppointmentUpcoming},
		},
		{
			name:   "cancelled sessions are ignored",
			start:  now.Add(30 * time.Minute),
			status: model.AppointmentStatusCancelled,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appointment := scheduledAppointment(tt.start, "Alex")
			appointment.Status = tt.status

			items := Generate(Snapshot{Appointments: []*model.Appointment{appointment}}, now)
			assert.ElementsMatch(t, tt.want, categories(items))
		})
	}
}

func TestGenerateInvoiceRules(t *testing.T) {
	now := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		due     time.Time
		status  model.InvoiceStatus
		want    model.NotificationCategory
		message string
	}{
		{
			name:    "sent, due today",
			due:     now.Add(6 * time.Hour),
			status:  model.InvoiceStatusSent,
			want:    model.CategoryInvoiceDueSoon,
			message: "due today",
		},
		{
			name:    "sent, due tomorrow",
			due:     now.AddDate(0, 0, 1),
			status:  model.InvoiceStatusSent,
			want:    model.CategoryInvoiceDueSoon,
			message: "due tomorrow",
		},
		{
			name:    "sent, due in three days",
			due:     now.AddDate(0, 0, 3),
			status:  model.InvoiceStatusSent,
			want:    model.CategoryInvoiceDueSoon,
			message: "due in 3 days",
		},
		{
			name:   "sent, due yesterday is overdue, not due-soon",
			due:    now.AddDate(0, 0, -1),
			status: model.InvoiceStatusSent,
			want:   model.CategoryInvoiceOverdue,
		},
		{
			name:   "overdue status wins regardless of due date",
			due:    now.AddDate(0, 0, 2),
			status: model.InvoiceStatusOverdue,
			want:   model.CategoryInvoiceOverdue,
		},
		{
			name:   "sent, due in four days is quiet",
			due:    now.AddDate(0, 0, 4),
			status: model.InvoiceStatusSent,
			want:   "",
		},
		{
			name:   "paid invoices are ignored",
			due:    now,
			status: model.InvoiceStatusPaid,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := sentInvoice(tt.due, 150)
			invoice.Status = tt.status

			items := Generate(Snapshot{Invoices: []*model.Invoice{invoice}}, now)
			if tt.want == "" {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].Category)
			assert.Equal(t, invoice.ID.String(), items[0].RelatedID)
			if tt.message != "" {
				assert.Contains(t, items[0].Message, tt.message)
			}
		})
	}
}

func TestGenerateSkipsMalformedRecords(t *testing.T) {
	now := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	good := sentInvoice(now, 80)
	noDueDate := sentInvoice(now, 120)
	noDueDate.DueDate = nil
	noStart := scheduledAppointment(time.Time{}, "Alex")

	items := Generate(Snapshot{
		Appointments: []*model.Appointment{nil, noStart},
		Invoices:     []*model.Invoice{nil, noDueDate, good},
	}, now)

	require.Len(t, items, 1)
	assert.Equal(t, good.ID.String(), items[0].RelatedID)
}

func TestGenerateIsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
	snapshot := Snapshot{
		Appointments: []*model.Appointment{
			scheduledAppointment(now.Add(20*time.Minute), "Alex"),
			scheduledAppointment(now.AddDate(0, 0, 1), "Blair"),
		},
		Invoices: []*model.Invoice{
			sentInvoice(now.AddDate(0, 0, 2), 90),
			sentInvoice(now.AddDate(0, 0, -3), 200),
		},
	}

	first := Generate(snapshot, now)
	second := Generate(snapshot, now)

	assert.Equal(t, first, second)
}
