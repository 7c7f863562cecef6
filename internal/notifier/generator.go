package notifier

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
)

const (
	// reminderWindow is how far ahead of a session its reminder fires.
	reminderWindow = time.Hour
	// dueSoonDays is the inclusive day window for invoice_due_soon.
	dueSoonDays = 3

	relatedTypeAppointment = "appointment"
	relatedTypeInvoice     = "invoice"
)

// ephemeralID builds the deterministic identity of a derived item. It
// must depend only on the source record's id and the rule that produced
// the item, never on the clock, so dismissals keep suppressing the same
// logical alert across recomputations.
func ephemeralID(category model.NotificationCategory, subtype string, sourceID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", category, subtype, sourceID)
}

// Generate derives ephemeral notification items from a domain snapshot.
// It is a pure function of the snapshot and now; malformed records are
// skipped individually.
func Generate(snapshot Snapshot, now time.Time) []model.NotificationItem {
	items := make([]model.NotificationItem, 0, len(snapshot.Appointments)+len(snapshot.Invoices))
	for _, appointment := range snapshot.Appointments {
		items = append(items, appointmentItems(appointment, now)...)
	}
	for _, invoice := range snapshot.Invoices {
		items = append(items, invoiceItems(invoice, now)...)
	}
	return items
}

// appointmentItems applies the session rules. A single session can
// yield both a reminder and an upcoming item; they carry distinct ids
// so the user can dismiss them independently.
func appointmentItems(appointment *model.Appointment, now time.Time) []model.NotificationItem {
	if appointment == nil || appointment.StartTime.IsZero() {
		return nil
	}
	if appointment.Status != model.AppointmentStatusScheduled {
		return nil
	}

	var items []model.NotificationItem
	start := appointment.StartTime.In(now.Location())

	if until := start.Sub(now); until >= 0 && until <= reminderWindow {
		items = append(items, model.NotificationItem{
			ID:          ephemeralID(model.CategoryAppointmentReminder, "1h", appointment.ID),
			Category:    model.CategoryAppointmentReminder,
			Title:       "Session starting soon",
			Message:     fmt.Sprintf("Your session with %s starts in %d minutes", appointment.ClientName, int(until.Minutes())),
			RelatedID:   appointment.ID.String(),
			RelatedType: relatedTypeAppointment,
			CreatedAt:   appointment.StartTime,
			Ephemeral:   true,
		})
	}

	switch {
	case sameDay(start, now):
		items = append(items, model.NotificationItem{
			ID:          ephemeralID(model.CategoryAppointmentUpcoming, "today", appointment.ID),
			Category:    model.CategoryAppointmentUpcoming,
			Title:       "Session today",
			Message:     fmt.Sprintf("You have a session with %s today at %s", appointment.ClientName, start.Format("3:04 PM")),
			RelatedID:   appointment.ID.String(),
			RelatedType: relatedTypeAppointment,
			CreatedAt:   appointment.StartTime,
			Ephemeral:   true,
		})
	case sameDay(start, now.AddDate(0, 0, 1)):
		items = append(items, model.NotificationItem{
			ID:          ephemeralID(model.CategoryAppointmentUpcoming, "tomorrow", appointment.ID),
			Category:    model.CategoryAppointmentUpcoming,
			Title:       "Session tomorrow",
			Message:     fmt.Sprintf("You have a session with %s tomorrow at %s", appointment.ClientName, start.Format("3:04 PM")),
			RelatedID:   appointment.ID.String(),
			RelatedType: relatedTypeAppointment,
			CreatedAt:   appointment.StartTime,
			Ephemeral:   true,
		})
	}

	return items
}

// invoiceItems applies the billing rules. Overdue wins over due-soon
// for the same invoice.
func invoiceItems(invoice *model.Invoice, now time.Time) []model.NotificationItem {
	if invoice == nil || invoice.DueDate == nil {
		return nil
	}
	if invoice.Status != model.InvoiceStatusSent && invoice.Status != model.InvoiceStatusOverdue {
		return nil
	}

	due := invoice.DueDate.In(now.Location())
	days := daysBetween(now, due)

	overdue := invoice.Status == model.InvoiceStatusOverdue ||
		(invoice.Status == model.InvoiceStatusSent && days < 0)
	if overdue {
		return []model.NotificationItem{{
			ID:          ephemeralID(model.CategoryInvoiceOverdue, "due", invoice.ID),
			Category:    model.CategoryInvoiceOverdue,
			Title:       "Invoice overdue",
			Message:     fmt.Sprintf("Invoice %s for %s is overdue ($%.2f)", invoice.Number, invoice.ClientName, invoice.Amount),
			RelatedID:   invoice.ID.String(),
			RelatedType: relatedTypeInvoice,
			CreatedAt:   *invoice.DueDate,
			Ephemeral:   true,
		}}
	}

	if days >= 0 && days <= dueSoonDays {
		return []model.NotificationItem{{
			ID:          ephemeralID(model.CategoryInvoiceDueSoon, "due", invoice.ID),
			Category:    model.CategoryInvoiceDueSoon,
			Title:       "Invoice due soon",
			Message:     fmt.Sprintf("Invoice %s for %s is %s ($%.2f)", invoice.Number, invoice.ClientName, dueIn(days), invoice.Amount),
			RelatedID:   invoice.ID.String(),
			RelatedType: relatedTypeInvoice,
			CreatedAt:   *invoice.DueDate,
			Ephemeral:   true,
		}}
	}

	return nil
}

func dueIn(days int) string {
	switch days {
	case 0:
		return "due today"
	case 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// daysBetween counts calendar days from now's date to t's date,
// negative when t is in the past.
func daysBetween(now, t time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
	return int(tDay.Sub(nowDay) / (24 * time.Hour))
}
