package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/internal/repository"
	"github.com/probook/probook-api/pkg/metrics"
)

type fakeUserRepo struct {
	repository.UserRepository
	users []*model.User
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*model.User, error) {
	return f.users, nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	sessions []*model.Appointment
}

func (f *fakeAppointmentRepo) ListBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*model.Appointment, error) {
	return f.sessions, nil
}

type fakeInvoiceRepo struct {
	repository.InvoiceRepository
	invoices []*model.Invoice
}

func (f *fakeInvoiceRepo) ListOutstanding(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Invoice, error) {
	return f.invoices, nil
}

type fakeNotificationRepo struct {
	repository.NotificationRepository
	pruned  int
	cutoffs []time.Time
}

func (f *fakeNotificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.pruned++
	f.cutoffs = append(f.cutoffs, cutoff)
	return 3, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeEmail struct {
	sent []sentMail
}

func (f *fakeEmail) SendWelcome(ctx context.Context, to, name string) error { return nil }

func (f *fakeEmail) SendDigest(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeEmail) SendCustom(ctx context.Context, to, subject, content string) error { return nil }

func newTestWorker(users *fakeUserRepo, appts *fakeAppointmentRepo, invs *fakeInvoiceRepo,
	notifs *fakeNotificationRepo, mail *fakeEmail) *DigestWorker {
	return NewDigestWorker(users, appts, invs, notifs, mail, DigestConfig{
		Interval:        time.Hour,
		SendHour:        7,
		PruneAfter:      90 * 24 * time.Hour,
		MaxItemsPerUser: 20,
	}, zerolog.Nop(), metrics.New("test"))
}

func TestDigestSendsOverdueAndSessions(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com", Name: "Pat", Timezone: "UTC"}
	due := time.Now().Add(-48 * time.Hour)

	users := &fakeUserRepo{users: []*model.User{user}}
	appts := &fakeAppointmentRepo{sessions: []*model.Appointment{
		{ID: uuid.New(), UserID: user.ID, StartTime: time.Now().Add(26 * time.Hour), ClientName: "Jordan"},
	}}
	invs := &fakeInvoiceRepo{invoices: []*model.Invoice{
		{ID: uuid.New(), UserID: user.ID, Number: "INV-1", Amount: 120, Status: model.InvoiceStatusOverdue, DueDate: &due, ClientName: "Jordan"},
	}}
	notifs := &fakeNotificationRepo{}
	mail := &fakeEmail{}

	w := newTestWorker(users, appts, invs, notifs, mail)

	now := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	require.NoError(t, w.runOnce(context.Background(), now))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "pat@example.com", mail.sent[0].to)
	assert.Contains(t, mail.sent[0].body, "Jordan")
	assert.Contains(t, mail.sent[0].body, "INV-1")
	assert.Contains(t, mail.sent[0].body, "Overdue invoices")
	assert.Contains(t, mail.sent[0].body, "Tomorrow's sessions")
}

func TestDigestSkipsQuietUsers(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com", Name: "Pat"}

	users := &fakeUserRepo{users: []*model.User{user}}
	mail := &fakeEmail{}
	w := newTestWorker(users, &fakeAppointmentRepo{}, &fakeInvoiceRepo{}, &fakeNotificationRepo{}, mail)

	now := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	require.NoError(t, w.runOnce(context.Background(), now))

	assert.Empty(t, mail.sent)
}

func TestDigestWaitsForSendHour(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com", Name: "Pat"}
	due := time.Now().Add(-time.Hour)

	users := &fakeUserRepo{users: []*model.User{user}}
	invs := &fakeInvoiceRepo{invoices: []*model.Invoice{
		{ID: uuid.New(), Number: "INV-1", Amount: 50, Status: model.InvoiceStatusOverdue, DueDate: &due},
	}}
	mail := &fakeEmail{}
	w := newTestWorker(users, &fakeAppointmentRepo{}, invs, &fakeNotificationRepo{}, mail)

	early := time.Date(2026, 8, 30, 5, 0, 0, 0, time.UTC)
	require.NoError(t, w.runOnce(context.Background(), early))
	assert.Empty(t, mail.sent)

	onTime := time.Date(2026, 8, 30, 7, 30, 0, 0, time.UTC)
	require.NoError(t, w.runOnce(context.Background(), onTime))
	assert.Len(t, mail.sent, 1)
}

func TestDigestSendsOncePerDay(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "pat@example.com", Name: "Pat"}
	due := time.Now().Add(-time.Hour)

	users := &fakeUserRepo{users: []*model.User{user}}
	invs := &fakeInvoiceRepo{invoices: []*model.Invoice{
		{ID: uuid.New(), Number: "INV-1", Amount: 50, Status: model.InvoiceStatusOverdue, DueDate: &due},
	}}
	mail := &fakeEmail{}
	w := newTestWorker(users, &fakeAppointmentRepo{}, invs, &fakeNotificationRepo{}, mail)

	morning := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
	require.NoError(t, w.runOnce(context.Background(), morning))
	require.NoError(t, w.runOnce(context.Background(), morning.Add(2*time.Hour)))
	assert.Len(t, mail.sent, 1)

	nextDay := morning.Add(24 * time.Hour)
	require.NoError(t, w.runOnce(context.Background(), nextDay))
	assert.Len(t, mail.sent, 2)
}

func TestDigestPrunesAgedNotifications(t *testing.T) {
	notifs := &fakeNotificationRepo{}
	w := newTestWorker(&fakeUserRepo{}, &fakeAppointmentRepo{}, &fakeInvoiceRepo{}, notifs, &fakeEmail{})

	now := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	require.NoError(t, w.runOnce(context.Background(), now))

	require.Equal(t, 1, notifs.pruned)
	assert.Equal(t, now.Add(-90*24*time.Hour), notifs.cutoffs[0])
}
