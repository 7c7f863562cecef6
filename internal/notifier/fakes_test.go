package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/pkg/kv"
)

var errQuota = errors.New("storage quota exceeded")

type fakeKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	failSets int
	sets     int
	deletes  int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return val, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.failSets > 0 {
		f.failSets--
		return errQuota
	}
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.data, key)
	return nil
}

func (f *fakeKV) put(key string, value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

type stubReader struct {
	mu           sync.Mutex
	appointments []*model.Appointment
	invoices     []*model.Invoice
	apptErr      error
	invErr       error
}

func (s *stubReader) set(appointments []*model.Appointment, invoices []*model.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = appointments
	s.invoices = invoices
}

func (s *stubReader) ListUpcomingAppointments(_ context.Context, _ uuid.UUID, _ time.Time, _ int) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.apptErr != nil {
		return nil, s.apptErr
	}
	return s.appointments, nil
}

func (s *stubReader) ListOutstandingInvoices(_ context.Context, _ uuid.UUID, _ int) ([]*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invErr != nil {
		return nil, s.invErr
	}
	return s.invoices, nil
}

type stubGateway struct {
	mu            sync.Mutex
	notifications []*model.Notification
	listErr       error
	markedRead    []uuid.UUID
	markedAllFor  []uuid.UUID
}

func (s *stubGateway) ListRecent(_ context.Context, _ uuid.UUID, _ int) ([]*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.notifications, nil
}

func (s *stubGateway) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedRead = append(s.markedRead, id)
	return nil
}

func (s *stubGateway) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedAllFor = append(s.markedAllFor, userID)
	return nil
}

func (s *stubGateway) readIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.markedRead))
	copy(out, s.markedRead)
	return out
}

func (s *stubGateway) allReadFor() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, len(s.markedAllFor))
	copy(out, s.markedAllFor)
	return out
}
