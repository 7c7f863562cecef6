package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/internal/repository"
	apperrors "github.com/probook/probook-api/pkg/errors"
)

type Service interface {
	CreateInvoice(ctx context.Context, userID uuid.UUID, req *model.CreateInvoiceRequest) (*model.Invoice, error)
	GetInvoice(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, userID, id uuid.UUID, req *model.UpdateInvoiceRequest) (*model.Invoice, error)
	SendInvoice(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error)
	MarkPaid(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error)
	DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error
	ListInvoices(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error)
}

type service struct {
	repo             repository.InvoiceRepository
	clientRepo       repository.ClientRepository
	notificationRepo repository.NotificationRepository
	logger           zerolog.Logger
}

func NewService(repo repository.InvoiceRepository, clientRepo repository.ClientRepository,
	notificationRepo repository.NotificationRepository, logger zerolog.Logger) Service {
	return &service{
		repo:             repo,
		clientRepo:       clientRepo,
		notificationRepo: notificationRepo,
		logger:           logger.With().Str("component", "invoice_service").Logger(),
	}
}

func (s *service) CreateInvoice(ctx context.Context, userID uuid.UUID, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	client, err := s.clientRepo.Get(ctx, req.ClientID)
	if err != nil || client.UserID != userID {
		return nil, apperrors.NewNotFound("client", err)
	}

	now := time.Now()
	dueDate := req.DueDate
	invoice := &model.Invoice{
		ID:        uuid.New(),
		UserID:    userID,
		ClientID:  req.ClientID,
		Number:    invoiceNumber(now),
		Amount:    req.Amount,
		Status:    model.InvoiceStatusDraft,
		DueDate:   &dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	invoice.ClientName = client.Name
	return invoice, nil
}

func (s *service) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("invoice", err)
	}
	if invoice.UserID != userID {
		return nil, apperrors.NewNotFound("invoice", nil)
	}
	return invoice, nil
}

func (s *service) UpdateInvoice(ctx context.Context, userID, id uuid.UUID, req *model.UpdateInvoiceRequest) (*model.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status == model.InvoiceStatusPaid || invoice.Status == model.InvoiceStatusCancelled {
		return nil, apperrors.NewConflict("invoice is closed", nil)
	}

	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, apperrors.NewBadRequest("amount must be positive", nil)
		}
		invoice.Amount = *req.Amount
	}
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}
	if req.Status != nil {
		switch *req.Status {
		case model.InvoiceStatusPaid:
			return s.MarkPaid(ctx, userID, id)
		case model.InvoiceStatusSent:
			return s.SendInvoice(ctx, userID, id)
		case model.InvoiceStatusDraft, model.InvoiceStatusOverdue, model.InvoiceStatusCancelled:
			invoice.Status = *req.Status
		default:
			return nil, apperrors.NewBadRequest("invalid invoice status", nil)
		}
	}
	invoice.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return invoice, nil
}

func (s *service) SendInvoice(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status != model.InvoiceStatusDraft {
		return nil, apperrors.NewConflict("only draft invoices can be sent", nil)
	}

	now := time.Now()
	invoice.Status = model.InvoiceStatusSent
	invoice.IssuedAt = &now
	invoice.UpdatedAt = now

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to send invoice: %w", err)
	}
	return invoice, nil
}

func (s *service) MarkPaid(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status == model.InvoiceStatusPaid {
		return invoice, nil
	}
	if invoice.Status == model.InvoiceStatusCancelled {
		return nil, apperrors.NewConflict("invoice is cancelled", nil)
	}

	now := time.Now()
	invoice.Status = model.InvoiceStatusPaid
	invoice.PaidAt = &now
	invoice.UpdatedAt = now

	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	s.recordPayment(ctx, invoice)
	return invoice, nil
}

func (s *service) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	invoice, err := s.GetInvoice(ctx, userID, id)
	if err != nil {
		return err
	}
	if invoice.Status != model.InvoiceStatusDraft {
		return apperrors.NewConflict("only draft invoices can be deleted", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

func (s *service) ListInvoices(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error) {
	invoices, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// recordPayment persists a durable feed entry. The payment already
// succeeded, so failures here are logged and swallowed.
func (s *service) recordPayment(ctx context.Context, invoice *model.Invoice) {
	name := invoice.ClientName
	if name == "" {
		if client, err := s.clientRepo.Get(ctx, invoice.ClientID); err == nil {
			name = client.Name
		}
	}

	relatedType := "invoice"
	notification := &model.Notification{
		ID:          uuid.New(),
		UserID:      invoice.UserID,
		Category:    model.CategoryInvoicePaid,
		Title:       "Invoice paid",
		Message:     fmt.Sprintf("Invoice %s for %s was paid ($%.2f)", invoice.Number, name, invoice.Amount),
		RelatedID:   &invoice.ID,
		RelatedType: &relatedType,
		CreatedAt:   time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn().Err(err).
			Str("invoice_id", invoice.ID.String()).
			Msg("failed to record payment notification")
	}
}

func invoiceNumber(t time.Time) string {
	return fmt.Sprintf("INV-%s-%s", t.Format("20060102"), uuid.New().String()[:8])
}
