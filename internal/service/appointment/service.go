package appointment

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
	CreateAppointment(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	GetAppointment(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, userID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, userID, id uuid.UUID) error
	ListAppointments(ctx context.Context, userID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type service struct {
	repo             repository.AppointmentRepository
	clientRepo       repository.ClientRepository
	notificationRepo repository.NotificationRepository
	logger           zerolog.Logger
}

func NewService(repo repository.AppointmentRepository, clientRepo repository.ClientRepository,
	notificationRepo repository.NotificationRepository, logger zerolog.Logger) Service {
	return &service{
		repo:             repo,
		clientRepo:       clientRepo,
		notificationRepo: notificationRepo,
		logger:           logger.With().Str("component", "appointment_service").Logger(),
	}
}

func (s *service) CreateAppointment(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	client, err := s.clientRepo.Get(ctx, req.ClientID)
	if err != nil || client.UserID != userID {
		return nil, apperrors.NewNotFound("client", err)
	}

	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewBadRequest("end time must be after start time", nil)
	}

	overlapping, err := s.repo.ListBetween(ctx, userID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check for conflicts: %w", err)
	}
	for _, other := range overlapping {
		if other.Status == model.AppointmentStatusScheduled {
			return nil, apperrors.NewConflict("appointment overlaps an existing session", nil)
		}
	}

	now := time.Now()
	appointment := &model.Appointment{
		ID:        uuid.New(),
		UserID:    userID,
		ClientID:  req.ClientID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.AppointmentStatusScheduled,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	appointment.ClientName = client.Name
	return appointment, nil
}

func (s *service) GetAppointment(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("appointment", err)
	}
	if appointment.UserID != userID {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	return appointment, nil
}

func (s *service) UpdateAppointment(ctx context.Context, userID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.GetAppointment(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	wasScheduled := appointment.Status == model.AppointmentStatusScheduled

	if req.StartTime != nil {
		appointment.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appointment.EndTime = *req.EndTime
	}
	if !appointment.EndTime.After(appointment.StartTime) {
		return nil, apperrors.NewBadRequest("end time must be after start time", nil)
	}
	if req.Status != nil {
		switch *req.Status {
		case model.AppointmentStatusScheduled, model.AppointmentStatusCompleted,
			model.AppointmentStatusCancelled, model.AppointmentStatusNoShow:
			appointment.Status = *req.Status
		default:
			return nil, apperrors.NewBadRequest("invalid appointment status", nil)
		}
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	appointment.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if wasScheduled && appointment.Status == model.AppointmentStatusCancelled {
		s.recordCancellation(ctx, appointment)
	}

	return appointment, nil
}

func (s *service) DeleteAppointment(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetAppointment(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

func (s *service) ListAppointments(ctx context.Context, userID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// recordCancellation persists a durable feed entry. The cancellation itself
// already succeeded, so failures here are logged and swallowed.
func (s *service) recordCancellation(ctx context.Context, appointment *model.Appointment) {
	name := appointment.ClientName
	if name == "" {
		if client, err := s.clientRepo.Get(ctx, appointment.ClientID); err == nil {
			name = client.Name
		}
	}

	relatedType := "appointment"
	notification := &model.Notification{
		ID:          uuid.New(),
		UserID:      appointment.UserID,
		Category:    model.CategoryAppointmentCancelled,
		Title:       "Session cancelled",
		Message:     fmt.Sprintf("Your session with %s on %s was cancelled", name, appointment.StartTime.Format("Jan 2 at 3:04 PM")),
		RelatedID:   &appointment.ID,
		RelatedType: &relatedType,
		CreatedAt:   time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", appointment.ID.String()).
			Msg("failed to record cancellation notification")
	}
}
