package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/internal/repository"
	apperrors "github.com/probook/probook-api/pkg/errors"
)

type Service interface {
	CreateClient(ctx context.Context, userID uuid.UUID, req *model.CreateClientRequest) (*model.Client, error)
	GetClient(ctx context.Context, userID, id uuid.UUID) (*model.Client, error)
	UpdateClient(ctx context.Context, userID, id uuid.UUID, req *model.UpdateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, userID, id uuid.UUID) error
	ListClients(ctx context.Context, userID uuid.UUID) ([]*model.Client, error)
}

type service struct {
	repo repository.ClientRepository
}

func NewService(repo repository.ClientRepository) Service {
	return &service{repo: repo}
}

func (s *service) CreateClient(ctx context.Context, userID uuid.UUID, req *model.CreateClientRequest) (*model.Client, error) {
	now := time.Now()
	client := &model.Client{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		Status:    model.ClientStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (s *service) GetClient(ctx context.Context, userID, id uuid.UUID) (*model.Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("client", err)
	}
	if client.UserID != userID {
		return nil, apperrors.NewNotFound("client", nil)
	}
	return client, nil
}

func (s *service) UpdateClient(ctx context.Context, userID, id uuid.UUID, req *model.UpdateClientRequest) (*model.Client, error) {
	client, err := s.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.Status != nil {
		if *req.Status != model.ClientStatusActive && *req.Status != model.ClientStatusArchived {
			return nil, apperrors.NewBadRequest("invalid client status", nil)
		}
		client.Status = *req.Status
	}
	client.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *service) DeleteClient(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *service) ListClients(ctx context.Context, userID uuid.UUID) ([]*model.Client, error) {
	clients, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}
