package model

import (
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusArchived ClientStatus = "archived"
)

type Client struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	UserID    uuid.UUID    `db:"user_id" json:"user_id"`
	Name      string       `db:"name" json:"name"`
	Email     string       `db:"email" json:"email,omitempty"`
	Phone     string       `db:"phone" json:"phone,omitempty"`
	Notes     string       `db:"notes" json:"notes,omitempty"`
	Status    ClientStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"max=30"`
	Notes string `json:"notes" binding:"max=2000"`
}

type UpdateClientRequest struct {
	Name   *string       `json:"name"`
	Email  *string       `json:"email"`
	Phone  *string       `json:"phone"`
	Notes  *string       `json:"notes"`
	Status *ClientStatus `json:"status"`
}
