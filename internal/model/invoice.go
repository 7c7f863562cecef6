package model

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type Invoice struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	UserID    uuid.UUID     `db:"user_id" json:"user_id"`
	ClientID  uuid.UUID     `db:"client_id" json:"client_id"`
	Number    string        `db:"number" json:"number"`
	Amount    float64       `db:"amount" json:"amount"`
	Status    InvoiceStatus `db:"status" json:"status"`
	DueDate   *time.Time    `db:"due_date" json:"due_date,omitempty"`
	IssuedAt  *time.Time    `db:"issued_at" json:"issued_at,omitempty"`
	PaidAt    *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`

	// ClientName is joined in on reads.
	ClientName string `db:"client_name" json:"client_name,omitempty"`
}

type CreateInvoiceRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
	Amount   float64   `json:"amount" binding:"required,gt=0"`
	DueDate  time.Time `json:"due_date" binding:"required"`
}

type UpdateInvoiceRequest struct {
	Amount  *float64       `json:"amount"`
	Status  *InvoiceStatus `json:"status"`
	DueDate *time.Time     `json:"due_date"`
}
