package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
)

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, user_id, client_id, number, amount, status, due_date,
			issued_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = time.Now()
	if invoice.Status == "" {
		invoice.Status = model.InvoiceStatusDraft
	}

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.UserID,
		invoice.ClientID,
		invoice.Number,
		invoice.Amount,
		invoice.Status,
		invoice.DueDate,
		invoice.IssuedAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT i.id, i.user_id, i.client_id, i.number, i.amount, i.status,
			   i.due_date, i.issued_at, i.paid_at, i.created_at, i.updated_at,
			   c.name AS client_name
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1
	`
	var invoice model.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	query := `
		UPDATE invoices
		SET amount = $1, status = $2, due_date = $3, issued_at = $4,
			paid_at = $5, updated_at = $6
		WHERE id = $7
	`
	invoice.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		invoice.Amount,
		invoice.Status,
		invoice.DueDate,
		invoice.IssuedAt,
		invoice.PaidAt,
		invoice.UpdatedAt,
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice not found")
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice not found")
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error) {
	query := `
		SELECT i.id, i.user_id, i.client_id, i.number, i.amount, i.status,
			   i.due_date, i.issued_at, i.paid_at, i.created_at, i.updated_at,
			   c.name AS client_name
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
	`
	var invoices []*model.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) ListOutstanding(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Invoice, error) {
	query := `
		SELECT i.id, i.user_id, i.client_id, i.number, i.amount, i.status,
			   i.due_date, i.issued_at, i.paid_at, i.created_at, i.updated_at,
			   c.name AS client_name
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.user_id = $1
		AND i.status IN ($2, $3)
		ORDER BY i.due_date ASC
		LIMIT $4
	`
	var invoices []*model.Invoice
	err := r.db.SelectContext(ctx, &invoices, query,
		userID, model.InvoiceStatusSent, model.InvoiceStatusOverdue, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding invoices: %w", err)
	}
	return invoices, nil
}
