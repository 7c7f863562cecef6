package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, user_id, client_id, start_time, end_time, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.UserID,
		appointment.ClientID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.client_id, a.start_time, a.end_time,
			   a.status, a.notes, a.created_at, a.updated_at,
			   c.name AS client_name
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		WHERE a.id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, status = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM appointments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, userID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.client_id, a.start_time, a.end_time,
			   a.status, a.notes, a.created_at, a.updated_at,
			   c.name AS client_name
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		WHERE a.user_id = $1
	`
	args := []interface{}{userID}
	argCount := 2

	if filters != nil {
		if filters.ClientID != uuid.Nil {
			query += fmt.Sprintf(" AND a.client_id = $%d", argCount)
			args = append(args, filters.ClientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND a.status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND a.start_time >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND a.start_time <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY a.start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.client_id, a.start_time, a.end_time,
			   a.status, a.notes, a.created_at, a.updated_at,
			   c.name AS client_name
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		WHERE a.user_id = $1
		AND a.status = $2
		AND a.start_time >= $3
		ORDER BY a.start_time ASC
		LIMIT $4
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, userID, model.AppointmentStatusScheduled, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.user_id, a.client_id, a.start_time, a.end_time,
			   a.status, a.notes, a.created_at, a.updated_at,
			   c.name AS client_name
		FROM appointments a
		JOIN clients c ON c.id = a.client_id
		WHERE a.user_id = $1
		AND a.status = $2
		AND a.start_time >= $3
		AND a.start_time < $4
		ORDER BY a.start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, userID, model.AppointmentStatusScheduled, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments between: %w", err)
	}
	return appointments, nil
}
