package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/probook/probook-api/internal/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()

	statement, args, err := psql.
		Insert("notifications").
		Columns(
			"id",
			"user_id",
			"category",
			"title",
			"message",
			"related_id",
			"related_type",
			"read_at",
			"created_at").
		Values(
			notification.ID,
			notification.UserID,
			notification.Category,
			notification.Title,
			notification.Message,
			notification.RelatedID,
			notification.RelatedType,
			notification.ReadAt,
			notification.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build notification insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, statement, args...); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListRecent returns the user's durable notifications unread first,
// newest first within each group, bounded by limit.
func (r *notificationRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	statement, args, err := psql.
		Select(
			"id",
			"user_id",
			"category",
			"title",
			"message",
			"related_id",
			"related_type",
			"read_at",
			"created_at").
		From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("(read_at IS NULL) DESC", "created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build notification query: %w", err)
	}

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, statement, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	statement, args, err := psql.
		Update("notifications").
		Set("read_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"read_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark-read update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, statement, args...); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	statement, args, err := psql.
		Update("notifications").
		Set("read_at", time.Now()).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"read_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark-all-read update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, statement, args...); err != nil {
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}

// DeleteOlderThan prunes read notifications created before the cutoff.
func (r *notificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	statement, args, err := psql.
		Delete("notifications").
		Where(sq.Lt{"created_at": cutoff}).
		Where(sq.NotEq{"read_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build notification prune: %w", err)
	}

	result, err := r.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
