package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probook/probook-api/internal/model"
)

func newMockRepo(t *testing.T) (*notificationRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &notificationRepository{db: sqlx.NewDb(db, "postgres")}, mock
}

func TestNotificationCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &model.Notification{
		UserID:   userID,
		Category: model.CategoryInvoicePaid,
		Title:    "Invoice paid",
		Message:  "Invoice INV-1 for Jordan was paid ($120.00)",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationListRecentOrdersUnreadFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	readAt := time.Now().Add(-time.Hour)
	columns := []string{"id", "user_id", "category", "title", "message",
		"related_id", "related_type", "read_at", "created_at"}

	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE user_id = (.+) ORDER BY \\(read_at IS NULL\\) DESC, created_at DESC LIMIT 50").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.New(), userID, "appointment_cancelled", "Session cancelled", "msg", nil, nil, nil, time.Now()).
			AddRow(uuid.New(), userID, "invoice_paid", "Invoice paid", "msg", nil, nil, &readAt, time.Now().Add(-2*time.Hour)))

	notifications, err := repo.ListRecent(context.Background(), userID, 50)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.False(t, notifications[0].Item().Read)
	assert.True(t, notifications[1].Item().Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkRead(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE notifications SET read_at = (.+) WHERE id = (.+) AND read_at IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkAllRead(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	mock.ExpectExec("UPDATE notifications SET read_at = (.+) WHERE user_id = (.+) AND read_at IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.MarkAllRead(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationDeleteOlderThan(t *testing.T) {
	repo, mock := newMockRepo(t)

	cutoff := time.Now().Add(-90 * 24 * time.Hour)
	mock.ExpectExec("DELETE FROM notifications WHERE created_at < (.+) AND read_at IS NOT NULL").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
