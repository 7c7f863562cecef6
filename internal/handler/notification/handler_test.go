package notification

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/internal/notifier"
)

type fakeFeeder struct {
	feed       notifier.Feed
	refreshed  []uuid.UUID
	dismissed  []string
	dismissAll []uuid.UUID
}

func (f *fakeFeeder) Feed(userID uuid.UUID) notifier.Feed { return f.feed }

func (f *fakeFeeder) Refresh(userID uuid.UUID) {
	f.refreshed = append(f.refreshed, userID)
}

func (f *fakeFeeder) Dismiss(userID uuid.UUID, id string) {
	f.dismissed = append(f.dismissed, id)
}

func (f *fakeFeeder) DismissAll(userID uuid.UUID) {
	f.dismissAll = append(f.dismissAll, userID)
}

func setupRouter(feeder Feeder, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID.String())
	})
	NewHandler(feeder).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestGetFeed(t *testing.T) {
	userID := uuid.New()
	feeder := &fakeFeeder{
		feed: notifier.Feed{
			Notifications: []model.NotificationItem{
				{
					ID:        "appointment_reminder:1h:" + uuid.New().String(),
					Category:  model.CategoryAppointmentReminder,
					Title:     "Upcoming session",
					CreatedAt: time.Now(),
					Ephemeral: true,
				},
			},
			UnreadCount: 1,
		},
	}
	r := setupRouter(feeder, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)
	assert.Contains(t, w.Body.String(), "appointment_reminder")
}

func TestGetFeedUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(&fakeFeeder{}).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh(t *testing.T) {
	userID := uuid.New()
	feeder := &fakeFeeder{}
	r := setupRouter(feeder, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/refresh", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, feeder.refreshed, 1)
	assert.Equal(t, userID, feeder.refreshed[0])
}

func TestDismiss(t *testing.T) {
	userID := uuid.New()
	feeder := &fakeFeeder{}
	r := setupRouter(feeder, userID)

	id := "invoice_overdue:due:" + uuid.New().String()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+id+"/dismiss", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, feeder.dismissed, 1)
	assert.Equal(t, id, feeder.dismissed[0])
}

func TestDismissAll(t *testing.T) {
	userID := uuid.New()
	feeder := &fakeFeeder{}
	r := setupRouter(feeder, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/dismiss-all", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, feeder.dismissAll, 1)
	assert.Equal(t, userID, feeder.dismissAll[0])
}
