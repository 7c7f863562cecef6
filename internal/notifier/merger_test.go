package notifier

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probook/probook-api/internal/model"
)

func feedItem(id string, createdAt time.Time, read bool) model.NotificationItem {
	item := model.NotificationItem{
		ID:        id,
		Category:  model.CategorySystemUpdate,
		Title:     "t",
		Message:   "m",
		CreatedAt: createdAt,
		Read:      read,
	}
	if read {
		readAt := createdAt.Add(time.Minute)
		item.ReadAt = &readAt
	}
	return item
}

func TestMergeFiltersDismissedDerived(t *testing.T) {
	now := time.Now()
	derived := []model.NotificationItem{
		feedItem("appointment_reminder:1h:a", now, false),
		feedItem("appointment_upcoming:today:a", now, false),
	}
	dismissed := map[string]struct{}{"appointment_reminder:1h:a": {}}

	merged := Merge(derived, nil, dismissed)

	require.Len(t, merged, 1)
	assert.Equal(t, "appointment_upcoming:today:a", merged[0].ID)
}

func TestMergeDeduplicatesByID(t *testing.T) {
	now := time.Now()
	derived := []model.NotificationItem{feedItem("x", now, false)}
	durable := []model.NotificationItem{feedItem("x", now.Add(-time.Hour), true), feedItem("y", now, false)}

	merged := Merge(derived, durable, nil)

	require.Len(t, merged, 2)
	ids := map[string]int{}
	for _, item := range merged {
		ids[item.ID]++
	}
	assert.Equal(t, map[string]int{"x": 1, "y": 1}, ids)

	// The derived copy wins the collision.
	for _, item := range merged {
		if item.ID == "x" {
			assert.False(t, item.Read)
		}
	}
}

func TestMergeOrdersUnreadFirstThenNewest(t *testing.T) {
	base := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	durable := []model.NotificationItem{
		feedItem("old-unread", base.Add(-48*time.Hour), false),
		feedItem("new-read", base, true),
		feedItem("old-read", base.Add(-24*time.Hour), true),
	}
	derived := []model.NotificationItem{
		feedItem("new-unread", base.Add(-time.Hour), false),
	}

	merged := Merge(derived, durable, nil)

	require.Len(t, merged, 4)
	var ids []string
	for _, item := range merged {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"new-unread", "old-unread", "new-read", "old-read"}, ids)

	// Every unread item sorts before every read item regardless of
	// recency.
	lastUnread, firstRead := -1, len(merged)
	for i, item := range merged {
		if item.Read && i < firstRead {
			firstRead = i
		}
		if !item.Read {
			lastUnread = i
		}
	}
	assert.Less(t, lastUnread, firstRead)
}

func TestMergeIsIdempotent(t *testing.T) {
	base := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	var derived, durable []model.NotificationItem
	for i := 0; i < 10; i++ {
		derived = append(derived, feedItem(fmt.Sprintf("d:%d", i), base.Add(time.Duration(i)*time.Minute), false))
		durable = append(durable, feedItem(fmt.Sprintf("%d", i), base.Add(time.Duration(i)*time.Minute), i%2 == 0))
	}
	dismissed := map[string]struct{}{"d:3": {}, "d:7": {}}

	first := Merge(derived, durable, dismissed)
	second := Merge(derived, durable, dismissed)

	assert.Equal(t, first, second)
}
