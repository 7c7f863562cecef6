package notifier

import (
	"sort"

	"github.com/probook/probook-api/internal/model"
)

// Merge combines derived and durable notifications into one ordered,
// deduplicated feed. Derived items dismissed by the user are dropped,
// derived items win id collisions, and the result sorts unread before
// read with newest first within each group. The sort is stable, so
// merging the same inputs twice yields the same order.
func Merge(derived, durable []model.NotificationItem, dismissed map[string]struct{}) []model.NotificationItem {
	merged := make([]model.NotificationItem, 0, len(derived)+len(durable))
	seen := make(map[string]struct{}, len(derived)+len(durable))

	for _, item := range derived {
		if _, ok := dismissed[item.ID]; ok {
			continue
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		merged = append(merged, item)
	}

	for _, item := range durable {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		merged = append(merged, item)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Read != merged[j].Read {
			return !merged[i].Read
		}
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return merged
}

func countUnread(items []model.NotificationItem) int {
	var unread int
	for _, item := range items {
		if !item.Read {
			unread++
		}
	}
	return unread
}
