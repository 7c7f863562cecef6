package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReadState(t *testing.T, fake *fakeKV, cfg ReadStateConfig) *ReadStateStore {
	t.Helper()
	return NewReadStateStore(fake, cfg, zerolog.Nop())
}

func TestReadStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeKV()
	store := newTestReadState(t, fake, ReadStateConfig{})
	userID := uuid.New()

	assert.False(t, store.IsDismissed(ctx, userID, "invoice_overdue:due:a"))

	require.NoError(t, store.MarkDismissed(ctx, userID, "invoice_overdue:due:a"))
	assert.True(t, store.IsDismissed(ctx, userID, "invoice_overdue:due:a"))
	assert.False(t, store.IsDismissed(ctx, userID, "invoice_overdue:due:b"))

	require.NoError(t, store.MarkAllDismissed(ctx, userID, []string{"x:1:a", "x:1:b"}))
	dismissed := store.Dismissed(ctx, userID)
	assert.Len(t, dismissed, 3)

	// Dismissals are scoped per user.
	assert.False(t, store.IsDismissed(ctx, uuid.New(), "invoice_overdue:due:a"))
}

func TestReadStateMarkDismissedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fake := newFakeKV()
	store := newTestReadState(t, fake, ReadStateConfig{})
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.MarkDismissed(ctx, userID, "x:1:a"))
	}

	raw, err := fake.Get(ctx, readStateKey(userID))
	require.NoError(t, err)
	var record readStateRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, []string{"x:1:a"}, record.IDs)
}

func TestReadStateCapTrimsOldestFirst(t *testing.T) {
	ctx := context.Background()
	fake := newFakeKV()
	store := newTestReadState(t, fake, ReadStateConfig{MaxIDs: 1000})
	userID := uuid.New()

	ids := make([]string, 1001)
	for i := range ids {
		ids[i] = fmt.Sprintf("x:1:%04d", i)
	}
	require.NoError(t, store.MarkAllDismissed(ctx, userID, ids))

	dismissed := store.Dismissed(ctx, userID)
	assert.Len(t, dismissed, 1000)
	assert.NotContains(t, dismissed, "x:1:0000")
	assert.Contains(t, dismissed, "x:1:1000")
	assert.Contains(t, dismissed, "x:1:0001")
}

func TestReadStateWriteFailureTruncatesAndRetries(t *testing.T) {
	ctx := context.Background()
	fake := newFakeKV()
	store := newTestReadState(t, fake, ReadStateConfig{MaxIDs: 1000, TrimTo: 500})
	userID := uuid.New()

	ids := make([]string, 800)
	for i := range ids {
		ids[i] = fmt.Sprintf("x:1:%04d", i)
	}
	require.NoError(t, store.MarkAllDismissed(ctx, userID, ids))

	fake.failSets = 1
	require.NoError(t, store.MarkDismissed(ctx, userID, "x:1:new"))

	dismissed := store.Dismissed(ctx, userID)
	assert.Len(t, dismissed, 500)
	// The most recent dismissal survives the truncation.
	assert.Contains(t, dismissed, "x:1:new")
	assert.NotContains(t, dismissed, "x:1:0000")
}

func TestReadStateStaleRecordEvicted(t *testing.T) {
	ctx := context.Background()
	fake := newFakeKV()
	store := newTestReadState(t, fake, ReadStateConfig{Retention: 30 * 24 * time.Hour})
	userID := uuid.New()

	stale := readStateRecord{
		IDs:         []string{"x:1:a"},
		LastUpdated: time.Now().Add(-31 * 24 * time.Hour).UnixMilli(),
	}
	raw, err := json.Marshal(stale)
	require.NoError(t, err)
	fake.put(readStateKey(userID), raw)

	assert.False(t, store.IsDismissed(ctx, userID, "x:1:a"))
	assert.Equal(t, 1, fake.deletes)
}

func TestReadStateFreshRecordKept(t *testing.T) {
	ctx := context.Background()
	fake := newFakeKV()
	store := newTestReadState(t, fake, ReadStateConfig{Retention: 30 * 24 * time.Hour})
	userID := uuid.New()

	fresh := readStateRecord{
		IDs:         []string{"x:1:a"},
		LastUpdated: time.Now().Add(-29 * 24 * time.Hour).UnixMilli(),
	}
	raw, err := json.Marshal(fresh)
	require.NoError(t, err)
	fake.put(readStateKey(userID), raw)

	assert.True(t, store.IsDismissed(ctx, userID, "x:1:a"))
}

func TestReadStateCorruptSlotClearedNotSurfaced(t *testing.T) {
	ctx := context.Background()
	fake := newFakeKV()
	store := newTestReadState(t, fake, ReadStateConfig{})
	userID := uuid.New()

	fake.put(readStateKey(userID), []byte("{not json"))

	assert.False(t, store.IsDismissed(ctx, userID, "x:1:a"))
	assert.Equal(t, 1, fake.deletes)

	// The slot is usable again after clearing.
	require.NoError(t, store.MarkDismissed(ctx, userID, "x:1:a"))
	assert.True(t, store.IsDismissed(ctx, userID, "x:1:a"))
}
