package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/probook/probook-api/pkg/kv"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	defaultMaxIDs    = 1000
	defaultTrimTo    = 500
)

// ReadStateConfig bounds the per-user dismissal record.
type ReadStateConfig struct {
	// Retention evicts the whole record once it has not been written
	// for this long.
	Retention time.Duration
	// MaxIDs caps the id set; oldest ids are trimmed first.
	MaxIDs int
	// TrimTo is the harder truncation applied when a write fails.
	TrimTo int
}

func (c *ReadStateConfig) applyDefaults() {
	if c.Retention <= 0 {
		c.Retention = defaultRetention
	}
	if c.MaxIDs <= 0 {
		c.MaxIDs = defaultMaxIDs
	}
	if c.TrimTo <= 0 {
		c.TrimTo = defaultTrimTo
	}
}

// readStateRecord is the serialized slot value. IDs are kept in
// dismissal order so trimming drops the oldest entries.
type readStateRecord struct {
	IDs         []string `json:"ids"`
	LastUpdated int64    `json:"last_updated"`
}

// ReadStateStore tracks which ephemeral notification ids the user has
// dismissed, in a durable key-value slot keyed per user. Dismissals are
// never written to the notification backing store. Mutations are
// read-modify-write under a single lock so a dismissal landing during
// eviction is not lost.
type ReadStateStore struct {
	store  kv.Store
	cfg    ReadStateConfig
	logger zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func NewReadStateStore(store kv.Store, cfg ReadStateConfig, logger zerolog.Logger) *ReadStateStore {
	cfg.applyDefaults()
	return &ReadStateStore{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func readStateKey(userID uuid.UUID) string {
	return "notifier:readstate:" + userID.String()
}

// IsDismissed reports whether the id was previously dismissed and has
// not yet been evicted.
func (s *ReadStateStore) IsDismissed(ctx context.Context, userID uuid.UUID, id string) bool {
	dismissed := s.Dismissed(ctx, userID)
	_, ok := dismissed[id]
	return ok
}

// Dismissed returns the full dismissed-id set for the user. The merger
// consults this once per aggregation cycle.
func (s *ReadStateStore) Dismissed(ctx context.Context, userID uuid.UUID) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.load(ctx, userID)
	dismissed := make(map[string]struct{}, len(record.IDs))
	for _, id := range record.IDs {
		dismissed[id] = struct{}{}
	}
	return dismissed
}

// MarkDismissed records one ephemeral id as dismissed.
func (s *ReadStateStore) MarkDismissed(ctx context.Context, userID uuid.UUID, id string) error {
	return s.MarkAllDismissed(ctx, userID, []string{id})
}

// MarkAllDismissed records a batch of ephemeral ids as dismissed.
func (s *ReadStateStore) MarkAllDismissed(ctx context.Context, userID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.load(ctx, userID)
	seen := make(map[string]struct{}, len(record.IDs))
	for _, id := range record.IDs {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		record.IDs = append(record.IDs, id)
	}

	return s.save(ctx, userID, record)
}

// load reads the user's record, treating missing, corrupt or stale
// slots as empty. Corrupt and stale slots are cleared in place.
func (s *ReadStateStore) load(ctx context.Context, userID uuid.UUID) readStateRecord {
	key := readStateKey(userID)

	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return readStateRecord{}
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("read-state load failed, treating as empty")
		return readStateRecord{}
	}

	var record readStateRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("read-state slot corrupt, clearing")
		s.clear(ctx, key)
		return readStateRecord{}
	}

	if record.LastUpdated > 0 && s.now().Sub(time.UnixMilli(record.LastUpdated)) > s.cfg.Retention {
		s.clear(ctx, key)
		return readStateRecord{}
	}

	return record
}

func (s *ReadStateStore) save(ctx context.Context, userID uuid.UUID, record readStateRecord) error {
	key := readStateKey(userID)
	record.LastUpdated = s.now().UnixMilli()

	if excess := len(record.IDs) - s.cfg.MaxIDs; excess > 0 {
		record.IDs = record.IDs[excess:]
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal read-state record: %w", err)
	}

	if err := s.store.Set(ctx, key, raw, s.cfg.Retention); err == nil {
		return nil
	} else {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("read-state write failed, truncating and retrying")
	}

	// Harder fallback: truncate to TrimTo and retry once.
	if excess := len(record.IDs) - s.cfg.TrimTo; excess > 0 {
		record.IDs = record.IDs[excess:]
	}
	raw, err = json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal read-state record: %w", err)
	}
	if err := s.store.Set(ctx, key, raw, s.cfg.Retention); err != nil {
		return fmt.Errorf("failed to save read-state record: %w", err)
	}
	return nil
}

func (s *ReadStateStore) clear(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to clear read-state slot")
	}
}
