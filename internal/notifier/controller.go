package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/probook/probook-api/internal/model"
	"github.com/probook/probook-api/pkg/metrics"
)

const (
	defaultPollInterval  = 30 * time.Second
	defaultSnapshotLimit = 50
	defaultFetchLimit    = 50
)

// Config tunes one user's aggregation loop.
type Config struct {
	PollInterval  time.Duration
	SnapshotLimit int
	FetchLimit    int
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.SnapshotLimit <= 0 {
		c.SnapshotLimit = defaultSnapshotLimit
	}
	if c.FetchLimit <= 0 {
		c.FetchLimit = defaultFetchLimit
	}
}

// Feed is the snapshot handed to the interface layer.
type Feed struct {
	Notifications []model.NotificationItem `json:"notifications"`
	UnreadCount   int                      `json:"unread_count"`
	Loading       bool                     `json:"loading"`
}

// Controller owns one user's refresh cadence. It re-aggregates the feed
// every PollInterval and on demand, applies dismissals optimistically
// in memory before committing them to the matching backing store, and
// supersedes stale refresh results by request-start order.
type Controller struct {
	userID    uuid.UUID
	cfg       Config
	reader    SnapshotReader
	gateway   Gateway
	readState *ReadStateStore
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	feed     []model.NotificationItem
	unread   int
	inflight int
	seq      uint64
	applied  uint64
	started  bool
}

func NewController(
	userID uuid.UUID,
	cfg Config,
	reader SnapshotReader,
	gateway Gateway,
	readState *ReadStateStore,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Controller {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		userID:    userID,
		cfg:       cfg,
		reader:    reader,
		gateway:   gateway,
		readState: readState,
		logger:    logger.With().Str("user_id", userID.String()).Logger(),
		metrics:   m,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start launches the polling loop with an immediate first cycle.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go c.run()
}

func (c *Controller) run() {
	defer close(c.done)

	c.runRefresh(c.nextSeq())

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.runRefresh(c.nextSeq())
		}
	}
}

// Stop tears the controller down: the ticker stops and any in-flight
// cycle is cancelled. Results arriving after Stop never mutate state.
func (c *Controller) Stop() {
	c.cancel()

	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		<-c.done
	}
}

// Refresh triggers one on-demand aggregation cycle without blocking the
// caller.
func (c *Controller) Refresh() {
	seq := c.nextSeq()
	go c.runRefresh(seq)
}

// Feed returns a copy of the current feed state.
func (c *Controller) Feed() Feed {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]model.NotificationItem, len(c.feed))
	copy(items, c.feed)
	return Feed{
		Notifications: items,
		UnreadCount:   c.unread,
		Loading:       c.inflight > 0,
	}
}

// Dismiss marks one item read in memory and commits the dismissal
// asynchronously to the store matching the id's namespace.
func (c *Controller) Dismiss(id string) {
	now := c.now()

	c.mu.Lock()
	for i := range c.feed {
		if c.feed[i].ID == id && !c.feed[i].Read {
			c.feed[i].Read = true
			c.feed[i].ReadAt = &now
			c.unread--
		}
	}
	c.mu.Unlock()

	go c.commitDismissals([]string{id})
}

// DismissAll dismisses every currently-unread item and zeroes the
// unread count synchronously; commits fan out in the background.
func (c *Controller) DismissAll() {
	now := c.now()

	c.mu.Lock()
	var ephemeral []string
	var durable bool
	for i := range c.feed {
		if c.feed[i].Read {
			continue
		}
		if c.feed[i].Ephemeral {
			ephemeral = append(ephemeral, c.feed[i].ID)
		} else {
			durable = true
		}
		c.feed[i].Read = true
		c.feed[i].ReadAt = &now
	}
	c.unread = 0
	c.mu.Unlock()

	go func() {
		if durable {
			if err := c.gateway.MarkAllRead(c.ctx, c.userID); err != nil {
				c.logger.Warn().Err(err).Msg("failed to mark all notifications read")
			} else if c.metrics != nil {
				c.metrics.Dismissals.WithLabelValues("durable").Inc()
			}
		}
		if len(ephemeral) > 0 {
			if err := c.readState.MarkAllDismissed(c.ctx, c.userID, ephemeral); err != nil {
				c.logger.Warn().Err(err).Msg("failed to record ephemeral dismissals")
			} else if c.metrics != nil {
				c.metrics.Dismissals.WithLabelValues("ephemeral").Add(float64(len(ephemeral)))
			}
		}
	}()
}

func (c *Controller) nextSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.inflight++
	return c.seq
}

// runRefresh executes one aggregation cycle: the snapshot read and the
// durable fetch run in parallel, then the merged result is applied
// unless a younger cycle has already landed.
func (c *Controller) runRefresh(seq uint64) {
	defer func() {
		c.mu.Lock()
		c.inflight--
		c.mu.Unlock()
	}()

	var timer *prometheus.Timer
	if c.metrics != nil {
		timer = prometheus.NewTimer(c.metrics.RefreshLatency)
	}

	ctx := c.ctx
	now := c.now()

	var (
		snapshot Snapshot
		durable  []*model.Notification
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		snapshot = c.readSnapshot(ctx, now)
	}()
	go func() {
		defer wg.Done()
		durable = c.fetchDurable(ctx)
	}()
	wg.Wait()

	if timer != nil {
		timer.ObserveDuration()
	}
	if ctx.Err() != nil {
		return
	}

	derived := Generate(snapshot, now)
	dismissed := c.readState.Dismissed(ctx, c.userID)

	durableItems := make([]model.NotificationItem, 0, len(durable))
	for _, n := range durable {
		durableItems = append(durableItems, n.Item())
	}

	merged := Merge(derived, durableItems, dismissed)
	if c.metrics != nil {
		c.metrics.FeedItems.Observe(float64(len(merged)))
	}

	c.apply(seq, merged)
}

func (c *Controller) apply(seq uint64, feed []model.NotificationItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Last write wins by request-start order: a cycle that started
	// before the newest applied one is stale regardless of when its
	// response arrived.
	if seq < c.applied {
		return
	}
	c.applied = seq
	c.feed = feed
	c.unread = countUnread(feed)
}

// readSnapshot degrades each failing population to empty for this cycle
// rather than failing the cycle.
func (c *Controller) readSnapshot(ctx context.Context, now time.Time) Snapshot {
	var snapshot Snapshot

	appointments, err := c.reader.ListUpcomingAppointments(ctx, c.userID, now, c.cfg.SnapshotLimit)
	if err != nil {
		c.logger.Warn().Err(err).Msg("appointment snapshot failed, deriving from empty set")
		c.countCycle("appointments_failed")
	} else {
		snapshot.Appointments = appointments
	}

	invoices, err := c.reader.ListOutstandingInvoices(ctx, c.userID, c.cfg.SnapshotLimit)
	if err != nil {
		c.logger.Warn().Err(err).Msg("invoice snapshot failed, deriving from empty set")
		c.countCycle("invoices_failed")
	} else {
		snapshot.Invoices = invoices
	}

	return snapshot
}

func (c *Controller) fetchDurable(ctx context.Context) []*model.Notification {
	notifications, err := c.gateway.ListRecent(ctx, c.userID, c.cfg.FetchLimit)
	if err != nil {
		c.logger.Warn().Err(err).Msg("durable fetch failed, treating as empty for this cycle")
		c.countCycle("fetch_failed")
		return nil
	}
	c.countCycle("ok")
	return notifications
}

func (c *Controller) countCycle(status string) {
	if c.metrics != nil {
		c.metrics.RefreshCycles.WithLabelValues(status).Inc()
	}
}

func (c *Controller) commitDismissals(ids []string) {
	ctx := c.ctx

	var ephemeral []string
	for _, id := range ids {
		if IsEphemeralID(id) {
			ephemeral = append(ephemeral, id)
			continue
		}
		notificationID, err := uuid.Parse(id)
		if err != nil {
			c.logger.Warn().Str("id", id).Msg("dismissal for unrecognized id namespace dropped")
			continue
		}
		if err := c.gateway.MarkRead(ctx, notificationID); err != nil {
			c.logger.Warn().Err(err).Str("id", id).Msg("failed to mark notification read")
			continue
		}
		if c.metrics != nil {
			c.metrics.Dismissals.WithLabelValues("durable").Inc()
		}
	}

	if len(ephemeral) > 0 {
		if err := c.readState.MarkAllDismissed(ctx, c.userID, ephemeral); err != nil {
			c.logger.Warn().Err(err).Msg("failed to record ephemeral dismissals")
			return
		}
		if c.metrics != nil {
			c.metrics.Dismissals.WithLabelValues("ephemeral").Add(float64(len(ephemeral)))
		}
	}
}
