package notifier

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/probook/probook-api/pkg/metrics"
)

const defaultFeedCacheTTL = 2 * time.Second

// ServiceConfig tunes the engine across users.
type ServiceConfig struct {
	Controller Config
	ReadState  ReadStateConfig
	// FeedCacheTTL bounds how stale a served feed snapshot may be
	// between aggregation cycles.
	FeedCacheTTL time.Duration
}

// Service owns one Controller per active user and fronts them with a
// short-TTL snapshot cache so repeated feed reads between cycles don't
// contend on controller locks.
type Service struct {
	cfg       ServiceConfig
	reader    SnapshotReader
	gateway   Gateway
	readState *ReadStateStore
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	feedCache *gocache.Cache

	mu          sync.Mutex
	controllers map[uuid.UUID]*Controller
}

func NewService(
	cfg ServiceConfig,
	reader SnapshotReader,
	gateway Gateway,
	readState *ReadStateStore,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Service {
	if cfg.FeedCacheTTL <= 0 {
		cfg.FeedCacheTTL = defaultFeedCacheTTL
	}
	s := &Service{
		cfg:         cfg,
		reader:      reader,
		gateway:     gateway,
		readState:   readState,
		logger:      logger,
		metrics:     m,
		feedCache:   gocache.New(cfg.FeedCacheTTL, 10*cfg.FeedCacheTTL),
		controllers: make(map[uuid.UUID]*Controller),
	}
	return s
}

// controller returns the user's controller, starting one on first use.
func (s *Service) controller(userID uuid.UUID) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctrl, ok := s.controllers[userID]; ok {
		return ctrl
	}
	ctrl := NewController(userID, s.cfg.Controller, s.reader, s.gateway, s.readState, s.logger, s.metrics)
	ctrl.Start()
	s.controllers[userID] = ctrl
	return ctrl
}

// Feed returns the user's current feed snapshot.
func (s *Service) Feed(userID uuid.UUID) Feed {
	if cached, ok := s.feedCache.Get(userID.String()); ok {
		return cached.(Feed)
	}
	feed := s.controller(userID).Feed()
	s.feedCache.Set(userID.String(), feed, gocache.DefaultExpiration)
	return feed
}

// Refresh triggers an on-demand aggregation cycle for the user.
func (s *Service) Refresh(userID uuid.UUID) {
	s.feedCache.Delete(userID.String())
	s.controller(userID).Refresh()
}

// Dismiss routes one dismissal to the read-state store or the gateway
// depending on the id's namespace.
func (s *Service) Dismiss(userID uuid.UUID, id string) {
	s.feedCache.Delete(userID.String())
	s.controller(userID).Dismiss(id)
}

// DismissAll dismisses every unread item in the user's feed.
func (s *Service) DismissAll(userID uuid.UUID) {
	s.feedCache.Delete(userID.String())
	s.controller(userID).DismissAll()
}

// Shutdown stops every controller and waits for their loops to exit.
func (s *Service) Shutdown() {
	s.mu.Lock()
	controllers := make([]*Controller, 0, len(s.controllers))
	for _, ctrl := range s.controllers {
		controllers = append(controllers, ctrl)
	}
	s.controllers = make(map[uuid.UUID]*Controller)
	s.mu.Unlock()

	for _, ctrl := range controllers {
		ctrl.Stop()
	}
}
