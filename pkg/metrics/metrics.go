package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Notification engine metrics
	RefreshCycles  *prometheus.CounterVec
	RefreshLatency prometheus.Histogram
	Dismissals     *prometheus.CounterVec
	FeedItems      prometheus.Histogram

	// Digest worker metrics
	DigestsSent   prometheus.Counter
	DigestsFailed prometheus.Counter

	// Collaborator metrics
	DatabaseOperations *prometheus.CounterVec
	RedisOperations    *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on the
// default registry.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RefreshCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifier_refresh_cycles_total",
			Help:      "Total number of aggregation cycles by outcome",
		}, []string{"status"}),
		RefreshLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notifier_refresh_duration_seconds",
			Help:      "Time spent running one aggregation cycle",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		Dismissals: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifier_dismissals_total",
			Help:      "Total number of notification dismissals by kind",
		}, []string{"kind"}),
		FeedItems: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notifier_feed_items",
			Help:      "Number of items produced per merged feed",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		DigestsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_emails_sent_total",
			Help:      "Total number of digest emails sent",
		}),
		DigestsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_emails_failed_total",
			Help:      "Total number of digest emails that failed to send",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		RedisOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redis_operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
	}
}

// New creates unregistered metrics, for tests that would otherwise
// collide on the default registry.
func New(namespace string) *Metrics {
	return &Metrics{
		RefreshCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifier_refresh_cycles_total",
			Help:      "Total number of aggregation cycles by outcome",
		}, []string{"status"}),
		RefreshLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notifier_refresh_duration_seconds",
			Help:      "Time spent running one aggregation cycle",
		}),
		Dismissals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifier_dismissals_total",
			Help:      "Total number of notification dismissals by kind",
		}, []string{"kind"}),
		FeedItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "notifier_feed_items",
			Help:      "Number of items produced per merged feed",
		}),
		DigestsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_emails_sent_total",
			Help:      "Total number of digest emails sent",
		}),
		DigestsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digest_emails_failed_total",
			Help:      "Total number of digest emails that failed to send",
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		RedisOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redis_operations_total",
			Help:      "Total number of Redis operations",
		}, []string{"operation", "status"}),
	}
}
