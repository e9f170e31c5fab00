package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics holds all Prometheus metrics for the ingest service.
type IngestMetrics struct {
	MessagesTotal     *prometheus.CounterVec
	BytesTotal        prometheus.Counter
	APIKeyCacheHits   prometheus.Counter
	APIKeyCacheMisses prometheus.Counter
}

// NewIngestMetrics initializes and registers the Prometheus metrics.
func NewIngestMetrics() *IngestMetrics {
	return &IngestMetrics{
		MessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "ingest",
			Name:      "messages_total",
			Help:      "Total number of received messages by status.",
		}, []string{"status"}), // status: accepted, error_parse, error_size, error_queue
		BytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "ingest",
			Name:      "bytes_total",
			Help:      "Total number of message payload bytes received.",
		}),
		APIKeyCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "auth",
			Name:      "api_key_cache_hits_total",
			Help:      "Total number of API key cache hits.",
		}),
		APIKeyCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "auth",
			Name:      "api_key_cache_misses_total",
			Help:      "Total number of API key cache misses.",
		}),
	}
}

// ModerationMetrics holds all Prometheus metrics for the moderation worker.
type ModerationMetrics struct {
	MessagesTotal       *prometheus.CounterVec
	ViolationsTotal     *prometheus.CounterVec
	EventsAppendedTotal *prometheus.CounterVec
	EnforcementFailures *prometheus.CounterVec
	WebhooksTotal       *prometheus.CounterVec
	Subscribers         prometheus.Gauge
	SpamWindows         prometheus.Gauge
	PolicyCacheHits     prometheus.Counter
	PolicyCacheMisses   prometheus.Counter
}

// NewModerationMetrics initializes and registers the Prometheus metrics.
func NewModerationMetrics() *ModerationMetrics {
	return &ModerationMetrics{
		MessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "pipeline",
			Name:      "messages_total",
			Help:      "Total number of processed messages by result.",
		}, []string{"result"}), // result: clean, violation, spam, error
		ViolationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "pipeline",
			Name:      "violations_total",
			Help:      "Total number of detected violations by kind.",
		}, []string{"kind"}),
		EventsAppendedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "events",
			Name:      "appended_total",
			Help:      "Total number of events appended to the log by type.",
		}, []string{"type"}),
		EnforcementFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "pipeline",
			Name:      "enforcement_failures_total",
			Help:      "Total number of failed platform actions by action.",
		}, []string{"action"}),
		WebhooksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "events",
			Name:      "webhook_notifications_total",
			Help:      "Total number of webhook notification attempts by status.",
		}, []string{"status"}), // status: sent, failed, dropped, unconfigured
		Subscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "shadybot",
			Subsystem: "broadcast",
			Name:      "subscribers",
			Help:      "Number of currently connected live subscribers.",
		}),
		SpamWindows: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "shadybot",
			Subsystem: "pipeline",
			Name:      "spam_windows",
			Help:      "Number of currently tracked (guild, author) spam windows.",
		}),
		PolicyCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "pipeline",
			Name:      "policy_cache_hits_total",
			Help:      "Total number of policy cache hits.",
		}),
		PolicyCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "shadybot",
			Subsystem: "pipeline",
			Name:      "policy_cache_misses_total",
			Help:      "Total number of policy cache misses.",
		}),
	}
}
