package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	BookingsCreated   prometheus.Counter
	ConflictsRejected prometheus.Counter
	BookingsExpired   prometheus.Counter
	BookingsPurged    prometheus.Counter
	CleanupRuns       prometheus.Counter
	EventsBroadcast   prometheus.Counter
	EmailFailures     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings accepted",
		}),
		ConflictsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_rejected_total",
			Help:      "The total number of booking requests rejected for interval conflicts",
		}),
		BookingsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_expired_total",
			Help:      "The total number of duration-based bookings auto-expired",
		}),
		BookingsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_purged_total",
			Help:      "The total number of bookings removed by the retention cleanup",
		}),
		CleanupRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_runs_total",
			Help:      "The total number of weekly purge executions",
		}),
		EventsBroadcast: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_broadcast_total",
			Help:      "The total number of events fanned out to connected viewers",
		}),
		EmailFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_failures_total",
			Help:      "The total number of outbound email failures",
		}, []string{"kind"}),
	}
}
