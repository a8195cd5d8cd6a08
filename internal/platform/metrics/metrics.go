package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	allocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_allocations_total",
			Help: "Ticket allocation attempts by outcome",
		},
		[]string{"status"},
	)

	ticketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets created by the allocator",
		},
	)

	contentionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocation_contention_retries_total",
			Help: "Transactions retried after a serialization conflict",
		},
		[]string{"operation"},
	)

	resaleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resale_operations_total",
			Help: "Resale listing and purchase operations",
		},
		[]string{"operation", "status"},
	)

	checkouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_checkouts_total",
			Help: "Checkouts by outcome",
		},
		[]string{"status"},
	)

	checkoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cart_checkout_duration_seconds",
			Help:    "Duration of checkout transactions",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	notificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_notification_failures_total",
			Help: "Confirmation emails that could not be delivered",
		},
	)
)

func TrackAllocation(status string, issued int) {
	allocations.WithLabelValues(status).Inc()
	if issued > 0 {
		ticketsIssued.Add(float64(issued))
	}
}

func TrackContentionRetry(operation string) {
	contentionRetries.WithLabelValues(operation).Inc()
}

func TrackResale(operation, status string) {
	resaleOperations.WithLabelValues(operation, status).Inc()
}

func TrackCheckout(status string, duration time.Duration) {
	checkouts.WithLabelValues(status).Inc()
	checkoutDuration.Observe(duration.Seconds())
}

func TrackNotificationFailure() {
	notificationFailures.Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
