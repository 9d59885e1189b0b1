// Package metrics exposes the process-wide Prometheus instruments and the
// scrape endpoint handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BroadcastsDelivered counts outbound realtime messages written to a
	// connection, labelled by message type.
	BroadcastsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talentpass",
		Subsystem: "realtime",
		Name:      "broadcasts_delivered_total",
		Help:      "Realtime messages successfully written to a connection.",
	}, []string{"type"})

	// BroadcastsSkipped counts fan-out targets skipped because their
	// connection was no longer writable.
	BroadcastsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "talentpass",
		Subsystem: "realtime",
		Name:      "broadcasts_skipped_total",
		Help:      "Fan-out targets skipped because the connection was closed.",
	}, []string{"type"})

	// ActiveConnections tracks the number of registered realtime connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "talentpass",
		Subsystem: "realtime",
		Name:      "active_connections",
		Help:      "Currently registered realtime connections.",
	})

	// SchedulerTicks counts reminder scheduler passes.
	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "talentpass",
		Subsystem: "scheduler",
		Name:      "ticks_total",
		Help:      "Reminder scheduler scan passes.",
	})

	// NotificationsPromoted counts notifications promoted from pending to
	// delivered by the scheduler.
	NotificationsPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "talentpass",
		Subsystem: "scheduler",
		Name:      "notifications_promoted_total",
		Help:      "Notifications promoted to delivered by the scheduler.",
	})
)

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
