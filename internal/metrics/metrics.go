package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "classifieds",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifieds",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "classifieds",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	moderationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifieds",
			Subsystem: "moderation",
			Name:      "decisions_total",
			Help:      "Postings moved to a moderation outcome.",
		},
		[]string{"kind", "status"},
	)

	moderationResets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifieds",
			Subsystem: "moderation",
			Name:      "rereview_resets_total",
			Help:      "Owner edits that sent a moderated posting back to pending.",
		},
		[]string{"kind"},
	)

	applications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifieds",
			Subsystem: "applications",
			Name:      "submitted_total",
			Help:      "Job application attempts by outcome.",
		},
		[]string{"outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classifieds",
			Subsystem: "notify",
			Name:      "dispatched_total",
			Help:      "Notification dispatches by type and result.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		moderationDecisions,
		moderationResets,
		applications,
		notifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func HTTPStarted() {
	httpInFlight.Inc()
}

func HTTPFinished(method, route string, status int, d time.Duration) {
	httpInFlight.Dec()
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordModeration(kind, status string, n int64) {
	if n <= 0 {
		return
	}
	moderationDecisions.WithLabelValues(kind, status).Add(float64(n))
}

func RecordRereviewReset(kind string) {
	moderationResets.WithLabelValues(kind).Inc()
}

// RecordApplication counts an application attempt; outcome is accepted, duplicate or
// rejected.
func RecordApplication(outcome string) {
	applications.WithLabelValues(outcome).Inc()
}

func RecordNotification(typ string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notifications.WithLabelValues(typ, result).Inc()
}
