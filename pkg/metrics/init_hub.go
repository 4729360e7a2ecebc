package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHubMetrics() {
	r.HubRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterhub_hub_requests_total",
			Help: "Total number of hub API requests",
		},
		[]string{"method", "status"},
	)

	r.HubRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waterhub_hub_request_duration_seconds",
			Help:    "Hub API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	r.HubPagesFetched = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "waterhub_hub_pages_fetched_total",
			Help: "Total number of pages retrieved via paginated hub calls",
		},
	)

	r.HubAuthFailures = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "waterhub_hub_auth_failures_total",
			Help: "Total number of failed hub authentication attempts",
		},
	)
}
