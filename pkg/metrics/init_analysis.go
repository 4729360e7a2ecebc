package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterhub_analyses_total",
			Help: "Total number of analysis runs",
		},
		[]string{"kind", "status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waterhub_analysis_duration_seconds",
			Help:    "Analysis run duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"kind"},
	)

	r.AlertsReported = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterhub_alerts_reported_total",
			Help: "Total number of alert entries produced by analyses",
		},
		[]string{"kind"},
	)
}
