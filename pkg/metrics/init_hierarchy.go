package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHierarchyMetrics() {
	r.HierarchyNodesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "waterhub_hierarchy_nodes_total",
			Help: "Number of nodes in the most recently built hierarchy",
		},
	)

	r.HierarchyInstrumentationsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "waterhub_hierarchy_instrumentations_total",
			Help: "Number of instrumentations in the most recently built hierarchy",
		},
	)

	r.HierarchyAssetsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "waterhub_hierarchy_assets_total",
			Help: "Number of assets in the most recently built hierarchy",
		},
	)

	r.HierarchyBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waterhub_hierarchy_build_duration_seconds",
			Help:    "Time spent fetching and linking the hierarchy",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	r.HierarchyBuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterhub_hierarchy_builds_total",
			Help: "Total number of hierarchy build attempts",
		},
		[]string{"status"},
	)
}
