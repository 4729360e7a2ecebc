package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Hub client metrics
	HubRequestsTotal   *prometheus.CounterVec
	HubRequestDuration *prometheus.HistogramVec
	HubPagesFetched    prometheus.Counter
	HubAuthFailures    prometheus.Counter

	// Hierarchy metrics
	HierarchyNodesTotal            prometheus.Gauge
	HierarchyInstrumentationsTotal prometheus.Gauge
	HierarchyAssetsTotal           prometheus.Gauge
	HierarchyBuildDuration         prometheus.Histogram
	HierarchyBuildsTotal           *prometheus.CounterVec

	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	AlertsReported   *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initHubMetrics()
	r.initHierarchyMetrics()
	r.initAnalysisMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
