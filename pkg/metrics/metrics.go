package metrics

import (
	"time"
)

// RecordHubRequest records a hub API request with its duration
func (r *Registry) RecordHubRequest(method, status string, duration time.Duration) {
	r.HubRequestsTotal.WithLabelValues(method, status).Inc()
	r.HubRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordHubPage records a single page fetched during a paginated call
func (r *Registry) RecordHubPage() {
	r.HubPagesFetched.Inc()
}

// RecordAuthFailure records a failed hub authentication attempt
func (r *Registry) RecordAuthFailure() {
	r.HubAuthFailures.Inc()
}

// RecordHierarchyBuild records the outcome of a hierarchy build.
// Entity counts only update on success; a failed build leaves the
// gauges at their previous values.
func (r *Registry) RecordHierarchyBuild(nodes, instrumentations, assets int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	} else {
		r.HierarchyNodesTotal.Set(float64(nodes))
		r.HierarchyInstrumentationsTotal.Set(float64(instrumentations))
		r.HierarchyAssetsTotal.Set(float64(assets))
	}
	r.HierarchyBuildsTotal.WithLabelValues(status).Inc()
	r.HierarchyBuildDuration.Observe(duration.Seconds())
}

// RecordAnalysis records an analysis run with its duration and alert count
func (r *Registry) RecordAnalysis(kind string, duration time.Duration, alerts int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.AnalysesTotal.WithLabelValues(kind, status).Inc()
	r.AnalysisDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if alerts > 0 {
		r.AlertsReported.WithLabelValues(kind).Add(float64(alerts))
	}
}
