// Package analyzer runs structural, integrity and recency analyses
// over a built water topology and produces renderable reports.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/mlindner/waterhub/pkg/hierarchy"
	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/metrics"
	"github.com/mlindner/waterhub/pkg/timeseries"
)

// timestampFormat is the display form used in report headers
const timestampFormat = "2006-01-02 15:04:05"

// Hub is the transport the analyzer needs: the hierarchy's fetch
// surface plus the account name for report headers. *hub.Client
// satisfies it.
type Hub interface {
	hierarchy.HubClient
	Username() string
}

// Analyzer holds one built hierarchy and runs analyses against it.
// The hierarchy is read-only during analysis, so an Analyzer value is
// safe for sequential reuse across runs.
type Analyzer struct {
	hub       Hub
	hierarchy *hierarchy.Hierarchy

	log      logging.Logger
	metrics  *metrics.Registry
	now      func() time.Time
	daysBack int
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the structured logger
func WithLogger(l logging.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// WithMetrics sets the metrics registry
func WithMetrics(m *metrics.Registry) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithClock replaces the time source (used in tests)
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithDaysBack sets the retrieval window of the value-key analyses
func WithDaysBack(days int) Option {
	return func(a *Analyzer) { a.daysBack = days }
}

// New clones the full topology from the hub and wraps it in an
// Analyzer ready for analysis runs.
func New(ctx context.Context, hub Hub, opts ...Option) (*Analyzer, error) {
	a := newAnalyzer(hub, opts...)
	h, err := hierarchy.Clone(ctx, hub,
		hierarchy.WithLogger(a.log),
		hierarchy.WithMetrics(a.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}
	a.hierarchy = h
	return a, nil
}

// NewWithHierarchy wraps an already-built hierarchy. Tests and callers
// that reuse one build across analyses use this.
func NewWithHierarchy(hub Hub, h *hierarchy.Hierarchy, opts ...Option) *Analyzer {
	a := newAnalyzer(hub, opts...)
	a.hierarchy = h
	return a
}

func newAnalyzer(hub Hub, opts ...Option) *Analyzer {
	a := &Analyzer{
		hub:      hub,
		log:      logging.NewNopLogger(),
		metrics:  metrics.DefaultRegistry(),
		now:      time.Now,
		daysBack: timeseries.DefaultDaysBack,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Hierarchy exposes the underlying topology for direct queries
func (a *Analyzer) Hierarchy() *hierarchy.Hierarchy {
	return a.hierarchy
}
