// Package timeseries retrieves day-windowed measurement series per
// value key and runs recency and cycle-interval analyses over them.
package timeseries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mlindner/waterhub/pkg/hierarchy"
)

// Common sentinel errors
var (
	ErrNoData = errors.New("no measurement data")
)

// DefaultDaysBack is the retrieval window when none is configured
const DefaultDaysBack = 7

// timeFormat is the hub's timestamp query format
const timeFormat = "2006-01-02T15:04:05Z"

// Fetcher is the paginated transport slice the retrieval needs.
// *hub.Client satisfies it.
type Fetcher interface {
	CallPaginated(ctx context.Context, cmd, key string) ([]json.RawMessage, error)
}

// Point is one timestamped measurement, rounded to full seconds
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Series holds all points of one value key in ascending time order
type Series struct {
	Key    string
	Points []Point
}

// Empty reports whether the series has no points
func (s *Series) Empty() bool {
	return len(s.Points) == 0
}

// Latest returns the most recent timestamp, or false for empty series
func (s *Series) Latest() (time.Time, bool) {
	if s.Empty() {
		return time.Time{}, false
	}
	return s.Points[len(s.Points)-1].Timestamp, true
}

// Timeseries holds the retrieved series of one instrumentation
type Timeseries struct {
	Instrumentation *hierarchy.Instrumentation
	DaysBack        int
	Start, End      time.Time

	series map[string]*Series
	order  []string

	now func() time.Time
}

// Option configures a retrieval
type Option func(*Timeseries)

// WithDaysBack sets the retrieval window in days
func WithDaysBack(days int) Option {
	return func(ts *Timeseries) { ts.DaysBack = days }
}

// WithClock replaces the time source (used in tests)
func WithClock(now func() time.Time) Option {
	return func(ts *Timeseries) { ts.now = now }
}

// Retrieve fetches the measurement series of the given value keys for
// the configured window. A nil keys argument retrieves every declared
// value key. Keys not declared for the instrumentation are rejected
// before any network call.
func Retrieve(ctx context.Context, hub Fetcher, instr *hierarchy.Instrumentation, keys []string, opts ...Option) (*Timeseries, error) {
	ts := &Timeseries{
		Instrumentation: instr,
		DaysBack:        DefaultDaysBack,
		series:          make(map[string]*Series),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}

	if keys == nil {
		keys = instr.ValueKeys
	} else {
		for _, key := range keys {
			if !instr.HasValueKey(key) {
				return nil, fmt.Errorf("%w: %q on %s", hierarchy.ErrUnknownValueKey, key, instr)
			}
		}
	}

	ts.End = ts.now().UTC().Round(time.Second)
	ts.Start = ts.End.Add(-time.Duration(ts.DaysBack) * 24 * time.Hour)

	for _, key := range keys {
		series, err := ts.fetchSeries(ctx, hub, key)
		if err != nil {
			return nil, err
		}
		ts.series[key] = series
		ts.order = append(ts.order, key)
	}
	return ts, nil
}

// fetchSeries retrieves one value key's windowed data
func (ts *Timeseries) fetchSeries(ctx context.Context, hub Fetcher, key string) (*Series, error) {
	cmd := fmt.Sprintf("instrumentations/%d/values/%s?from=%s&to=%s",
		ts.Instrumentation.ID, key, ts.Start.Format(timeFormat), ts.End.Format(timeFormat))

	raws, err := hub.CallPaginated(ctx, cmd, "data")
	if err != nil {
		return nil, fmt.Errorf("fetch series %q: %w", key, err)
	}

	series := &Series{Key: key}
	for _, raw := range raws {
		var entry struct {
			Timestamp *time.Time `json:"timestamp"`
			Value     *float64   `json:"value"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			// Entries that fail to decode are skipped, matching the
			// tolerant ingestion of the measurement endpoint
			continue
		}
		if entry.Timestamp == nil || entry.Value == nil {
			continue
		}
		series.Points = append(series.Points, Point{
			Timestamp: entry.Timestamp.UTC().Round(time.Second),
			Value:     *entry.Value,
		})
	}

	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Timestamp.Before(series.Points[j].Timestamp)
	})
	return series, nil
}

// Series returns the series for one key, or nil when not retrieved
func (ts *Timeseries) Series(key string) *Series {
	return ts.series[key]
}

// Keys returns the retrieved value keys in request order
func (ts *Timeseries) Keys() []string {
	out := make([]string, len(ts.order))
	copy(out, ts.order)
	return out
}
