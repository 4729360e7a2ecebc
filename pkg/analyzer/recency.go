package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mlindner/waterhub/pkg/hierarchy"
	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/report"
	"github.com/mlindner/waterhub/pkg/timeseries"
)

// InstrumentationRecency pairs an instrumentation with the timestamp
// of its most recent measurement. Latest is the zero time when the hub
// returned no measurements at all.
type InstrumentationRecency struct {
	Instrumentation *hierarchy.Instrumentation
	Latest          time.Time
}

// RecencyGroups partitions all instrumentations by measurement age.
// Instrumentations without any measurement count as stale.
type RecencyGroups struct {
	Fresh []InstrumentationRecency // age < 24h
	Aging []InstrumentationRecency // 24h <= age < 72h
	Stale []InstrumentationRecency // age >= 72h, or no data
}

// Total returns the number of grouped instrumentations
func (g *RecencyGroups) Total() int {
	return len(g.Fresh) + len(g.Aging) + len(g.Stale)
}

// GroupByLatestValues queries the latest measurement of every
// instrumentation, one call each, and buckets them by age. All
// comparisons are UTC.
func (a *Analyzer) GroupByLatestValues(ctx context.Context) (*RecencyGroups, error) {
	now := a.now().UTC()
	groups := &RecencyGroups{}

	for _, instr := range a.hierarchy.AllInstrumentations() {
		latest, err := a.latestMeasurement(ctx, instr)
		if err != nil {
			return nil, err
		}

		entry := InstrumentationRecency{Instrumentation: instr, Latest: latest}
		if latest.IsZero() {
			groups.Stale = append(groups.Stale, entry)
			continue
		}
		switch timeseries.Classify(now.Sub(latest)) {
		case timeseries.BucketFresh:
			groups.Fresh = append(groups.Fresh, entry)
		case timeseries.BucketAging:
			groups.Aging = append(groups.Aging, entry)
		case timeseries.BucketStale:
			groups.Stale = append(groups.Stale, entry)
		}
	}
	return groups, nil
}

// latestMeasurement returns the max timestamp across all raw points of
// the instrumentation's latest-values endpoint, zero when none.
func (a *Analyzer) latestMeasurement(ctx context.Context, instr *hierarchy.Instrumentation) (time.Time, error) {
	cmd := fmt.Sprintf("instrumentations/%d/values", instr.ID)
	raw, err := a.hub.Call(ctx, http.MethodGet, cmd, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest values of instrumentation %d: %w", instr.ID, err)
	}

	var body struct {
		Values []struct {
			Timestamp *time.Time `json:"timestamp"`
		} `json:"values"`
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &body); err != nil {
			return time.Time{}, fmt.Errorf("latest values of instrumentation %d: %w", instr.ID, err)
		}
	}

	var latest time.Time
	for _, v := range body.Values {
		if v.Timestamp == nil {
			continue
		}
		if ts := v.Timestamp.UTC(); ts.After(latest) {
			latest = ts
		}
	}
	return latest, nil
}

// AnalyzeRecency runs the per-instrumentation grouping and renders it
// as a report: one section per age bucket.
func (a *Analyzer) AnalyzeRecency(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	rep := report.New()

	groups, err := a.GroupByLatestValues(ctx)
	a.metrics.RecordAnalysis("recency", time.Since(start), 0, err)
	if err != nil {
		return nil, err
	}

	rep.Infof(0, "Analysing timeseries data at %s for %d instrumentations...",
		a.now().Format(timestampFormat), groups.Total())

	rep.Info(0, "  Instrumentations with at least one measurement entry younger than 24h:")
	reportRecencyEntries(rep, groups.Fresh)

	rep.Info(0, "  Instrumentations with no measurement entry younger than 24h but at least one younger than 72h:")
	reportRecencyEntries(rep, groups.Aging)

	rep.Info(0, "  Instrumentations with no measurement entry younger than 72h:")
	reportRecencyEntries(rep, groups.Stale)

	a.log.Info("recency analysis finished",
		logging.Component("analyzer"),
		logging.Int("fresh", len(groups.Fresh)),
		logging.Int("aging", len(groups.Aging)),
		logging.Int("stale", len(groups.Stale)),
	)
	return rep, nil
}

func reportRecencyEntries(rep *report.Report, entries []InstrumentationRecency) {
	for _, e := range entries {
		if e.Latest.IsZero() {
			rep.Infof(0, "     %s (no measurements)", e.Instrumentation)
			continue
		}
		rep.Infof(0, "     %s (latest timestamp: %s)", e.Instrumentation, e.Latest.Format(time.RFC3339))
	}
}

// AnalyzeValueKeyRecency retrieves the windowed series of every value
// key of one instrumentation and reports the keys per age bucket.
func (a *Analyzer) AnalyzeValueKeyRecency(ctx context.Context, instr *hierarchy.Instrumentation) (*report.Report, error) {
	start := time.Now()

	ts, err := timeseries.Retrieve(ctx, a.hub, instr, nil,
		timeseries.WithDaysBack(a.daysBack),
		timeseries.WithClock(a.now),
	)
	a.metrics.RecordAnalysis("value_key_recency", time.Since(start), 0, err)
	if err != nil {
		return nil, err
	}

	groups := ts.GroupValueKeys()
	rep := report.New()
	rep.Infof(0, "Analysing value keys of %s over the last %d days...", instr, a.daysBack)

	rep.Info(0, "  Value keys with a measurement younger than 24h:")
	reportValueKeyEntries(rep, ts, groups[timeseries.BucketFresh])

	rep.Info(0, "  Value keys with no measurement younger than 24h but one younger than 72h:")
	reportValueKeyEntries(rep, ts, groups[timeseries.BucketAging])

	rep.Info(0, "  Value keys with no measurement younger than 72h:")
	reportValueKeyEntries(rep, ts, groups[timeseries.BucketStale])

	return rep, nil
}

func reportValueKeyEntries(rep *report.Report, ts *timeseries.Timeseries, keys []string) {
	for _, key := range keys {
		if latest, ok := ts.Series(key).Latest(); ok {
			rep.Infof(0, "     %s (latest timestamp: %s)", key, latest.Format(time.RFC3339))
			continue
		}
		rep.Infof(0, "     %s (no measurements)", key)
	}
}

// ReportCycleStatistics retrieves one value key's windowed series and
// renders its sampling-interval statistics. Unusually long gaps are
// reported as alerts.
func (a *Analyzer) ReportCycleStatistics(ctx context.Context, instr *hierarchy.Instrumentation, key string) (*report.Report, error) {
	start := time.Now()

	ts, err := timeseries.Retrieve(ctx, a.hub, instr, []string{key},
		timeseries.WithDaysBack(a.daysBack),
		timeseries.WithClock(a.now),
	)
	if err != nil {
		a.metrics.RecordAnalysis("cycle_statistics", time.Since(start), 0, err)
		return nil, err
	}

	stats, err := ts.CycleStatistics(key)
	a.metrics.RecordAnalysis("cycle_statistics", time.Since(start), 0, err)
	if err != nil {
		return nil, err
	}

	rep := report.New()
	rep.Infof(0, "Cycle statistics for value key '%s' of %s:", stats.Key, instr)
	rep.Infof(2, "Samples: %d", stats.Count)
	rep.Infof(2, "First: %s", stats.First.Format(time.RFC3339))
	rep.Infof(2, "Last: %s", stats.Last.Format(time.RFC3339))
	rep.Infof(2, "Span: %s, age of last sample: %s", stats.Span, stats.Age)
	rep.Infof(2, "Median interval: %g min, mode interval: %d min", stats.MedianInterval, stats.ModeInterval)
	rep.Infof(2, "Regular intervals: %d", len(stats.RegularIntervals))
	if len(stats.OutlierIntervals) > 0 {
		rep.Alertf(2, "Unusually long gaps (min): %v", stats.OutlierIntervals)
	} else {
		rep.Info(2, "No unusually long gaps detected.")
	}
	return rep, nil
}
