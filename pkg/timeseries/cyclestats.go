package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// CycleStats describes the sampling rhythm of one measurement series
type CycleStats struct {
	Key   string
	Count int // real samples, excluding the synthetic one at "now"
	First time.Time
	Last  time.Time
	Span  time.Duration
	Age   time.Duration // now minus last real sample

	MedianInterval float64 // whole minutes
	ModeInterval   int     // whole minutes, smallest value on ties

	RegularIntervals []int // minutes, inside the IQR fences
	OutlierIntervals []int // minutes, above the upper fence only
}

// CycleStatistics computes interval statistics for one retrieved
// series. An empty key selects the first retrieved series. A synthetic
// zero-valued sample is appended at "now" before computing intervals,
// so the gap since the last real sample is itself subject to outlier
// detection. Only unusually long gaps are reported as outliers.
func (ts *Timeseries) CycleStatistics(key string) (*CycleStats, error) {
	if key == "" {
		if len(ts.order) == 0 {
			return nil, fmt.Errorf("cycle statistics: %w", ErrNoData)
		}
		key = ts.order[0]
	}

	series := ts.series[key]
	if series == nil || series.Empty() {
		return nil, fmt.Errorf("cycle statistics for %q: %w", key, ErrNoData)
	}

	now := ts.now().UTC().Round(time.Second)
	first := series.Points[0].Timestamp
	last := series.Points[len(series.Points)-1].Timestamp

	stats := &CycleStats{
		Key:   key,
		Count: len(series.Points),
		First: first,
		Last:  last,
		Span:  last.Sub(first),
		Age:   now.Sub(last),
	}

	// Timestamps plus the synthetic sample at now
	stamps := make([]time.Time, 0, len(series.Points)+1)
	for _, p := range series.Points {
		stamps = append(stamps, p.Timestamp)
	}
	stamps = append(stamps, now)

	intervals := make([]int, 0, len(stamps)-1)
	for i := 1; i < len(stamps); i++ {
		minutes := int(math.Round(stamps[i].Sub(stamps[i-1]).Minutes()))
		intervals = append(intervals, minutes)
	}
	if len(intervals) == 0 {
		return stats, nil
	}

	stats.MedianInterval = median(intervals)
	stats.ModeInterval = mode(intervals)

	q1 := quantile(intervals, 0.25)
	q3 := quantile(intervals, 0.75)
	iqr := q3 - q1
	lowerFence := q1 - 1.5*iqr
	upperFence := q3 + 1.5*iqr

	for _, d := range intervals {
		f := float64(d)
		switch {
		case f > upperFence:
			stats.OutlierIntervals = append(stats.OutlierIntervals, d)
		case f >= lowerFence:
			stats.RegularIntervals = append(stats.RegularIntervals, d)
		}
		// Short gaps below the lower fence are not flagged
	}
	return stats, nil
}

// median returns the middle value of the intervals
func median(values []int) float64 {
	sorted := sortedFloats(values)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// mode returns the most frequent interval, the smallest one on ties
func mode(values []int) int {
	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := 0, -1
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}

// quantile computes the q-quantile with linear interpolation between
// closest ranks.
func quantile(values []int, q float64) float64 {
	sorted := sortedFloats(values)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func sortedFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	sort.Float64s(out)
	return out
}
