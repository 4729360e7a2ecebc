package timeseries

import (
	"time"
)

// Freshness bucket boundaries. The partition is total: age < 24h is
// fresh, 24h <= age < 72h is aging, age >= 72h is stale.
const (
	FreshWindow = 24 * time.Hour
	StaleWindow = 72 * time.Hour
)

// Bucket classifies measurement recency
type Bucket int

const (
	BucketFresh Bucket = iota
	BucketAging
	BucketStale
)

// String returns the display name of a bucket
func (b Bucket) String() string {
	switch b {
	case BucketFresh:
		return "fresh"
	case BucketAging:
		return "aging"
	case BucketStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Classify maps an age onto its freshness bucket
func Classify(age time.Duration) Bucket {
	switch {
	case age < FreshWindow:
		return BucketFresh
	case age < StaleWindow:
		return BucketAging
	default:
		return BucketStale
	}
}

// GroupValueKeys groups the retrieved value keys by the age of their
// most recent measurement relative to the end of the retrieval window.
// Keys without any data points count as stale. Within a bucket, keys
// keep their request order.
func (ts *Timeseries) GroupValueKeys() map[Bucket][]string {
	groups := make(map[Bucket][]string)
	for _, key := range ts.order {
		latest, ok := ts.series[key].Latest()
		if !ok {
			groups[BucketStale] = append(groups[BucketStale], key)
			continue
		}
		bucket := Classify(ts.End.Sub(latest))
		groups[bucket] = append(groups[bucket], key)
	}
	return groups
}
