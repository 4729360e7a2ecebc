package hierarchy

// Intermediate record structs mirroring one fetched API record each.
// They carry raw id references; promotion into linked entities happens
// in the hierarchy build.

// NodeRecord is one flattened node listing entry
type NodeRecord struct {
	ID                 int
	Name               string
	Type               string
	ParentID           *int // nil when the hub reports no parent
	InstrumentationIDs []int
}

// InstrumentationRecord is one flattened instrumentation listing entry
type InstrumentationRecord struct {
	ID              int
	Tag             string
	Type            string
	PrimaryValueKey string
	ValueKeys       []string
	Assets          []AssetSummary
	Thresholds      []ThresholdRecord
}

// AssetSummary is an asset as embedded in an instrumentation response.
// Assets have no standalone top-level fetch; the registry is built by
// deduplicating these summaries.
type AssetSummary struct {
	ID           int
	SerialNumber string
	ProductName  string
	ProductCode  string
}

// ThresholdRecord is one raw threshold entry before grouping by key
type ThresholdRecord struct {
	Key   string
	Name  string
	Kind  string
	Value float64
}
