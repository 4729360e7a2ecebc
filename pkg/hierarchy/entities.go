// Package hierarchy retrieves the asset topology from the hub and
// reconstructs it as an in-memory forest: locations at the top,
// applications and modules below, instrumentations attached to modules
// and assets attached to instrumentations.
//
// Entities live in three id-keyed registries and reference each other
// by id, never by owning pointer. The registries are read-only after
// construction; every analysis run rebuilds the whole graph.
package hierarchy

import (
	"fmt"
)

// Node type codes with dedicated traversal semantics. Node types are
// free-form strings on the wire; only these three steer the query API.
const (
	NodeTypeLocation          = "location"
	NodeTypeWaterAbstraction  = "water_abstraction"
	NodeTypeWaterDistribution = "water_distribution"
)

// InstrumentationType is the closed set of type codes the integrity
// checker knows about. Anything else maps to TypeOther so unfamiliar
// codes surface explicitly instead of silently passing checks.
type InstrumentationType int

const (
	TypeOther InstrumentationType = iota
	TypeFlow
	TypePressure
	TypeAnalysis
	TypePump
	TypeUndefined
)

// ParseInstrumentationType maps a wire type code onto the closed enum
func ParseInstrumentationType(code string) InstrumentationType {
	switch code {
	case "flow":
		return TypeFlow
	case "pressure":
		return TypePressure
	case "analysis":
		return TypeAnalysis
	case "pump":
		return TypePump
	case "undefined":
		return TypeUndefined
	default:
		return TypeOther
	}
}

// String returns the canonical code for a parsed instrumentation type
func (t InstrumentationType) String() string {
	switch t {
	case TypeFlow:
		return "flow"
	case TypePressure:
		return "pressure"
	case TypeAnalysis:
		return "analysis"
	case TypePump:
		return "pump"
	case TypeUndefined:
		return "undefined"
	default:
		return "other"
	}
}

// ThresholdKind is the direction of an alert boundary
type ThresholdKind string

const (
	KindUpper ThresholdKind = "upper"
	KindLower ThresholdKind = "lower"
)

// Threshold is a named alert boundary for one value key
type Threshold struct {
	Name  string
	Kind  ThresholdKind
	Value float64
}

func (t Threshold) String() string {
	return fmt.Sprintf("('%s', %s, %g)", t.Name, t.Kind, t.Value)
}

// Node is a topology element: a location, an application or a module.
// ParentID is -1 for roots. Subnode and instrumentation links are id
// references into the owning hierarchy's registries.
type Node struct {
	ID                 int
	Name               string
	Type               string
	ParentID           int
	SubnodeIDs         []int
	InstrumentationIDs []int
}

// IsRoot reports whether the node has no (resolvable) parent
func (n *Node) IsRoot() bool {
	return n.ParentID < 0
}

func (n *Node) String() string {
	return fmt.Sprintf("node(%d, '%s', %s)", n.ID, n.Name, n.Type)
}

// Instrumentation is a measurement point definition. TypeCode keeps the
// raw wire code; Type is its parsed closed-enum form. Thresholds is
// total over ValueKeys: every declared key has an entry, possibly empty.
type Instrumentation struct {
	ID              int
	Tag             string
	TypeCode        string
	Type            InstrumentationType
	PrimaryValueKey string // empty when the hub reports no primary specification
	ValueKeys       []string
	Thresholds      map[string][]Threshold
	AssetIDs        []int
	NodeIDs         []int
}

// HasValueKey reports whether key is declared for this instrumentation
func (i *Instrumentation) HasValueKey(key string) bool {
	for _, k := range i.ValueKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ThresholdOfKind returns the first threshold of the given kind for a
// value key, or false when none is registered.
func (i *Instrumentation) ThresholdOfKind(key string, kind ThresholdKind) (Threshold, bool) {
	for _, t := range i.Thresholds[key] {
		if t.Kind == kind {
			return t, true
		}
	}
	return Threshold{}, false
}

func (i *Instrumentation) String() string {
	return fmt.Sprintf("instr(%d, '%s', %s, '%s')", i.ID, i.Tag, i.TypeCode, i.PrimaryValueKey)
}

// Asset is a physical device record attached to one or more
// instrumentations.
type Asset struct {
	ID                 int
	SerialNumber       string
	ProductCode        string
	ProductName        string
	InstrumentationIDs []int
}

func (a *Asset) String() string {
	return fmt.Sprintf("asset(%d, '%s', '%s')", a.ID, a.SerialNumber, a.ProductCode)
}
