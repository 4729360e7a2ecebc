package hierarchy

import (
	"context"
	"time"

	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/metrics"
)

// Hierarchy holds the reconstructed forest: three id-keyed registries
// plus the fetch order of every registry, so traversal and reporting
// stay deterministic across runs.
type Hierarchy struct {
	hub HubClient

	nodes            map[int]*Node
	instrumentations map[int]*Instrumentation
	assets           map[int]*Asset

	nodeOrder            []int
	instrumentationOrder []int
	assetOrder           []int

	log     logging.Logger
	metrics *metrics.Registry
}

// Option configures a Hierarchy
type Option func(*Hierarchy)

// WithLogger sets the structured logger
func WithLogger(l logging.Logger) Option {
	return func(h *Hierarchy) { h.log = l }
}

// WithMetrics sets the metrics registry
func WithMetrics(m *metrics.Registry) Option {
	return func(h *Hierarchy) { h.metrics = m }
}

// Clone fetches the full topology from the hub and builds a fresh,
// fully linked hierarchy. Nothing survives from previous builds.
func Clone(ctx context.Context, hub HubClient, opts ...Option) (*Hierarchy, error) {
	h := newEmpty(hub, opts...)

	start := time.Now()
	err := h.clone(ctx)
	h.metrics.RecordHierarchyBuild(len(h.nodes), len(h.instrumentations), len(h.assets), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	h.log.Info("hierarchy cloned",
		logging.Int("nodes", len(h.nodes)),
		logging.Int("instrumentations", len(h.instrumentations)),
		logging.Int("assets", len(h.assets)),
		logging.Latency(time.Since(start)),
	)
	return h, nil
}

// NewFromRecords builds a hierarchy from already-fetched records. Clone
// uses it after fetching; tests use it directly.
func NewFromRecords(hub HubClient, nodes []NodeRecord, instrumentations []InstrumentationRecord, opts ...Option) (*Hierarchy, error) {
	h := newEmpty(hub, opts...)
	if err := h.build(nodes, instrumentations); err != nil {
		return nil, err
	}
	return h, nil
}

func newEmpty(hub HubClient, opts ...Option) *Hierarchy {
	h := &Hierarchy{
		hub:              hub,
		nodes:            make(map[int]*Node),
		instrumentations: make(map[int]*Instrumentation),
		assets:           make(map[int]*Asset),
		log:              logging.NewNopLogger(),
		metrics:          metrics.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// clone is the fetch phase: two paginated listings, then the build
func (h *Hierarchy) clone(ctx context.Context) error {
	nodes, err := fetchNodeRecords(ctx, h.hub)
	if err != nil {
		return err
	}
	instrumentations, err := fetchInstrumentationRecords(ctx, h.hub)
	if err != nil {
		return err
	}
	return h.build(nodes, instrumentations)
}

// build promotes records into entities, then wires all links. Both
// registries are fully populated before any link is resolved, so the
// final link set does not depend on record order.
func (h *Hierarchy) build(nodes []NodeRecord, instrumentations []InstrumentationRecord) error {
	if err := h.createEntities(nodes, instrumentations); err != nil {
		return err
	}
	if err := h.link(nodes, instrumentations); err != nil {
		return err
	}
	return h.detectParentCycles()
}

// createEntities creates one entity per record: pure data, no links yet
func (h *Hierarchy) createEntities(nodes []NodeRecord, instrumentations []InstrumentationRecord) error {
	for _, rec := range nodes {
		if rec.ID < 0 {
			return &LinkError{Op: "CreateNode", Entity: "node", ID: rec.ID, Cause: ErrInvalidID}
		}
		if _, exists := h.nodes[rec.ID]; exists {
			return &LinkError{Op: "CreateNode", Entity: "node", ID: rec.ID, Cause: ErrDuplicateID}
		}
		h.nodes[rec.ID] = &Node{
			ID:       rec.ID,
			Name:     rec.Name,
			Type:     rec.Type,
			ParentID: -1,
		}
		h.nodeOrder = append(h.nodeOrder, rec.ID)
	}

	for _, rec := range instrumentations {
		if rec.ID < 0 {
			return &LinkError{Op: "CreateInstrumentation", Entity: "instrumentation", ID: rec.ID, Cause: ErrInvalidID}
		}
		if _, exists := h.instrumentations[rec.ID]; exists {
			return &LinkError{Op: "CreateInstrumentation", Entity: "instrumentation", ID: rec.ID, Cause: ErrDuplicateID}
		}
		h.instrumentations[rec.ID] = &Instrumentation{
			ID:              rec.ID,
			Tag:             rec.Tag,
			TypeCode:        rec.Type,
			Type:            ParseInstrumentationType(rec.Type),
			PrimaryValueKey: rec.PrimaryValueKey,
			ValueKeys:       append([]string(nil), rec.ValueKeys...),
			Thresholds:      groupThresholds(rec.ValueKeys, rec.Thresholds),
		}
		h.instrumentationOrder = append(h.instrumentationOrder, rec.ID)

		// Assets are deduplicated from the embedded summaries; a later
		// summary for the same id refreshes the descriptive fields.
		for _, s := range rec.Assets {
			if s.ID < 0 {
				return &LinkError{Op: "CreateAsset", Entity: "asset", ID: s.ID, Cause: ErrInvalidID}
			}
			if existing, ok := h.assets[s.ID]; ok {
				existing.SerialNumber = s.SerialNumber
				existing.ProductName = s.ProductName
				existing.ProductCode = s.ProductCode
				continue
			}
			h.assets[s.ID] = &Asset{
				ID:           s.ID,
				SerialNumber: s.SerialNumber,
				ProductName:  s.ProductName,
				ProductCode:  s.ProductCode,
			}
			h.assetOrder = append(h.assetOrder, s.ID)
		}
	}
	return nil
}

// groupThresholds groups raw threshold records by value key. The result
// is total over the declared keys: every key gets an entry even without
// thresholds, and thresholds for undeclared keys are dropped.
func groupThresholds(valueKeys []string, records []ThresholdRecord) map[string][]Threshold {
	grouped := make(map[string][]Threshold, len(valueKeys))
	for _, key := range valueKeys {
		grouped[key] = []Threshold{}
	}
	for _, rec := range records {
		if _, declared := grouped[rec.Key]; !declared {
			continue
		}
		grouped[rec.Key] = append(grouped[rec.Key], Threshold{
			Name:  rec.Name,
			Kind:  ThresholdKind(rec.Kind),
			Value: rec.Value,
		})
	}
	return grouped
}

// link populates all edges between the fully populated registries
func (h *Hierarchy) link(nodes []NodeRecord, instrumentations []InstrumentationRecord) error {
	for _, rec := range nodes {
		node := h.nodes[rec.ID]

		// A parent id that does not resolve leaves the node a root
		if rec.ParentID != nil {
			if parent, ok := h.nodes[*rec.ParentID]; ok {
				parent.SubnodeIDs = append(parent.SubnodeIDs, node.ID)
				node.ParentID = parent.ID
			}
		}

		for _, iid := range rec.InstrumentationIDs {
			instr, ok := h.instrumentations[iid]
			if !ok {
				return &LinkError{
					Op:     "LinkInstrumentations",
					Entity: "instrumentation",
					ID:     iid,
					Ref:    node.String(),
					Cause:  ErrInstrumentationNotFound,
				}
			}
			node.InstrumentationIDs = append(node.InstrumentationIDs, iid)
			instr.NodeIDs = append(instr.NodeIDs, node.ID)
		}
	}

	for _, rec := range instrumentations {
		instr := h.instrumentations[rec.ID]
		for _, s := range rec.Assets {
			// Summaries were promoted in createEntities, so this always resolves
			asset := h.assets[s.ID]
			instr.AssetIDs = append(instr.AssetIDs, asset.ID)
			asset.InstrumentationIDs = append(asset.InstrumentationIDs, instr.ID)
		}
	}
	return nil
}

// Three-color DFS over subnode edges. A GRAY node reached again means a
// back edge, i.e. a malformed parent chain.
const (
	colorWhite = 0 // unvisited
	colorGray  = 1 // currently visiting (on the recursion stack)
	colorBlack = 2 // finished visiting
)

// detectParentCycles rejects self-referential or cyclic parent chains
// during construction instead of risking infinite traversal later.
func (h *Hierarchy) detectParentCycles() error {
	color := make(map[int]int, len(h.nodes))
	for _, id := range h.nodeOrder {
		if color[id] == colorWhite {
			if path := h.dfsCycle(id, color, nil); path != nil {
				return &CycleError{Path: path}
			}
		}
	}
	return nil
}

// dfsCycle returns the cycle path when one is reachable from id
func (h *Hierarchy) dfsCycle(id int, color map[int]int, stack []int) []int {
	color[id] = colorGray
	stack = append(stack, id)

	for _, child := range h.nodes[id].SubnodeIDs {
		switch color[child] {
		case colorWhite:
			if path := h.dfsCycle(child, color, stack); path != nil {
				return path
			}
		case colorGray:
			// Back edge: the cycle runs from child through id
			for i, sid := range stack {
				if sid == child {
					path := append([]int(nil), stack[i:]...)
					return append(path, child)
				}
			}
		}
	}

	color[id] = colorBlack
	return nil
}
