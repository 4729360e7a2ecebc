package hierarchy

// Stateless accessors over the built registries. All traversal methods
// resolve id references through the owning registry and return results
// in fetch order.

// Node returns the node with the given id
func (h *Hierarchy) Node(id int) (*Node, bool) {
	n, ok := h.nodes[id]
	return n, ok
}

// Instrumentation returns the instrumentation with the given id
func (h *Hierarchy) Instrumentation(id int) (*Instrumentation, bool) {
	i, ok := h.instrumentations[id]
	return i, ok
}

// Asset returns the asset with the given id
func (h *Hierarchy) Asset(id int) (*Asset, bool) {
	a, ok := h.assets[id]
	return a, ok
}

// NodeCount returns the number of nodes in the registry
func (h *Hierarchy) NodeCount() int { return len(h.nodes) }

// InstrumentationCount returns the number of instrumentations
func (h *Hierarchy) InstrumentationCount() int { return len(h.instrumentations) }

// AssetCount returns the number of assets
func (h *Hierarchy) AssetCount() int { return len(h.assets) }

// AllNodes returns every node in fetch order
func (h *Hierarchy) AllNodes() []*Node {
	out := make([]*Node, 0, len(h.nodeOrder))
	for _, id := range h.nodeOrder {
		out = append(out, h.nodes[id])
	}
	return out
}

// AllInstrumentations returns every instrumentation in fetch order
func (h *Hierarchy) AllInstrumentations() []*Instrumentation {
	out := make([]*Instrumentation, 0, len(h.instrumentationOrder))
	for _, id := range h.instrumentationOrder {
		out = append(out, h.instrumentations[id])
	}
	return out
}

// Parent resolves a node's parent, or nil for roots
func (h *Hierarchy) Parent(n *Node) *Node {
	if n.IsRoot() {
		return nil
	}
	return h.nodes[n.ParentID]
}

// Subnodes resolves a node's direct children
func (h *Hierarchy) Subnodes(n *Node) []*Node {
	out := make([]*Node, 0, len(n.SubnodeIDs))
	for _, id := range n.SubnodeIDs {
		out = append(out, h.nodes[id])
	}
	return out
}

// Locations returns all nodes of type "location"
func (h *Hierarchy) Locations() []*Node {
	var out []*Node
	for _, id := range h.nodeOrder {
		if n := h.nodes[id]; n.Type == NodeTypeLocation {
			out = append(out, n)
		}
	}
	return out
}

// Applications returns a location's direct children of type
// water_abstraction or water_distribution.
func (h *Hierarchy) Applications(location *Node) []*Node {
	var out []*Node
	for _, child := range h.Subnodes(location) {
		if child.Type == NodeTypeWaterAbstraction || child.Type == NodeTypeWaterDistribution {
			out = append(out, child)
		}
	}
	return out
}

// Modules returns an application's direct children; any type qualifies
func (h *Hierarchy) Modules(application *Node) []*Node {
	return h.Subnodes(application)
}

// Instrumentations returns a module's directly attached
// instrumentations (not recursive).
func (h *Hierarchy) Instrumentations(module *Node) []*Instrumentation {
	out := make([]*Instrumentation, 0, len(module.InstrumentationIDs))
	for _, id := range module.InstrumentationIDs {
		out = append(out, h.instrumentations[id])
	}
	return out
}

// Assets returns an instrumentation's attached assets
func (h *Hierarchy) Assets(instr *Instrumentation) []*Asset {
	out := make([]*Asset, 0, len(instr.AssetIDs))
	for _, id := range instr.AssetIDs {
		out = append(out, h.assets[id])
	}
	return out
}

// AssetBySerial scans the asset registry for the first exact serial
// number match; a nil result means not found.
func (h *Hierarchy) AssetBySerial(serial string) *Asset {
	for _, id := range h.assetOrder {
		if a := h.assets[id]; a.SerialNumber == serial {
			return a
		}
	}
	return nil
}
