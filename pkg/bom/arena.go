package bom

import "github.com/shopspring/decimal"

// NodeIndex addresses a Node within an Arena. It is stable for the
// lifetime of the node (freed indices are not reused while the node
// they addressed is still reachable by callers).
type NodeIndex int

// EdgeIndex addresses an Edge within an Arena.
type EdgeIndex int

// nodeCache holds memoized, incrementally-invalidated per-node
// results. A nil/false field means "not computed"; callers must check
// Node.dirty before trusting a populated field (I7).
type nodeCache struct {
	totalMaterialCost *decimal.Decimal
	explosionQuantity *decimal.Decimal
	level             *int
}

// Node is one component's position in the arena: its adjacency (as
// edge indices) and its memoized, dirty-tracked cache.
type Node struct {
	ComponentID ComponentId
	Incoming    []EdgeIndex
	Outgoing    []EdgeIndex
	cache       nodeCache
	dirty       bool
	version     int
}

// Dirty reports whether this node's cache must be recomputed (I7).
func (n *Node) Dirty() bool { return n.dirty }

// Version is incremented each time this node goes from clean to dirty
// through dirty propagation; marking an already-dirty node, creating
// the node, and ClearCache leave it unchanged.
func (n *Node) Version() int { return n.version }

// Edge is a directed parent->child usage, snapshotting the BomItem
// that produced it.
type Edge struct {
	Source            NodeIndex
	Target            NodeIndex
	BomItem           BomItem
	EffectiveQuantity decimal.Decimal
}

// Arena stores nodes and edges in two contiguous, index-addressable
// slices. Freed slots are tracked by free-lists and reused on the next
// add_node/add_edge, but a freed index must never be dereferenced by a
// caller that held it before the free.
type Arena struct {
	nodes           []Node
	edges           []Edge
	componentIndex  map[ComponentId]NodeIndex
	freeNodes       []NodeIndex
	freeEdges       []EdgeIndex
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		componentIndex: make(map[ComponentId]NodeIndex),
	}
}

// NewArenaWithCapacity pre-sizes the node/edge slices and the index
// map, mirroring the teacher's capacity-estimate constructors.
func NewArenaWithCapacity(nodeCap, edgeCap int) *Arena {
	return &Arena{
		nodes:          make([]Node, 0, nodeCap),
		edges:          make([]Edge, 0, edgeCap),
		componentIndex: make(map[ComponentId]NodeIndex, nodeCap),
	}
}

// AddNode returns the index for cid, allocating a new node (preferring
// a free-list slot) if one does not already exist. Idempotent on cid.
func (a *Arena) AddNode(cid ComponentId) NodeIndex {
	if idx, ok := a.componentIndex[cid]; ok {
		return idx
	}

	node := Node{ComponentID: cid, dirty: true, version: 0}

	var idx NodeIndex
	if n := len(a.freeNodes); n > 0 {
		idx = a.freeNodes[n-1]
		a.freeNodes = a.freeNodes[:n-1]
		a.nodes[idx] = node
	} else {
		idx = NodeIndex(len(a.nodes))
		a.nodes = append(a.nodes, node)
	}

	a.componentIndex[cid] = idx
	return idx
}

// AddEdge inserts a parent->child edge for item, updates both
// adjacency lists, and marks the parent's dirty closure.
func (a *Arena) AddEdge(parent, child NodeIndex, item BomItem) EdgeIndex {
	edge := Edge{
		Source:            parent,
		Target:            child,
		BomItem:           item,
		EffectiveQuantity: item.EffectiveQuantity(),
	}

	var idx EdgeIndex
	if n := len(a.freeEdges); n > 0 {
		idx = a.freeEdges[n-1]
		a.freeEdges = a.freeEdges[:n-1]
		a.edges[idx] = edge
	} else {
		idx = EdgeIndex(len(a.edges))
		a.edges = append(a.edges, edge)
	}

	a.nodes[parent].Outgoing = append(a.nodes[parent].Outgoing, idx)
	a.nodes[child].Incoming = append(a.nodes[child].Incoming, idx)

	a.markDirtyRecursive(parent)

	return idx
}

// Node returns a pointer to the node at idx, or nil if idx is out of
// range.
func (a *Arena) Node(idx NodeIndex) *Node {
	if int(idx) < 0 || int(idx) >= len(a.nodes) {
		return nil
	}
	return &a.nodes[idx]
}

// Edge returns a pointer to the edge at idx, or nil if idx is out of
// range.
func (a *Arena) Edge(idx EdgeIndex) *Edge {
	if int(idx) < 0 || int(idx) >= len(a.edges) {
		return nil
	}
	return &a.edges[idx]
}

// FindNode looks up the node index for a ComponentId, if one exists.
func (a *Arena) FindNode(cid ComponentId) (NodeIndex, bool) {
	idx, ok := a.componentIndex[cid]
	return idx, ok
}

// NodeCount returns the number of live nodes (allocated minus freed).
func (a *Arena) NodeCount() int {
	return len(a.nodes) - len(a.freeNodes)
}

// EdgeCount returns the number of live edges (allocated minus freed).
func (a *Arena) EdgeCount() int {
	return len(a.edges) - len(a.freeEdges)
}

// markDirtyRecursive marks n and every ancestor of n dirty. It stops
// as soon as it reaches an already-dirty node: since I6 is monotone
// (dirty ancestors stay dirty), this bounds the recursion to O(nodes)
// over the whole arena regardless of how many times it is called.
func (a *Arena) markDirtyRecursive(n NodeIndex) {
	node := &a.nodes[n]
	if node.dirty {
		return
	}
	node.dirty = true
	node.version++

	for _, eidx := range node.Incoming {
		edge := &a.edges[eidx]
		a.markDirtyRecursive(edge.Source)
	}
}

// MarkDirty marks the node for cid, and its ancestor closure, dirty.
func (a *Arena) MarkDirty(cid ComponentId) bool {
	idx, ok := a.componentIndex[cid]
	if !ok {
		return false
	}
	a.markDirtyRecursive(idx)
	return true
}

// ClearDirtyFlags sets dirty = false on every node, without touching
// their caches. Used after a recompute pass has refreshed every cache
// that was dirty.
func (a *Arena) ClearDirtyFlags() {
	for i := range a.nodes {
		a.nodes[i].dirty = false
	}
}

// ClearCache resets every node's memoized cache to empty and marks it
// dirty, forcing full recomputation on next query.
func (a *Arena) ClearCache() {
	for i := range a.nodes {
		a.nodes[i].cache = nodeCache{}
		a.nodes[i].dirty = true
	}
}

// AdjacentEdge pairs a neighboring node with the edge connecting it.
type AdjacentEdge struct {
	Node NodeIndex
	Edge *Edge
}

// Children iterates the (childIndex, edge) pairs for n's outgoing
// edges, in insertion order.
func (a *Arena) Children(n NodeIndex) []AdjacentEdge {
	node := &a.nodes[n]
	out := make([]AdjacentEdge, 0, len(node.Outgoing))
	for _, eidx := range node.Outgoing {
		edge := &a.edges[eidx]
		out = append(out, AdjacentEdge{edge.Target, edge})
	}
	return out
}

// Parents iterates the (parentIndex, edge) pairs for n's incoming
// edges, in insertion order.
func (a *Arena) Parents(n NodeIndex) []AdjacentEdge {
	node := &a.nodes[n]
	out := make([]AdjacentEdge, 0, len(node.Incoming))
	for _, eidx := range node.Incoming {
		edge := &a.edges[eidx]
		out = append(out, AdjacentEdge{edge.Source, edge})
	}
	return out
}

// HasPath reports whether tgt is reachable from src by following
// outgoing edges. Iterative DFS with a boolean-visited slice, O(V+E).
func (a *Arena) HasPath(src, tgt NodeIndex) bool {
	if src == tgt {
		return true
	}

	visited := make([]bool, len(a.nodes))
	stack := []NodeIndex{src}
	visited[src] = true

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, eidx := range a.nodes[n].Outgoing {
			child := a.edges[eidx].Target
			if child == tgt {
				return true
			}
			if !visited[child] {
				visited[child] = true
				stack = append(stack, child)
			}
		}
	}

	return false
}

// Nodes exposes the live node slice for callers (C2/C6) that must scan
// every node, e.g. to identify roots or batch-load components.
func (a *Arena) Nodes() []Node {
	return a.nodes
}
