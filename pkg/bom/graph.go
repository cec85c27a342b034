package bom

import (
	"context"
	"time"
)

// Graph owns an Arena plus the set of root nodes (components with no
// incoming edges) identified when the graph was built.
type Graph struct {
	arena *Arena
	roots []NodeIndex
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{arena: NewArena()}
}

// FromRepository builds a graph containing every BomItem the
// repository holds. Capacity is estimated from the distinct component
// ids referenced, mirroring the teacher's capacity-estimating
// constructors.
func FromRepository(ctx context.Context, repo Repository) (*Graph, error) {
	items, err := repo.GetAllBomItems(ctx)
	if err != nil {
		return nil, ErrRepository(err)
	}

	distinct := make(map[ComponentId]struct{}, len(items)*2)
	for _, item := range items {
		distinct[item.ParentID] = struct{}{}
		distinct[item.ChildID] = struct{}{}
	}

	g := &Graph{arena: NewArenaWithCapacity(len(distinct), len(items))}

	for _, item := range items {
		if err := g.addBomItem(item); err != nil {
			return nil, err
		}
	}

	g.identifyRoots()
	return g, nil
}

// FromComponent builds a graph containing only the sub-tree reachable
// from root at the given effective date (nil = now), descending
// recursively and skipping children already loaded.
func FromComponent(ctx context.Context, repo Repository, root ComponentId, effectiveDate *time.Time) (*Graph, error) {
	g := &Graph{arena: NewArena()}
	g.arena.AddNode(root)

	if err := g.loadComponentTree(ctx, repo, root, effectiveDate); err != nil {
		return nil, err
	}

	g.identifyRoots()
	return g, nil
}

func (g *Graph) loadComponentTree(ctx context.Context, repo Repository, cid ComponentId, effectiveDate *time.Time) error {
	items, err := repo.GetBomItems(ctx, cid, effectiveDate)
	if err != nil {
		return ErrRepository(err)
	}

	for _, item := range items {
		_, alreadyLoaded := g.arena.FindNode(item.ChildID)

		if err := g.addBomItem(item); err != nil {
			return err
		}

		if !alreadyLoaded {
			if err := g.loadComponentTree(ctx, repo, item.ChildID, effectiveDate); err != nil {
				return err
			}
		}
	}

	return nil
}

// addBomItem inserts one BomItem as an edge, rejecting self-references
// and any insertion that would close a cycle (spec §4.2).
func (g *Graph) addBomItem(item BomItem) error {
	if item.ParentID == item.ChildID {
		return ErrCircularDependency(string(item.ParentID) + " references itself")
	}

	parent := g.arena.AddNode(item.ParentID)
	child := g.arena.AddNode(item.ChildID)

	if g.arena.HasPath(child, parent) {
		return ErrCircularDependency(string(item.ParentID) + " -> " + string(item.ChildID) + " would close a cycle")
	}

	g.arena.AddEdge(parent, child, item)
	return nil
}

// identifyRoots scans every node and records those with no incoming
// edges (I8).
func (g *Graph) identifyRoots() {
	g.roots = g.roots[:0]
	for i, n := range g.arena.Nodes() {
		if len(n.Incoming) == 0 {
			g.roots = append(g.roots, NodeIndex(i))
		}
	}
}

// Arena exposes the underlying arena for advanced/read-only use.
func (g *Graph) Arena() *Arena { return g.arena }

// Roots returns the current root node set.
func (g *Graph) Roots() []NodeIndex { return g.roots }

// FindNode looks up a component's node index.
func (g *Graph) FindNode(cid ComponentId) (NodeIndex, bool) {
	return g.arena.FindNode(cid)
}

// Stats summarizes the graph's shape.
func (g *Graph) Stats() GraphStats {
	maxDepth := 0
	memo := make(map[NodeIndex]int)
	for _, r := range g.roots {
		d := g.nodeDepth(r, memo)
		if d > maxDepth {
			maxDepth = d
		}
	}

	return GraphStats{
		NodeCount: g.arena.NodeCount(),
		EdgeCount: g.arena.EdgeCount(),
		RootCount: len(g.roots),
		MaxDepth:  maxDepth,
	}
}

func (g *Graph) nodeDepth(n NodeIndex, memo map[NodeIndex]int) int {
	if d, ok := memo[n]; ok {
		return d
	}

	maxChild := -1
	for _, ce := range g.arena.Children(n) {
		if d := g.nodeDepth(ce.Node, memo); d > maxChild {
			maxChild = d
		}
	}

	depth := maxChild + 1
	memo[n] = depth
	return depth
}

// ClearCache resets every node's memoized cache.
func (g *Graph) ClearCache() {
	g.arena.ClearCache()
}

// MarkDirty marks cid, and its ancestor closure, dirty for
// recomputation.
func (g *Graph) MarkDirty(cid ComponentId) error {
	if !g.arena.MarkDirty(cid) {
		return ErrComponentNotFound(cid)
	}
	return nil
}
