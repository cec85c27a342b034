package bom

import "time"

// WhereUsedAnalyzer answers ancestor/impact queries over a Graph.
type WhereUsedAnalyzer struct {
	graph *Graph
}

// NewWhereUsedAnalyzer wraps a graph for where-used queries.
func NewWhereUsedAnalyzer(graph *Graph) *WhereUsedAnalyzer {
	return &WhereUsedAnalyzer{graph: graph}
}

// Analyze returns every direct parent of component, together with
// every route by which a root assembly reaches that parent.
func (w *WhereUsedAnalyzer) Analyze(component ComponentId) (WhereUsedResult, error) {
	node, ok := w.graph.FindNode(component)
	if !ok {
		return WhereUsedResult{}, ErrComponentNotFound(component)
	}

	arena := w.graph.Arena()
	var items []WhereUsedItem

	for _, pe := range arena.Parents(node) {
		parentNode := arena.Node(pe.Node)
		if parentNode == nil {
			continue
		}

		var allPaths [][]NodeIndex
		for _, root := range w.graph.Roots() {
			allPaths = append(allPaths, FindAllPaths(arena, root, pe.Node)...)
		}

		componentPaths := make([][]ComponentId, 0, len(allPaths))
		maxLen := 1
		for _, p := range allPaths {
			cp := make([]ComponentId, 0, len(p))
			for _, idx := range p {
				if n := arena.Node(idx); n != nil {
					cp = append(cp, n.ComponentID)
				}
			}
			if len(cp) > 0 {
				componentPaths = append(componentPaths, cp)
			}
			if len(p) > maxLen {
				maxLen = len(p)
			}
		}

		items = append(items, WhereUsedItem{
			ParentID: parentNode.ComponentID,
			Quantity: pe.Edge.EffectiveQuantity,
			Level:    maxLen,
			Paths:    componentPaths,
		})
	}

	return WhereUsedResult{
		Component: component,
		UsedIn:    items,
		QueriedAt: time.Now().UTC(),
	}, nil
}

// FindRootAssemblies returns the root components that transitively use
// component.
func (w *WhereUsedAnalyzer) FindRootAssemblies(component ComponentId) ([]ComponentId, error) {
	node, ok := w.graph.FindNode(component)
	if !ok {
		return nil, ErrComponentNotFound(component)
	}

	arena := w.graph.Arena()
	seen := make(map[ComponentId]struct{})
	var out []ComponentId

	for _, root := range w.graph.Roots() {
		if len(FindAllPaths(arena, root, node)) == 0 {
			continue
		}
		rootComponent := arena.Node(root).ComponentID
		if _, dup := seen[rootComponent]; dup {
			continue
		}
		seen[rootComponent] = struct{}{}
		out = append(out, rootComponent)
	}

	return out, nil
}

// AnalyzeChangeImpact computes the ancestor closure of component via
// iterative BFS over incoming edges, intersected with the graph's
// roots to surface affected top-level products.
func (w *WhereUsedAnalyzer) AnalyzeChangeImpact(component ComponentId) (ImpactAnalysis, error) {
	node, ok := w.graph.FindNode(component)
	if !ok {
		return ImpactAnalysis{}, ErrComponentNotFound(component)
	}

	arena := w.graph.Arena()
	visited := map[NodeIndex]struct{}{node: {}}
	queue := []NodeIndex{node}
	var affected []NodeIndex

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, pe := range arena.Parents(n) {
			if _, seen := visited[pe.Node]; seen {
				continue
			}
			visited[pe.Node] = struct{}{}
			affected = append(affected, pe.Node)
			queue = append(queue, pe.Node)
		}
	}

	rootSet := make(map[NodeIndex]struct{}, len(w.graph.Roots()))
	for _, r := range w.graph.Roots() {
		rootSet[r] = struct{}{}
	}

	affectedComponents := make([]ComponentId, 0, len(affected))
	var affectedRoots []ComponentId
	for _, n := range affected {
		cid := arena.Node(n).ComponentID
		affectedComponents = append(affectedComponents, cid)
		if _, isRoot := rootSet[n]; isRoot {
			affectedRoots = append(affectedRoots, cid)
		}
	}

	return ImpactAnalysis{
		ChangedComponent:       component,
		AffectedComponents:     affectedComponents,
		AffectedRootAssemblies: affectedRoots,
		AnalyzedAt:             time.Now().UTC(),
	}, nil
}

// FindSharedComponents returns, for the given assemblies, every
// component that appears in the descendant set of two or more of
// them.
func (w *WhereUsedAnalyzer) FindSharedComponents(assemblies []ComponentId) ([]SharedComponent, error) {
	arena := w.graph.Arena()

	usage := make(map[ComponentId][]ComponentId)

	for _, assemblyID := range assemblies {
		assemblyNode, ok := w.graph.FindNode(assemblyID)
		if !ok {
			return nil, ErrComponentNotFound(assemblyID)
		}

		descendants := w.descendantSet(arena, assemblyNode)
		for _, d := range descendants {
			if d == assemblyNode {
				continue
			}
			cid := arena.Node(d).ComponentID
			usage[cid] = append(usage[cid], assemblyID)
		}
	}

	var shared []SharedComponent
	for cid, owners := range usage {
		if len(owners) < 2 {
			continue
		}
		shared = append(shared, SharedComponent{
			ComponentID:      cid,
			UsedInCount:      len(owners),
			UsedInAssemblies: owners,
		})
	}

	return shared, nil
}

func (w *WhereUsedAnalyzer) descendantSet(arena *Arena, root NodeIndex) []NodeIndex {
	visited := map[NodeIndex]struct{}{root: {}}
	stack := []NodeIndex{root}
	var out []NodeIndex

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)

		for _, ce := range arena.Children(n) {
			if _, seen := visited[ce.Node]; !seen {
				visited[ce.Node] = struct{}{}
				stack = append(stack, ce.Node)
			}
		}
	}

	return out
}
