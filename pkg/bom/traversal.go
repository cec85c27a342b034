package bom

// reachableFrom computes the set of nodes reachable from roots by
// following outgoing edges (BFS).
func reachableFrom(arena *Arena, roots []NodeIndex) map[NodeIndex]struct{} {
	reachable := make(map[NodeIndex]struct{}, len(roots))
	queue := make([]NodeIndex, 0, len(roots))

	for _, r := range roots {
		if _, ok := reachable[r]; !ok {
			reachable[r] = struct{}{}
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, ce := range arena.Children(n) {
			if _, ok := reachable[ce.Node]; !ok {
				reachable[ce.Node] = struct{}{}
				queue = append(queue, ce.Node)
			}
		}
	}

	return reachable
}

// DFSPreorder walks the reachable-from-roots subgraph depth-first,
// pre-order, pushing children in reverse order so that traversal
// visits the first child first (a stable, stack-based DFS).
func DFSPreorder(arena *Arena, roots []NodeIndex) []NodeIndex {
	visited := make(map[NodeIndex]struct{})
	var order []NodeIndex
	var stack []NodeIndex

	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[n]; seen {
			continue
		}
		visited[n] = struct{}{}
		order = append(order, n)

		children := arena.Children(n)
		for i := len(children) - 1; i >= 0; i-- {
			if _, seen := visited[children[i].Node]; !seen {
				stack = append(stack, children[i].Node)
			}
		}
	}

	return order
}

// BFS walks the reachable-from-roots subgraph breadth-first.
func BFS(arena *Arena, roots []NodeIndex) []NodeIndex {
	visited := make(map[NodeIndex]struct{})
	var order []NodeIndex
	queue := make([]NodeIndex, 0, len(roots))

	for _, r := range roots {
		if _, seen := visited[r]; !seen {
			visited[r] = struct{}{}
			queue = append(queue, r)
		}
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		for _, ce := range arena.Children(n) {
			if _, seen := visited[ce.Node]; !seen {
				visited[ce.Node] = struct{}{}
				queue = append(queue, ce.Node)
			}
		}
	}

	return order
}

// TopologicalSort returns the topological order of the subgraph
// reachable from roots, bottom-up (leaves first) by default.
//
// It computes the top-down order internally via Kahn's algorithm
// restricted to the reachable set, then reverses it — the bottom-up
// order level_grouping depends on is produced by reversing the
// top-down order, not by an independent computation.
func TopologicalSort(arena *Arena, roots []NodeIndex) []NodeIndex {
	reachable := reachableFrom(arena, roots)

	inDegree := make(map[NodeIndex]int, len(reachable))
	for n := range reachable {
		count := 0
		for _, pe := range arena.Parents(n) {
			if _, ok := reachable[pe.Node]; ok {
				count++
			}
		}
		inDegree[n] = count
	}

	var queue []NodeIndex
	for n, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, n)
		}
	}

	topDown := make([]NodeIndex, 0, len(reachable))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		topDown = append(topDown, n)

		for _, ce := range arena.Children(n) {
			if _, ok := reachable[ce.Node]; !ok {
				continue
			}
			inDegree[ce.Node]--
			if inDegree[ce.Node] == 0 {
				queue = append(queue, ce.Node)
			}
		}
	}

	bottomUp := make([]NodeIndex, len(topDown))
	for i, n := range topDown {
		bottomUp[len(topDown)-1-i] = n
	}
	return bottomUp
}

// LevelGrouping partitions the reachable-from-roots subgraph by
// distance from the leaves: level(n) = 0 if n has no reachable
// children, else 1 + max(level(child)). Nodes within a level have no
// dependency on each other and may be evaluated in parallel once every
// lower level is done.
//
// Levels are computed by walking the bottom-up topological order — so
// every child of n is guaranteed to have already been assigned a
// level by the time n is processed.
func LevelGrouping(arena *Arena, roots []NodeIndex) [][]NodeIndex {
	reachable := reachableFrom(arena, roots)
	order := TopologicalSort(arena, roots)

	level := make(map[NodeIndex]int, len(order))
	maxLevel := 0

	for _, n := range order {
		best := -1
		for _, ce := range arena.Children(n) {
			if _, ok := reachable[ce.Node]; !ok {
				continue
			}
			if l, ok := level[ce.Node]; ok && l > best {
				best = l
			}
		}
		lvl := best + 1
		level[n] = lvl
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	levels := make([][]NodeIndex, maxLevel+1)
	for _, n := range order {
		l := level[n]
		levels[l] = append(levels[l], n)
	}
	return levels
}

// FindAllPaths enumerates every simple path from src to tgt, via DFS
// with a path-scoped visited set (push before recursing, pop on
// backtrack). Exponential in DAG width; intended only for explanation
// output (where-used, explosion path lists), never for aggregate
// quantities.
func FindAllPaths(arena *Arena, src, tgt NodeIndex) [][]NodeIndex {
	var paths [][]NodeIndex
	visited := make(map[NodeIndex]struct{})
	var path []NodeIndex

	var dfs func(n NodeIndex)
	dfs = func(n NodeIndex) {
		visited[n] = struct{}{}
		path = append(path, n)

		if n == tgt {
			found := make([]NodeIndex, len(path))
			copy(found, path)
			paths = append(paths, found)
		} else {
			for _, ce := range arena.Children(n) {
				if _, seen := visited[ce.Node]; !seen {
					dfs(ce.Node)
				}
			}
		}

		path = path[:len(path)-1]
		delete(visited, n)
	}

	dfs(src)
	return paths
}
