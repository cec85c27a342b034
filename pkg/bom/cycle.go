package bom

// cycleState is the three-color DFS marker for cycle detection.
type cycleState int

const (
	cycleUnvisited cycleState = iota
	cycleOnStack
	cycleDone
)

// CycleDetector runs full-graph cycle discovery over an Arena. Graph
// construction already rejects cycles at insert time (§4.2), so in
// ordinary use has_cycle never finds one; it remains available for
// re-validating data that bypassed the builder.
type CycleDetector struct {
	arena *Arena
}

// NewCycleDetector wraps an arena for cycle analysis.
func NewCycleDetector(arena *Arena) *CycleDetector {
	return &CycleDetector{arena: arena}
}

// HasCycle runs a three-color DFS from every node, returning true on
// the first back-edge found.
func (d *CycleDetector) HasCycle() bool {
	state := make(map[NodeIndex]cycleState)

	for i := range d.arena.Nodes() {
		n := NodeIndex(i)
		if state[n] == cycleUnvisited {
			if d.dfsCycle(n, state) {
				return true
			}
		}
	}

	return false
}

func (d *CycleDetector) dfsCycle(n NodeIndex, state map[NodeIndex]cycleState) bool {
	state[n] = cycleOnStack

	for _, ce := range d.arena.Children(n) {
		switch state[ce.Node] {
		case cycleOnStack:
			return true
		case cycleUnvisited:
			if d.dfsCycle(ce.Node, state) {
				return true
			}
		}
	}

	state[n] = cycleDone
	return false
}

// FindCycles returns every cycle found by a three-color DFS. A back
// edge u->v where v is currently on the recursion stack yields the
// cycle path[pos(v)..] ++ [v]; multiple cycles may overlap.
func (d *CycleDetector) FindCycles() [][]NodeIndex {
	state := make(map[NodeIndex]cycleState)
	var cycles [][]NodeIndex

	for i := range d.arena.Nodes() {
		n := NodeIndex(i)
		if state[n] == cycleUnvisited {
			var path []NodeIndex
			d.dfsFindCycles(n, state, path, &cycles)
		}
	}

	return cycles
}

func (d *CycleDetector) dfsFindCycles(n NodeIndex, state map[NodeIndex]cycleState, path []NodeIndex, cycles *[][]NodeIndex) {
	state[n] = cycleOnStack
	path = append(path, n)

	for _, ce := range d.arena.Children(n) {
		switch state[ce.Node] {
		case cycleOnStack:
			pos := -1
			for i, p := range path {
				if p == ce.Node {
					pos = i
					break
				}
			}
			if pos != -1 {
				cycle := make([]NodeIndex, len(path[pos:])+1)
				copy(cycle, path[pos:])
				cycle[len(cycle)-1] = ce.Node
				*cycles = append(*cycles, cycle)
			}
		case cycleUnvisited:
			d.dfsFindCycles(ce.Node, state, path, cycles)
		}
	}

	state[n] = cycleDone
}

// WouldCreateCycle reports whether adding an edge from -> to would
// close a cycle, i.e. whether to can already reach from.
func (d *CycleDetector) WouldCreateCycle(from, to NodeIndex) bool {
	return d.arena.HasPath(to, from)
}

// DescribeCycle renders a cycle (as node indices) as the sequence of
// ComponentIds it visits, for human-readable error messages.
func (d *CycleDetector) DescribeCycle(cycle []NodeIndex) []ComponentId {
	out := make([]ComponentId, 0, len(cycle))
	for _, idx := range cycle {
		if n := d.arena.Node(idx); n != nil {
			out = append(out, n.ComponentID)
		}
	}
	return out
}

// ValidateGraph runs cycle detection over arena and returns a
// CircularDependency error describing every cycle found, or nil.
func ValidateGraph(arena *Arena) error {
	detector := NewCycleDetector(arena)
	cycles := detector.FindCycles()
	if len(cycles) == 0 {
		return nil
	}

	msg := ""
	for i, cycle := range cycles {
		if i > 0 {
			msg += "; "
		}
		ids := detector.DescribeCycle(cycle)
		for j, id := range ids {
			if j > 0 {
				msg += " -> "
			}
			msg += string(id)
		}
	}

	return ErrCircularDependency(msg)
}
