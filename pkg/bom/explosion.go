package bom

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ExplosionCalculator computes multi-level material requirements over
// a Graph.
type ExplosionCalculator struct {
	graph *Graph
}

// NewExplosionCalculator wraps a graph for explosion queries.
func NewExplosionCalculator(graph *Graph) *ExplosionCalculator {
	return &ExplosionCalculator{graph: graph}
}

type childContribution struct {
	child     NodeIndex
	qty       decimal.Decimal
	paths     [][]NodeIndex
	isPhantom bool
}

// Explode computes the full material explosion of component under
// quantity units of it, per spec §4.5: levels are processed top-down
// (roots first), parents within a level fork in parallel to compute
// their children's contributions, and those contributions are
// aggregated sequentially at the level barrier.
func (c *ExplosionCalculator) Explode(component ComponentId, quantity decimal.Decimal) (ExplosionResult, error) {
	root, ok := c.graph.FindNode(component)
	if !ok {
		return ExplosionResult{}, ErrComponentNotFound(component)
	}

	arena := c.graph.Arena()

	qty := map[NodeIndex]decimal.Decimal{root: quantity}
	paths := map[NodeIndex][][]NodeIndex{root: {{root}}}
	phantom := map[NodeIndex]bool{root: false}

	levels := LevelGrouping(arena, []NodeIndex{root})

	for i := len(levels) - 1; i >= 0; i-- {
		levelNodes := levels[i]

		results := make([][]childContribution, len(levelNodes))
		g := new(errgroup.Group)
		for pos, parent := range levelNodes {
			pos, parent := pos, parent
			parentQty, ok := qty[parent]
			if !ok {
				continue
			}
			parentPaths := paths[parent]

			g.Go(func() error {
				var contributions []childContribution
				for _, ce := range arena.Children(parent) {
					childQty := ce.Edge.EffectiveQuantity.Mul(parentQty)

					childPaths := make([][]NodeIndex, 0, len(parentPaths))
					for _, p := range parentPaths {
						np := make([]NodeIndex, len(p)+1)
						copy(np, p)
						np[len(p)] = ce.Node
						childPaths = append(childPaths, np)
					}

					contributions = append(contributions, childContribution{
						child:     ce.Node,
						qty:       childQty,
						paths:     childPaths,
						isPhantom: ce.Edge.BomItem.IsPhantom,
					})
				}
				results[pos] = contributions
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return ExplosionResult{}, ErrCalculation(err.Error())
		}

		for _, contributions := range results {
			for _, cc := range contributions {
				if existing, ok := qty[cc.child]; ok {
					qty[cc.child] = existing.Add(cc.qty)
				} else {
					qty[cc.child] = cc.qty
				}
				paths[cc.child] = append(paths[cc.child], cc.paths...)
				phantom[cc.child] = phantom[cc.child] || cc.isPhantom
			}
		}
	}

	items := make([]ExplosionItem, 0, len(qty))
	for node, total := range qty {
		if node == root {
			continue
		}
		n := arena.Node(node)
		if n == nil {
			continue
		}

		maxLen := 0
		for _, p := range paths[node] {
			if len(p) > maxLen {
				maxLen = len(p)
			}
		}
		level := maxLen - 1
		if level < 0 {
			level = 0
		}

		componentPaths := make([][]ComponentId, 0, len(paths[node]))
		for _, p := range paths[node] {
			cp := make([]ComponentId, 0, len(p))
			for _, idx := range p {
				if pn := arena.Node(idx); pn != nil {
					cp = append(cp, pn.ComponentID)
				}
			}
			if len(cp) > 0 {
				componentPaths = append(componentPaths, cp)
			}
		}

		items = append(items, ExplosionItem{
			ComponentID:   n.ComponentID,
			TotalQuantity: total,
			Level:         level,
			Paths:         componentPaths,
			IsPhantom:     phantom[node],
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Level != items[j].Level {
			return items[i].Level < items[j].Level
		}
		return items[i].ComponentID < items[j].ComponentID
	})

	maxDepth := 0
	for _, it := range items {
		if it.Level > maxDepth {
			maxDepth = it.Level
		}
	}

	return ExplosionResult{
		RootComponent:        component,
		Items:                items,
		UniqueComponentCount: len(items),
		MaxDepth:             maxDepth,
		CalculatedAt:         time.Now().UTC(),
	}, nil
}

// ExplodeSingleLevel emits one ExplosionItem per direct child of
// component, without descending further.
func (c *ExplosionCalculator) ExplodeSingleLevel(component ComponentId, quantity decimal.Decimal) ([]ExplosionItem, error) {
	node, ok := c.graph.FindNode(component)
	if !ok {
		return nil, ErrComponentNotFound(component)
	}

	arena := c.graph.Arena()
	parent := arena.Node(node)

	items := make([]ExplosionItem, 0)
	for _, ce := range arena.Children(node) {
		child := arena.Node(ce.Node)
		if child == nil {
			continue
		}
		items = append(items, ExplosionItem{
			ComponentID:   child.ComponentID,
			TotalQuantity: ce.Edge.EffectiveQuantity.Mul(quantity),
			Level:         1,
			Paths:         [][]ComponentId{{parent.ComponentID, child.ComponentID}},
			IsPhantom:     ce.Edge.BomItem.IsPhantom,
		})
	}

	return items, nil
}

// Flatten is explode(component, 1) reduced to a quantity-per-component
// map.
func (c *ExplosionCalculator) Flatten(component ComponentId) (map[ComponentId]decimal.Decimal, error) {
	result, err := c.Explode(component, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}

	out := make(map[ComponentId]decimal.Decimal, len(result.Items))
	for _, item := range result.Items {
		out[item.ComponentID] = item.TotalQuantity
	}
	return out, nil
}
