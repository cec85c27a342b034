package bom

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CostCalculator computes bottom-up material cost rollups over a
// Graph, backed by a Repository for each component's own standard
// cost.
type CostCalculator struct {
	graph *Graph
	repo  Repository
}

// NewCostCalculator wraps a graph and repository for cost queries.
func NewCostCalculator(graph *Graph, repo Repository) *CostCalculator {
	return &CostCalculator{graph: graph, repo: repo}
}

// CalculateCost returns the cost breakdown for component, using the
// node's memoized cache when it is not dirty (incremental
// computation), and otherwise recomputing the full sub-DAG.
func (c *CostCalculator) CalculateCost(ctx context.Context, component ComponentId) (CostBreakdown, error) {
	node, ok := c.graph.FindNode(component)
	if !ok {
		return CostBreakdown{}, ErrComponentNotFound(component)
	}

	arena := c.graph.Arena()
	if n := arena.Node(node); n != nil && !n.dirty && n.cache.totalMaterialCost != nil {
		cached := *n.cache.totalMaterialCost
		return CostBreakdown{
			ComponentID:  component,
			MaterialCost: cached,
			TotalCost:    cached,
			CalculatedAt: time.Now().UTC(),
		}, nil
	}

	costMap, err := c.CalculateAllCosts(ctx, []NodeIndex{node})
	if err != nil {
		return CostBreakdown{}, err
	}

	breakdown, ok := costMap[component]
	if !ok {
		return CostBreakdown{}, ErrCalculation("cost not found for " + string(component))
	}
	return breakdown, nil
}

// CalculateAllCosts computes cost breakdowns for every node reachable
// from roots, processing level_grouping's bottom-up levels in order
// (leaves first) so that, within a level, every child's cost is
// already known by the time its parents are evaluated in parallel.
func (c *CostCalculator) CalculateAllCosts(ctx context.Context, roots []NodeIndex) (map[ComponentId]CostBreakdown, error) {
	arena := c.graph.Arena()
	costMap := make(map[ComponentId]CostBreakdown)

	nodes := arena.Nodes()
	componentIDs := make([]ComponentId, len(nodes))
	for i, n := range nodes {
		componentIDs[i] = n.ComponentID
	}

	components, err := c.repo.GetComponents(ctx, componentIDs)
	if err != nil {
		return nil, ErrRepository(err)
	}
	componentData := make(map[ComponentId]Component, len(components))
	for _, comp := range components {
		componentData[comp.ID] = comp
	}

	levels := LevelGrouping(arena, roots)

	for _, levelNodes := range levels {
		type result struct {
			cid       ComponentId
			breakdown CostBreakdown
			node      NodeIndex
			total     decimal.Decimal
		}

		results := make([]*result, len(levelNodes))
		g := new(errgroup.Group)

		for pos, nodeIdx := range levelNodes {
			pos, nodeIdx := pos, nodeIdx

			g.Go(func() error {
				node := arena.Node(nodeIdx)
				if node == nil {
					return nil
				}
				component, ok := componentData[node.ComponentID]
				if !ok {
					return nil
				}

				ownCost := decimal.Zero
				if component.StandardCost != nil {
					ownCost = *component.StandardCost
				}

				childrenCost := decimal.Zero
				for _, ce := range arena.Children(nodeIdx) {
					childNode := arena.Node(ce.Node)
					if childNode == nil {
						continue
					}
					childBreakdown, ok := costMap[childNode.ComponentID]
					if !ok {
						continue
					}
					childrenCost = childrenCost.Add(childBreakdown.TotalCost.Mul(ce.Edge.EffectiveQuantity))
				}

				total := ownCost.Add(childrenCost)
				results[pos] = &result{
					cid:  node.ComponentID,
					node: nodeIdx,
					total: total,
					breakdown: CostBreakdown{
						ComponentID:  node.ComponentID,
						MaterialCost: total,
						TotalCost:    total,
						CalculatedAt: time.Now().UTC(),
					},
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, ErrCalculation(err.Error())
		}

		for _, r := range results {
			if r == nil {
				continue
			}
			costMap[r.cid] = r.breakdown
			node := arena.Node(r.node)
			total := r.total
			node.cache.totalMaterialCost = &total
			node.dirty = false
		}
	}

	return costMap, nil
}

// CalculateRollup returns material(component) * quantity.
func (c *CostCalculator) CalculateRollup(ctx context.Context, component ComponentId, quantity decimal.Decimal) (decimal.Decimal, error) {
	breakdown, err := c.CalculateCost(ctx, component)
	if err != nil {
		return decimal.Zero, err
	}
	return breakdown.TotalCost.Mul(quantity), nil
}

// AnalyzeCostDrivers returns every other component in component's
// subgraph as a CostDriver, sorted by cost descending.
func (c *CostCalculator) AnalyzeCostDrivers(ctx context.Context, component ComponentId) ([]CostDriver, error) {
	node, ok := c.graph.FindNode(component)
	if !ok {
		return nil, ErrComponentNotFound(component)
	}

	costMap, err := c.CalculateAllCosts(ctx, []NodeIndex{node})
	if err != nil {
		return nil, err
	}

	totalCost := decimal.Zero
	if b, ok := costMap[component]; ok {
		totalCost = b.TotalCost
	}

	drivers := make([]CostDriver, 0, len(costMap))
	for cid, breakdown := range costMap {
		if cid == component {
			continue
		}
		percentage := decimal.Zero
		if !totalCost.IsZero() {
			percentage = breakdown.TotalCost.Div(totalCost).Mul(decimal.NewFromInt(100))
		}
		drivers = append(drivers, CostDriver{
			ComponentID: cid,
			Cost:        breakdown.TotalCost,
			Percentage:  percentage,
		})
	}

	sort.Slice(drivers, func(i, j int) bool {
		cmp := drivers[j].Cost.Cmp(drivers[i].Cost)
		if cmp != 0 {
			return cmp < 0
		}
		return drivers[i].ComponentID < drivers[j].ComponentID
	})

	return drivers, nil
}
