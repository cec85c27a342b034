package bom

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Engine is the unified entry point for all BOM computations: it
// owns a constructed Graph over a Repository and bundles C2-C7 behind
// one API. No hidden state exists beyond the arena and its per-node
// memoized costs. Engine holds no tiered result cache: it neither
// reads from nor writes to a bomcache.TieredCache.
//
// Construction validates acyclicity implicitly (graph building rejects
// any item that would close a cycle), so a successfully constructed
// Engine is already known to be a DAG; Validate() remains available
// for explicit re-checking.
type Engine struct {
	mu    sync.RWMutex
	graph *Graph
	repo  Repository
}

// NewEngine builds an Engine over the repository's entire BOM data
// set.
func NewEngine(ctx context.Context, repo Repository) (*Engine, error) {
	graph, err := FromRepository(ctx, repo)
	if err != nil {
		return nil, err
	}
	return &Engine{graph: graph, repo: repo}, nil
}

// NewEngineForComponent builds an Engine containing only the sub-tree
// reachable from component at the given effective date (nil = now).
func NewEngineForComponent(ctx context.Context, repo Repository, component ComponentId, effectiveDate *time.Time) (*Engine, error) {
	graph, err := FromComponent(ctx, repo, component, effectiveDate)
	if err != nil {
		return nil, err
	}
	return &Engine{graph: graph, repo: repo}, nil
}

// Stats returns the graph's shape.
func (e *Engine) Stats() GraphStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Stats()
}

// Explode computes the full material explosion of component.
func (e *Engine) Explode(component ComponentId, quantity decimal.Decimal) (ExplosionResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return NewExplosionCalculator(e.graph).Explode(component, quantity)
}

// ExplodeSingleLevel computes the direct-children-only explosion.
func (e *Engine) ExplodeSingleLevel(component ComponentId, quantity decimal.Decimal) ([]ExplosionItem, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return NewExplosionCalculator(e.graph).ExplodeSingleLevel(component, quantity)
}

// Flatten returns the flattened quantity-per-component view.
func (e *Engine) Flatten(component ComponentId) (map[ComponentId]decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return NewExplosionCalculator(e.graph).Flatten(component)
}

// CalculateCost returns the cost breakdown for component. This takes
// the exclusive lock, not RLock: CalculateAllCosts writes its
// memoized totals back into the arena's node cache as it goes, so two
// concurrent cost queries would otherwise race on the same node's
// cache fields.
func (e *Engine) CalculateCost(ctx context.Context, component ComponentId) (CostBreakdown, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewCostCalculator(e.graph, e.repo).CalculateCost(ctx, component)
}

// CalculateAllCosts computes cost breakdowns for every component in
// the graph. Exclusive lock for the same reason as CalculateCost.
func (e *Engine) CalculateAllCosts(ctx context.Context) (map[ComponentId]CostBreakdown, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewCostCalculator(e.graph, e.repo).CalculateAllCosts(ctx, e.graph.Roots())
}

// CalculateRollup returns material(component) * quantity. Exclusive
// lock: delegates to CalculateCost's cache write-back.
func (e *Engine) CalculateRollup(ctx context.Context, component ComponentId, quantity decimal.Decimal) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewCostCalculator(e.graph, e.repo).CalculateRollup(ctx, component, quantity)
}

// AnalyzeCostDrivers returns component's cost drivers, sorted by cost
// descending. Exclusive lock: delegates to CalculateAllCosts's cache
// write-back.
func (e *Engine) AnalyzeCostDrivers(ctx context.Context, component ComponentId) ([]CostDriver, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewCostCalculator(e.graph, e.repo).AnalyzeCostDrivers(ctx, component)
}

// WhereUsed returns component's direct parents and the routes by
// which roots reach them.
func (e *Engine) WhereUsed(component ComponentId) (WhereUsedResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return NewWhereUsedAnalyzer(e.graph).Analyze(component)
}

// FindRootAssemblies returns the root components that use component.
func (e *Engine) FindRootAssemblies(component ComponentId) ([]ComponentId, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return NewWhereUsedAnalyzer(e.graph).FindRootAssemblies(component)
}

// AnalyzeChangeImpact computes the ancestor closure and affected root
// assemblies for component.
func (e *Engine) AnalyzeChangeImpact(component ComponentId) (ImpactAnalysis, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return NewWhereUsedAnalyzer(e.graph).AnalyzeChangeImpact(component)
}

// FindSharedComponents returns components shared across two or more of
// the given assemblies.
func (e *Engine) FindSharedComponents(assemblies []ComponentId) ([]SharedComponent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return NewWhereUsedAnalyzer(e.graph).FindSharedComponents(assemblies)
}

// Graph exposes the underlying graph for advanced operations.
func (e *Engine) Graph() *Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// Repository returns the backing repository.
func (e *Engine) Repository() Repository {
	return e.repo
}

// Validate runs full cycle detection over the current graph.
func (e *Engine) Validate() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ValidateGraph(e.graph.Arena())
}

// MarkDirty marks component, and its ancestor closure, dirty for
// incremental recomputation. Requires exclusive access: callers must
// not have any query in flight against this Engine concurrently with
// MarkDirty.
func (e *Engine) MarkDirty(component ComponentId) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.MarkDirty(component)
}

// ClearCache resets every node's memoized computation cache.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.ClearCache()
}
