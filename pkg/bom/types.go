// Package bom implements the computational core of a Bill-of-Materials
// engine: an arena-backed DAG over components and their usages, with
// material explosion, cost rollup, and where-used analysis built on top
// of a shared traversal kernel.
package bom

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComponentId is an opaque, immutable identifier for a Component.
type ComponentId string

// ComponentType classifies the role a Component plays in a product
// structure.
type ComponentType int

const (
	ComponentFinished ComponentType = iota
	ComponentSemiFinished
	ComponentRaw
	ComponentPackaging
	ComponentService
)

func (t ComponentType) String() string {
	switch t {
	case ComponentFinished:
		return "finished"
	case ComponentSemiFinished:
		return "semi_finished"
	case ComponentRaw:
		return "raw"
	case ComponentPackaging:
		return "packaging"
	case ComponentService:
		return "service"
	default:
		return "unknown"
	}
}

// ProcurementType describes how a Component is obtained.
type ProcurementType int

const (
	ProcurementMake ProcurementType = iota
	ProcurementBuy
	ProcurementBoth
)

func (t ProcurementType) String() string {
	switch t {
	case ProcurementMake:
		return "make"
	case ProcurementBuy:
		return "buy"
	case ProcurementBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Component is an item identified by a ComponentId: raw material,
// semi-finished assembly, finished product, packaging, or service.
type Component struct {
	ID            ComponentId
	Description   string
	Type          ComponentType
	UOM           string
	StandardCost  *decimal.Decimal
	LeadTimeDays  *uint32
	Procurement   ProcurementType
	Organization  string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BomUsage distinguishes the purpose a BomHeader's structure serves.
type BomUsage int

const (
	BomUsageProduction BomUsage = iota
	BomUsageEngineering
	BomUsagePlanning
)

func (u BomUsage) String() string {
	switch u {
	case BomUsageProduction:
		return "production"
	case BomUsageEngineering:
		return "engineering"
	case BomUsagePlanning:
		return "planning"
	default:
		return "unknown"
	}
}

// BomStatus is the lifecycle state of a BomHeader.
type BomStatus int

const (
	BomStatusDraft BomStatus = iota
	BomStatusActive
	BomStatusObsolete
)

func (s BomStatus) String() string {
	switch s {
	case BomStatusDraft:
		return "draft"
	case BomStatusActive:
		return "active"
	case BomStatusObsolete:
		return "obsolete"
	default:
		return "unknown"
	}
}

// BomHeader identifies a specific named structure (production,
// engineering, or planning) for a component, under an optional
// alternative and effectivity window.
type BomHeader struct {
	ID             uuid.UUID
	ComponentID    ComponentId
	Usage          BomUsage
	Status         BomStatus
	BaseQuantity   decimal.Decimal
	Alternative    *string
	EffectiveFrom  *time.Time
	EffectiveTo    *time.Time
	Organization   string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BomItem is a parent -> child usage record: one edge of the BOM graph.
type BomItem struct {
	ID                   uuid.UUID
	ParentID             ComponentId
	ChildID              ComponentId
	Quantity             decimal.Decimal
	ScrapFactor          decimal.Decimal
	Sequence             int
	OperationSequence    *string
	IsPhantom            bool
	EffectiveFrom        *time.Time
	EffectiveTo          *time.Time
	AlternativeGroup     *string
	AlternativePriority  *int
	ReferenceDesignator  *string
	Position             *string
	Notes                *string
	Version              int
}

// EffectiveQuantity returns quantity scaled by (1 + scrap_factor),
// per I4.
func (b BomItem) EffectiveQuantity() decimal.Decimal {
	return b.Quantity.Mul(decimal.NewFromInt(1).Add(b.ScrapFactor))
}

// IsEffectiveAt reports whether this BomItem applies at the given
// instant. Open-ended bounds are permissive.
func (b BomItem) IsEffectiveAt(at time.Time) bool {
	if b.EffectiveFrom != nil && at.Before(*b.EffectiveFrom) {
		return false
	}
	if b.EffectiveTo != nil && at.After(*b.EffectiveTo) {
		return false
	}
	return true
}

// ExplosionItem is one descendant's total required quantity under a
// material explosion, together with its level and the set of paths
// from the root by which it is reached.
type ExplosionItem struct {
	ComponentID    ComponentId
	TotalQuantity  decimal.Decimal
	Level          int
	Paths          [][]ComponentId
	IsPhantom      bool
}

// ExplosionResult is the full output of a material explosion.
type ExplosionResult struct {
	RootComponent        ComponentId
	Items                []ExplosionItem
	UniqueComponentCount int
	MaxDepth             int
	CalculatedAt         time.Time
}

// CostBreakdown is the itemized cost of a single component, rolled up
// over its sub-DAG.
type CostBreakdown struct {
	ComponentID      ComponentId
	MaterialCost     decimal.Decimal
	LaborCost        decimal.Decimal
	OverheadCost     decimal.Decimal
	SubcontractCost  decimal.Decimal
	TotalCost        decimal.Decimal
	CalculatedAt     time.Time
}

// Sum recomputes TotalCost as the sum of the four cost components.
func (c CostBreakdown) Sum() decimal.Decimal {
	return c.MaterialCost.Add(c.LaborCost).Add(c.OverheadCost).Add(c.SubcontractCost)
}

// CostDriver is one component in a parent's subgraph: its own rolled-up
// unit cost, and that cost as a percentage of the parent's total cost.
// The cost is not scaled by the quantity in which the parent uses it.
type CostDriver struct {
	ComponentID  ComponentId
	Cost         decimal.Decimal
	Percentage   decimal.Decimal
}

// WhereUsedItem describes one direct parent of a queried component:
// the quantity per parent unit, the level at which it sits, and every
// route by which a root reaches that parent.
type WhereUsedItem struct {
	ParentID  ComponentId
	Quantity  decimal.Decimal
	Level     int
	Paths     [][]ComponentId
}

// WhereUsedResult is the full set of direct parents of a component.
type WhereUsedResult struct {
	Component  ComponentId
	UsedIn     []WhereUsedItem
	QueriedAt  time.Time
}

// ImpactAnalysis is the ancestor closure of a component, intersected
// with the graph's root assemblies.
type ImpactAnalysis struct {
	ChangedComponent          ComponentId
	AffectedComponents        []ComponentId
	AffectedRootAssemblies    []ComponentId
	AnalyzedAt                time.Time
}

// SharedComponent is a component that appears in the descendant set of
// two or more queried assemblies.
type SharedComponent struct {
	ComponentID        ComponentId
	UsedInCount         int
	UsedInAssemblies    []ComponentId
}

// GraphStats summarizes the shape of a built graph.
type GraphStats struct {
	NodeCount  int
	EdgeCount  int
	RootCount  int
	MaxDepth   int
}
