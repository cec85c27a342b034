package bom

import (
	"testing"

	"github.com/shopspring/decimal"
)

// Own costs A=100 B=50 C=10 with A->B*2, B->C*3: total rolls up to
// 100 + (50 + 10*3)*2 == 260.
func TestLinearChainCost(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50), testComponent("C", 10)},
		[]BomItem{testBomItem("A", "B", 2), testBomItem("B", "C", 3)},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calc := NewCostCalculator(g, repo)
	cost, err := calc.CalculateCost(testCtx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cost.TotalCost.Equal(decimal.NewFromInt(260)) {
		t.Fatalf("expected total cost 260, got %s", cost.TotalCost)
	}
}

func TestSimpleAndMultilevelCost(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50), testComponent("C", 30)},
		[]BomItem{testBomItem("A", "B", 2), testBomItem("A", "C", 1)},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calc := NewCostCalculator(g, repo)
	cost, err := calc.CalculateCost(testCtx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cost.TotalCost.Equal(decimal.NewFromInt(230)) {
		t.Fatalf("expected total cost 230, got %s", cost.TotalCost)
	}
}

// A component's material cost equals its own cost plus the sum of
// each child's material cost times the effective quantity used.
func TestCostRollupIdentity(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50), testComponent("C", 30), testComponent("D", 10)},
		[]BomItem{testBomItem("A", "B", 2), testBomItem("A", "C", 1), testBomItem("B", "D", 3)},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calc := NewCostCalculator(g, repo)
	costB, err := calc.CalculateCost(testCtx, "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !costB.TotalCost.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected B total cost 80, got %s", costB.TotalCost)
	}

	costA, err := calc.CalculateCost(testCtx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !costA.TotalCost.Equal(decimal.NewFromInt(290)) {
		t.Fatalf("expected A total cost 290, got %s", costA.TotalCost)
	}
}

// CalculateRollup(cid, Q) scales linearly: it equals material(cid) * Q.
func TestRollupScalesWithQuantity(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50)},
		[]BomItem{testBomItem("A", "B", 2)},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calc := NewCostCalculator(g, repo)
	rollup, err := calc.CalculateRollup(testCtx, "A", decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rollup.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected rollup 2000, got %s", rollup)
	}
}

func TestCostUsesMemoizedCacheWhenNotDirty(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50)},
		[]BomItem{testBomItem("A", "B", 2)},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calc := NewCostCalculator(g, repo)
	if _, err := calc.CalculateCost(testCtx, "A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aIdx, _ := g.FindNode("A")
	if g.Arena().Node(aIdx).Dirty() {
		t.Fatalf("expected A to be clean after calculation")
	}

	cached, err := calc.CalculateCost(testCtx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached.TotalCost.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected cached total cost 200, got %s", cached.TotalCost)
	}
}

func TestAnalyzeCostDrivers(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50), testComponent("C", 30)},
		[]BomItem{testBomItem("A", "B", 2), testBomItem("A", "C", 1)},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	drivers, err := NewCostCalculator(g, repo).AnalyzeCostDrivers(testCtx, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(drivers) != 2 {
		t.Fatalf("expected 2 drivers (B, C), got %d", len(drivers))
	}
	if drivers[0].ComponentID != "B" {
		t.Fatalf("expected B to be the top cost driver, got %s", drivers[0].ComponentID)
	}
}
