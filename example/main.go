package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricemug/nexusbom/pkg/bom"
)

func main() {
	ctx := context.Background()

	repo := bom.NewMemoryRepository()
	setupRocketEngineBOM(repo)

	engine, err := bom.NewEngine(ctx, repo)
	if err != nil {
		fmt.Printf("engine build failed: %v\n", err)
		return
	}

	fmt.Println("Running BOM analysis for ROCKET_ENGINE...")
	fmt.Println()

	explosion, err := engine.Explode("ROCKET_ENGINE", decimal.NewFromInt(9))
	if err != nil {
		fmt.Printf("explosion failed: %v\n", err)
		return
	}

	fmt.Println("Material explosion (qty 9):")
	for _, item := range explosion.Items {
		fmt.Printf("  %-20s qty=%-10s level=%d\n", item.ComponentID, item.TotalQuantity.String(), item.Level)
	}
	fmt.Println()

	cost, err := engine.CalculateCost(ctx, "ROCKET_ENGINE")
	if err != nil {
		fmt.Printf("cost calculation failed: %v\n", err)
		return
	}
	fmt.Printf("Total material cost per engine: %s\n", cost.TotalCost.String())

	drivers, err := engine.AnalyzeCostDrivers(ctx, "ROCKET_ENGINE")
	if err != nil {
		fmt.Printf("cost driver analysis failed: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Println("Top cost drivers:")
	for _, d := range drivers {
		fmt.Printf("  %-20s cost=%-10s (%s%%)\n", d.ComponentID, d.Cost.String(), d.Percentage.StringFixed(1))
	}

	whereUsed, err := engine.WhereUsed("VALVE_ASSEMBLY")
	if err != nil {
		fmt.Printf("where-used failed: %v\n", err)
		return
	}
	fmt.Println()
	fmt.Println("VALVE_ASSEMBLY is used in:")
	for _, item := range whereUsed.UsedIn {
		fmt.Printf("  %s (qty per parent: %s)\n", item.ParentID, item.Quantity.String())
	}
}

func setupRocketEngineBOM(repo *bom.MemoryRepository) {
	zero, turbopump, chamber, valve := decimal.Zero, decimal.NewFromInt(4500), decimal.NewFromInt(12000), decimal.NewFromInt(300)

	components := []bom.Component{
		{ID: "ROCKET_ENGINE", Description: "Main Rocket Engine Assembly", Type: bom.ComponentFinished, UOM: "EA", StandardCost: &zero},
		{ID: "TURBOPUMP_V3", Description: "Turbopump Assembly V3", Type: bom.ComponentSemiFinished, UOM: "EA", StandardCost: &turbopump},
		{ID: "COMBUSTION_CHAMBER", Description: "Main Combustion Chamber", Type: bom.ComponentSemiFinished, UOM: "EA", StandardCost: &chamber},
		{ID: "VALVE_ASSEMBLY", Description: "Main Valve Assembly", Type: bom.ComponentRaw, UOM: "EA", StandardCost: &valve},
	}
	for _, c := range components {
		repo.AddComponent(c)
	}

	header := bom.BomHeader{
		ID:          uuid.New(),
		ComponentID: "ROCKET_ENGINE",
		Usage:       bom.BomUsageProduction,
		Status:      bom.BomStatusActive,
	}
	repo.AddBomHeader(header)

	items := []bom.BomItem{
		{ID: uuid.New(), ParentID: "ROCKET_ENGINE", ChildID: "TURBOPUMP_V3", Quantity: decimal.NewFromInt(2)},
		{ID: uuid.New(), ParentID: "ROCKET_ENGINE", ChildID: "COMBUSTION_CHAMBER", Quantity: decimal.NewFromInt(1)},
		{ID: uuid.New(), ParentID: "ROCKET_ENGINE", ChildID: "VALVE_ASSEMBLY", Quantity: decimal.NewFromInt(4)},
	}
	for _, item := range items {
		repo.AddBomItem(item)
	}
}
