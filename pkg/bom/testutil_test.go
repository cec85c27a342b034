package bom

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testComponent(id string, cost int64) Component {
	c := decimal.NewFromInt(cost)
	return Component{
		ID:           ComponentId(id),
		Description:  "component " + id,
		Type:         ComponentFinished,
		UOM:          "EA",
		StandardCost: &c,
		Organization: "ORG01",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func testBomItem(parent, child string, qty int64) BomItem {
	return BomItem{
		ID:          uuid.New(),
		ParentID:    ComponentId(parent),
		ChildID:     ComponentId(child),
		Quantity:    decimal.NewFromInt(qty),
		ScrapFactor: decimal.Zero,
		Sequence:    10,
	}
}

func testBomItemWithScrap(parent, child string, qty int64, scrap string) BomItem {
	item := testBomItem(parent, child, qty)
	item.ScrapFactor, _ = decimal.NewFromString(scrap)
	return item
}

func buildRepo(components []Component, items []BomItem) *MemoryRepository {
	repo := NewMemoryRepository()
	for _, c := range components {
		repo.AddComponent(c)
	}
	for _, item := range items {
		repo.AddBomItem(item)
	}
	return repo
}

var testCtx = context.Background()
