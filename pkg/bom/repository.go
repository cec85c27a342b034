package bom

import (
	"context"
	"time"
)

// Repository is the narrow capability set the engine needs from
// whatever stores components and BOM items. Implementations must be
// safe for concurrent reads; SQL, ERP-adapter, and in-memory
// implementations are all exchangeable behind this one interface.
type Repository interface {
	GetComponent(ctx context.Context, cid ComponentId) (Component, error)
	GetComponents(ctx context.Context, cids []ComponentId) ([]Component, error)
	GetBomHeader(ctx context.Context, cid ComponentId, alternative *string, effectiveDate *time.Time) (BomHeader, error)
	GetBomItems(ctx context.Context, cid ComponentId, effectiveDate *time.Time) ([]BomItem, error)
	GetAllBomItems(ctx context.Context) ([]BomItem, error)
	FindParents(ctx context.Context, cid ComponentId) ([]BomItem, error)
}
