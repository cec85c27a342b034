package bom

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository implementation backed
// by contiguous slices with index maps for lookup, following the
// teacher's CompactBOMRepository layout (append-only slice + a
// map[key][]int of owning indices), guarded by a single RWMutex so
// concurrent readers never block each other.
type MemoryRepository struct {
	mu sync.RWMutex

	components    []Component
	componentIdx  map[ComponentId]int

	bomHeaders    []BomHeader
	headerIdx     map[ComponentId][]int

	bomItems      []BomItem
	itemsByParent map[ComponentId][]int
	itemsByChild  map[ComponentId][]int
}

// NewMemoryRepository returns an empty in-memory repository. Its
// slices and index maps start empty, with no capacity hints.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		componentIdx:  make(map[ComponentId]int),
		headerIdx:     make(map[ComponentId][]int),
		itemsByParent: make(map[ComponentId][]int),
		itemsByChild:  make(map[ComponentId][]int),
	}
}

var _ Repository = (*MemoryRepository)(nil)

// AddComponent inserts or overwrites a Component by ID.
func (r *MemoryRepository) AddComponent(c Component) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.componentIdx[c.ID]; ok {
		r.components[idx] = c
		return
	}
	idx := len(r.components)
	r.components = append(r.components, c)
	r.componentIdx[c.ID] = idx
}

// AddBomHeader appends a BomHeader, indexed by its component.
func (r *MemoryRepository) AddBomHeader(h BomHeader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.bomHeaders)
	r.bomHeaders = append(r.bomHeaders, h)
	r.headerIdx[h.ComponentID] = append(r.headerIdx[h.ComponentID], idx)
}

// AddBomItem appends a BomItem, indexed by both parent and child.
func (r *MemoryRepository) AddBomItem(item BomItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.bomItems)
	r.bomItems = append(r.bomItems, item)
	r.itemsByParent[item.ParentID] = append(r.itemsByParent[item.ParentID], idx)
	r.itemsByChild[item.ChildID] = append(r.itemsByChild[item.ChildID], idx)
}

func (r *MemoryRepository) GetComponent(_ context.Context, cid ComponentId) (Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.componentIdx[cid]
	if !ok {
		return Component{}, ErrComponentNotFound(cid)
	}
	return r.components[idx], nil
}

func (r *MemoryRepository) GetComponents(_ context.Context, cids []ComponentId) ([]Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Component, 0, len(cids))
	for _, cid := range cids {
		idx, ok := r.componentIdx[cid]
		if !ok {
			return nil, ErrComponentNotFound(cid)
		}
		out = append(out, r.components[idx])
	}
	return out, nil
}

func (r *MemoryRepository) GetBomHeader(_ context.Context, cid ComponentId, alternative *string, effectiveDate *time.Time) (BomHeader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at := time.Now().UTC()
	if effectiveDate != nil {
		at = *effectiveDate
	}

	for _, idx := range r.headerIdx[cid] {
		h := r.bomHeaders[idx]
		if !sameAlternative(h.Alternative, alternative) {
			continue
		}
		if h.EffectiveFrom != nil && at.Before(*h.EffectiveFrom) {
			continue
		}
		if h.EffectiveTo != nil && at.After(*h.EffectiveTo) {
			continue
		}
		return h, nil
	}

	return BomHeader{}, ErrBomNotFound(cid)
}

func sameAlternative(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func (r *MemoryRepository) GetBomItems(_ context.Context, cid ComponentId, effectiveDate *time.Time) ([]BomItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at := time.Now().UTC()
	if effectiveDate != nil {
		at = *effectiveDate
	}

	var out []BomItem
	for _, idx := range r.itemsByParent[cid] {
		item := r.bomItems[idx]
		if item.IsEffectiveAt(at) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MemoryRepository) GetAllBomItems(_ context.Context) ([]BomItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]BomItem, len(r.bomItems))
	copy(out, r.bomItems)
	return out, nil
}

func (r *MemoryRepository) FindParents(_ context.Context, cid ComponentId) ([]BomItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []BomItem
	for _, idx := range r.itemsByChild[cid] {
		out = append(out, r.bomItems[idx])
	}
	return out, nil
}
