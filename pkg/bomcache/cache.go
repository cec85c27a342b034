// Package bomcache implements the two-tier result cache for the BOM
// engine: a bounded, TTL-expiring in-memory L1 and an optional durable,
// transactional L2, with read-through/write-through/invalidate
// semantics shared across both tiers.
package bomcache

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ricemug/nexusbom/pkg/bom"
)

// Config tunes the independent cost/explosion cache families.
type Config struct {
	MaxCostEntries       int64
	MaxExplosionEntries  int64
	TTL                  time.Duration
	TTI                  time.Duration
}

// DefaultConfig returns the package's default sizes and expirations.
func DefaultConfig() Config {
	return Config{
		MaxCostEntries:      10000,
		MaxExplosionEntries: 5000,
		TTL:                 time.Hour,
		TTI:                 30 * time.Minute,
	}
}

// CostFingerprint is the L1/L2 key for a cost lookup: just the
// component id.
func CostFingerprint(cid bom.ComponentId) string {
	return string(cid)
}

// ExplosionFingerprint is the L1/L2 key for an explosion lookup:
// component id and canonical decimal quantity.
func ExplosionFingerprint(cid bom.ComponentId, quantity decimal.Decimal) string {
	return string(cid) + ":" + quantity.String()
}

// MemoryCache is the L1 tier: a bounded, cost-weighted, TTL-expiring
// cache built on ristretto, the Go-ecosystem analogue of moka. Two
// independent ristretto instances back the cost and explosion
// families so each can be sized on its own; both expire entries after
// the same cfg.TTL.
//
// ristretto has no native idle-expiry (TTI); it is approximated here
// by re-writing the TTL on every cache hit, so an entry expires cfg.TTL
// after its last write or hit. Config.TTI is not read: there is no
// separate idle window and no absolute lifetime bound for entries that
// keep being hit.
type MemoryCache struct {
	cost       *ristretto.Cache[string, []byte]
	explosion  *ristretto.Cache[string, []byte]
	ttl        time.Duration
}

// NewMemoryCache builds the L1 tier from cfg.
func NewMemoryCache(cfg Config) (*MemoryCache, error) {
	cost, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cfg.MaxCostEntries * 10,
		MaxCost:     cfg.MaxCostEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, bom.ErrCache("failed to build L1 cost cache", err)
	}

	explosion, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cfg.MaxExplosionEntries * 10,
		MaxCost:     cfg.MaxExplosionEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, bom.ErrCache("failed to build L1 explosion cache", err)
	}

	return &MemoryCache{cost: cost, explosion: explosion, ttl: cfg.TTL}, nil
}

func (m *MemoryCache) GetCost(key string) ([]byte, bool) {
	v, ok := m.cost.Get(key)
	if ok {
		m.cost.SetWithTTL(key, v, 1, m.ttl)
	}
	return v, ok
}

func (m *MemoryCache) PutCost(key string, value []byte) {
	m.cost.SetWithTTL(key, value, 1, m.ttl)
	m.cost.Wait()
}

func (m *MemoryCache) InvalidateCost(key string) {
	m.cost.Del(key)
}

func (m *MemoryCache) GetExplosion(key string) ([]byte, bool) {
	v, ok := m.explosion.Get(key)
	if ok {
		m.explosion.SetWithTTL(key, v, 1, m.ttl)
	}
	return v, ok
}

func (m *MemoryCache) PutExplosion(key string, value []byte) {
	m.explosion.SetWithTTL(key, value, 1, m.ttl)
	m.explosion.Wait()
}

// InvalidateAllExplosions clears the whole explosion tier. ristretto,
// like moka, offers no prefix-scoped invalidation, so a single
// component mutation must clear the entire family rather than just
// the entries that mention it.
func (m *MemoryCache) InvalidateAllExplosions() {
	m.explosion.Clear()
}

// RunMaintenance forces ristretto's internal buffers to drain,
// exposing otherwise-async admission/eviction effects to tests.
func (m *MemoryCache) RunMaintenance() {
	m.cost.Wait()
	m.explosion.Wait()
}

func (m *MemoryCache) Close() {
	m.cost.Close()
	m.explosion.Close()
}

const (
	costPrefix      = "cost:"
	explosionPrefix = "expl:"
)

// PersistentCache is the L2 tier: a durable, transactional, ordered
// KV store built on badger, the Go-ecosystem analogue of redb. The
// two logical tables the spec calls for (cost_cache, explosion_cache)
// are realized as key prefixes, since badger has one flat keyspace
// rather than redb's named tables; every mutation still opens an
// explicit transaction and commits atomically.
type PersistentCache struct {
	db *badger.DB
}

// OpenPersistentCache opens (creating if absent) a badger database at
// dir.
func OpenPersistentCache(dir string) (*PersistentCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, bom.ErrCache("failed to open L2 store", err)
	}
	return &PersistentCache{db: db}, nil
}

func (p *PersistentCache) Close() error {
	return p.db.Close()
}

func (p *PersistentCache) getPrefixed(prefix, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefix + key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			value = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, false, bom.ErrCache("L2 read failed", err)
	}
	return value, value != nil, nil
}

func (p *PersistentCache) putPrefixed(prefix, key string, value []byte) error {
	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefix+key), value)
	})
	if err != nil {
		return bom.ErrCache("L2 write failed", err)
	}
	return nil
}

func (p *PersistentCache) deletePrefixed(prefix, key string) error {
	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefix + key))
	})
	if err != nil {
		return bom.ErrCache("L2 delete failed", err)
	}
	return nil
}

func (p *PersistentCache) clearPrefix(prefix string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		var keys [][]byte
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			keys = append(keys, append([]byte(nil), it.Item().Key()...))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PersistentCache) GetCost(key string) ([]byte, bool, error) {
	return p.getPrefixed(costPrefix, key)
}

func (p *PersistentCache) PutCost(key string, value []byte) error {
	return p.putPrefixed(costPrefix, key, value)
}

func (p *PersistentCache) InvalidateCost(key string) error {
	return p.deletePrefixed(costPrefix, key)
}

func (p *PersistentCache) GetExplosion(key string) ([]byte, bool, error) {
	return p.getPrefixed(explosionPrefix, key)
}

func (p *PersistentCache) PutExplosion(key string, value []byte) error {
	return p.putPrefixed(explosionPrefix, key, value)
}

func (p *PersistentCache) InvalidateAllExplosions() error {
	return p.clearPrefix(explosionPrefix)
}

// Compact runs badger's value-log garbage collection once.
func (p *PersistentCache) Compact() error {
	err := p.db.RunValueLogGC(0.5)
	if err != nil && err != badger.ErrNoRewrite {
		return bom.ErrCache("L2 compaction failed", err)
	}
	return nil
}

// TieredCache wires a MemoryCache (L1, always present) and an
// optional PersistentCache (L2) together behind read-through /
// write-through / invalidate semantics.
type TieredCache struct {
	memory     *MemoryCache
	persistent *PersistentCache
}

// NewTieredCache builds an L1-only cache.
func NewTieredCache(cfg Config) (*TieredCache, error) {
	mem, err := NewMemoryCache(cfg)
	if err != nil {
		return nil, err
	}
	return &TieredCache{memory: mem}, nil
}

// WithPersistent attaches an L2 tier.
func (t *TieredCache) WithPersistent(p *PersistentCache) *TieredCache {
	t.persistent = p
	return t
}

// GetCost reads the cost cache: L1 hit returns directly; L1 miss +
// L2 hit promotes the value into L1 before returning it; a
// deserialization failure is treated as a miss, not an error.
func (t *TieredCache) GetCost(key string) (bom.CostBreakdown, bool) {
	if raw, ok := t.memory.GetCost(key); ok {
		var breakdown bom.CostBreakdown
		if err := msgpack.Unmarshal(raw, &breakdown); err == nil {
			return breakdown, true
		}
		return bom.CostBreakdown{}, false
	}

	if t.persistent == nil {
		return bom.CostBreakdown{}, false
	}

	raw, ok, err := t.persistent.GetCost(key)
	if err != nil || !ok {
		return bom.CostBreakdown{}, false
	}

	var breakdown bom.CostBreakdown
	if err := msgpack.Unmarshal(raw, &breakdown); err != nil {
		return bom.CostBreakdown{}, false
	}

	t.memory.PutCost(key, raw)
	return breakdown, true
}

// PutCost writes through to both tiers. L2 failures are swallowed
// (best-effort caching); L1 failures cannot occur here since
// ristretto's Set never returns an error.
func (t *TieredCache) PutCost(key string, breakdown bom.CostBreakdown) error {
	raw, err := msgpack.Marshal(breakdown)
	if err != nil {
		return bom.ErrSerialization(err)
	}

	t.memory.PutCost(key, raw)

	if t.persistent != nil {
		_ = t.persistent.PutCost(key, raw)
	}
	return nil
}

// InvalidateCost removes key from both tiers. This is exact: cost
// fingerprints are keyed only by component id.
func (t *TieredCache) InvalidateCost(key string) error {
	t.memory.InvalidateCost(key)
	if t.persistent != nil {
		return t.persistent.InvalidateCost(key)
	}
	return nil
}

// GetExplosion mirrors GetCost for the explosion family.
func (t *TieredCache) GetExplosion(key string) (bom.ExplosionResult, bool) {
	if raw, ok := t.memory.GetExplosion(key); ok {
		var result bom.ExplosionResult
		if err := msgpack.Unmarshal(raw, &result); err == nil {
			return result, true
		}
		return bom.ExplosionResult{}, false
	}

	if t.persistent == nil {
		return bom.ExplosionResult{}, false
	}

	raw, ok, err := t.persistent.GetExplosion(key)
	if err != nil || !ok {
		return bom.ExplosionResult{}, false
	}

	var result bom.ExplosionResult
	if err := msgpack.Unmarshal(raw, &result); err != nil {
		return bom.ExplosionResult{}, false
	}

	t.memory.PutExplosion(key, raw)
	return result, true
}

// PutExplosion mirrors PutCost for the explosion family.
func (t *TieredCache) PutExplosion(key string, result bom.ExplosionResult) error {
	raw, err := msgpack.Marshal(result)
	if err != nil {
		return bom.ErrSerialization(err)
	}

	t.memory.PutExplosion(key, raw)

	if t.persistent != nil {
		_ = t.persistent.PutExplosion(key, raw)
	}
	return nil
}

// InvalidateExplosions clears the whole explosion tier in both L1 and
// L2. This is the coarse invalidation the spec calls for: the L1
// keyspace is not prefix-indexable by participating component, so any
// component mutation must drop every cached explosion rather than
// just the ones that mention it.
func (t *TieredCache) InvalidateExplosions() error {
	t.memory.InvalidateAllExplosions()
	if t.persistent != nil {
		return t.persistent.InvalidateAllExplosions()
	}
	return nil
}

// RunMaintenance drains L1's pending write buffers so admissions and
// evictions are visible to the next read (used by tests). It does not
// advance or force expiry.
func (t *TieredCache) RunMaintenance() {
	t.memory.RunMaintenance()
}

// Compact runs L2 compaction, if an L2 is attached.
func (t *TieredCache) Compact() error {
	if t.persistent == nil {
		return nil
	}
	return t.persistent.Compact()
}

// Close releases both tiers' resources.
func (t *TieredCache) Close() error {
	t.memory.Close()
	if t.persistent != nil {
		return t.persistent.Close()
	}
	return nil
}
