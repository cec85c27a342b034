package bomcache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ricemug/nexusbom/pkg/bom"
)

func testBreakdown() bom.CostBreakdown {
	return bom.CostBreakdown{
		MaterialCost: decimal.NewFromInt(100),
		LaborCost:    decimal.Zero,
		OverheadCost: decimal.Zero,
		TotalCost:    decimal.NewFromInt(100),
	}
}

func testExplosionResult() bom.ExplosionResult {
	return bom.ExplosionResult{
		RootComponent: "A",
		Items: []bom.ExplosionItem{
			{ComponentID: "B", TotalQuantity: decimal.NewFromInt(2), Level: 1},
		},
	}
}

// decode(encode(x)) == x through the tiered cache's own msgpack
// encoding, for a cost breakdown value.
func TestCostCacheRoundTrip(t *testing.T) {
	cache, err := NewTieredCache(DefaultConfig())
	require.NoError(t, err)
	defer cache.Close()

	want := testBreakdown()
	require.NoError(t, cache.PutCost("A", want))

	got, ok := cache.GetCost("A")
	require.True(t, ok)
	assert.True(t, want.TotalCost.Equal(got.TotalCost))
	assert.True(t, want.MaterialCost.Equal(got.MaterialCost))
}

// decode(encode(x)) == x for an explosion result value.
func TestExplosionCacheRoundTrip(t *testing.T) {
	cache, err := NewTieredCache(DefaultConfig())
	require.NoError(t, err)
	defer cache.Close()

	want := testExplosionResult()
	key := ExplosionFingerprint("A", decimal.NewFromInt(1))
	require.NoError(t, cache.PutExplosion(key, want))

	got, ok := cache.GetExplosion(key)
	require.True(t, ok)
	assert.Equal(t, want.RootComponent, got.RootComponent)
	require.Len(t, got.Items, 1)
	assert.True(t, want.Items[0].TotalQuantity.Equal(got.Items[0].TotalQuantity))
}

func TestCostCacheMiss(t *testing.T) {
	cache, err := NewTieredCache(DefaultConfig())
	require.NoError(t, err)
	defer cache.Close()

	_, ok := cache.GetCost("missing")
	assert.False(t, ok)
}

func TestInvalidateCostRemovesEntry(t *testing.T) {
	cache, err := NewTieredCache(DefaultConfig())
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.PutCost("A", testBreakdown()))
	cache.RunMaintenance()

	require.NoError(t, cache.InvalidateCost("A"))
	_, ok := cache.GetCost("A")
	assert.False(t, ok)
}

func TestInvalidateExplosionsClearsWholeFamily(t *testing.T) {
	cache, err := NewTieredCache(DefaultConfig())
	require.NoError(t, err)
	defer cache.Close()

	keyA := ExplosionFingerprint("A", decimal.NewFromInt(1))
	keyB := ExplosionFingerprint("B", decimal.NewFromInt(2))
	require.NoError(t, cache.PutExplosion(keyA, testExplosionResult()))
	require.NoError(t, cache.PutExplosion(keyB, testExplosionResult()))
	cache.RunMaintenance()

	require.NoError(t, cache.InvalidateExplosions())

	_, okA := cache.GetExplosion(keyA)
	_, okB := cache.GetExplosion(keyB)
	assert.False(t, okA)
	assert.False(t, okB)
}

// A value written only to L2 is promoted into L1 on first read;
// subsequent reads succeed purely from L1, even after L2 is closed.
func TestTieredPromotionFromL2(t *testing.T) {
	persistent, err := OpenPersistentCache(t.TempDir())
	require.NoError(t, err)

	want := testBreakdown()
	raw, err := msgpack.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, persistent.PutCost("A", raw))

	cache, err := NewTieredCache(DefaultConfig())
	require.NoError(t, err)
	cache.WithPersistent(persistent)
	defer cache.Close()

	got, ok := cache.GetCost("A")
	require.True(t, ok, "expected promotion from L2 on first read")
	assert.True(t, want.TotalCost.Equal(got.TotalCost))

	require.NoError(t, persistent.Close())

	got2, ok2 := cache.GetCost("A")
	require.True(t, ok2, "expected L1 to serve the promoted value after L2 is closed")
	assert.True(t, want.TotalCost.Equal(got2.TotalCost))
}

func TestCostFingerprintAndExplosionFingerprint(t *testing.T) {
	assert.Equal(t, "WIDGET-1", CostFingerprint("WIDGET-1"))
	assert.Equal(t, "WIDGET-1:3", ExplosionFingerprint("WIDGET-1", decimal.NewFromInt(3)))
}

func TestPersistentCacheCompact(t *testing.T) {
	persistent, err := OpenPersistentCache(t.TempDir())
	require.NoError(t, err)
	defer persistent.Close()

	require.NoError(t, persistent.Compact())
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = time.Millisecond
	mem, err := NewMemoryCache(cfg)
	require.NoError(t, err)
	defer mem.Close()

	mem.PutCost("A", []byte("x"))
	time.Sleep(20 * time.Millisecond)
	mem.RunMaintenance()

	_, ok := mem.GetCost("A")
	assert.False(t, ok)
}
