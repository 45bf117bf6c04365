package lru

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairs drains the cache iterator into a slice for order assertions.
func pairs[K comparable, V any](c *Cache[K, V]) [][2]any {
	var out [][2]any
	for k, v := range c.All() {
		out = append(out, [2]any{k, v})
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("valid capacity", func(t *testing.T) {
		c, err := New[string, int](100)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, 100, c.Cap())
		assert.Equal(t, 0, c.Len())
	})

	t.Run("zero capacity", func(t *testing.T) {
		_, err := New[string, int](0)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := New[string, int](-1)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("unbounded", func(t *testing.T) {
		c := NewUnbounded[string, int]()
		assert.Equal(t, Unbounded, c.Cap())
		assert.Equal(t, 0, c.Len())
	})
}

func TestCache_SetAndGet(t *testing.T) {
	c, err := New[string, int](3)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len(), "a miss must not change size")
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	// The capacity-2 scenario: set x, y, z evicts exactly x.
	c, err := New[string, int](2)
	require.NoError(t, err)

	c.Set("x", 1)
	c.Set("y", 2)
	c.Set("z", 3)

	assert.False(t, c.Contains("x"), "x was least recently used")
	assert.True(t, c.Contains("y"))
	assert.True(t, c.Contains("z"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, [][2]any{{"y", 2}, {"z", 3}}, pairs(c))
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	// Fill to capacity, read the oldest key, then insert: the read key
	// survives and the next-oldest is evicted instead.
	const n = 4
	c, err := New[string, int](n)
	require.NoError(t, err)

	for i, k := range []string{"a", "b", "c", "d"} {
		c.Set(k, i+1)
	}

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("new", 99)

	assert.True(t, c.Contains("a"), "a was touched by Get and must survive")
	assert.False(t, c.Contains("b"), "b became least recently used")
	assert.Equal(t, n, c.Len())
}

func TestCache_UpdateRefreshesRecency(t *testing.T) {
	c, err := New[string, int](3)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("a", 10) // update, not insert

	assert.Equal(t, 3, c.Len(), "update must not change size")

	c.Set("d", 4)

	assert.False(t, c.Contains("b"), "b was least recently used after a's update")
	assert.True(t, c.Contains("a"))

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v, "update must fully replace the previous value")
}

func TestCache_UpdateAtCapacityNeverEvicts(t *testing.T) {
	c, err := New[string, int](2)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)

	// Updates and reads can keep a full cache at capacity indefinitely.
	for i := 0; i < 10; i++ {
		c.Set("a", i)
		c.Set("b", i)
		c.Get("a")
	}

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))
}

func TestCache_ContainsIsSideEffectFree(t *testing.T) {
	c, err := New[string, int](2)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)

	// Hammering Contains on the oldest key must not rescue it.
	for i := 0; i < 100; i++ {
		assert.True(t, c.Contains("a"))
	}

	c.Set("c", 3)

	assert.False(t, c.Contains("a"), "Contains must not count as a touch")
	assert.True(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
}

func TestCache_PeekIsSideEffectFree(t *testing.T) {
	c, err := New[string, int](2)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("c", 3)
	assert.False(t, c.Contains("a"), "Peek must not count as a touch")
}

func TestCache_GetOrDefault(t *testing.T) {
	c, err := New[string, int](3)
	require.NoError(t, err)

	assert.Equal(t, 42, c.GetOrDefault("missing", 42))
	assert.Equal(t, 0, c.Len(), "the fallback must not be inserted")

	// A stored zero value is present, so the fallback does not apply.
	c.Set("zero", 0)
	assert.Equal(t, 0, c.GetOrDefault("zero", 42))
	assert.True(t, c.Contains("zero"))

	c.Set("a", 1)
	assert.Equal(t, 1, c.GetOrDefault("a", 42))
}

func TestCache_Delete(t *testing.T) {
	c, err := New[string, int](3)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Contains("a"))
	assert.Equal(t, 1, c.Len())

	assert.False(t, c.Delete("a"), "deleting an absent key is a no-op")
	assert.Equal(t, 1, c.Len())

	// The freed slot is usable again without evicting b.
	c.Set("c", 3)
	c.Set("d", 4)
	assert.True(t, c.Contains("b"))
	assert.Equal(t, 3, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c, err := New[string, int](3)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 3, c.Cap(), "capacity survives Clear")
	assert.Empty(t, pairs(c))

	// The cache is fully usable after Clear.
	c.Set("c", 3)
	assert.Equal(t, [][2]any{{"c", 3}}, pairs(c))
}

func TestCache_Resize(t *testing.T) {
	t.Run("shrink evicts oldest first", func(t *testing.T) {
		c, err := New[string, int](5)
		require.NoError(t, err)

		var evicted []string
		c.onEvict = func(k string, _ int) { evicted = append(evicted, k) }

		for i, k := range []string{"a", "b", "c", "d", "e"} {
			c.Set(k, i+1)
		}

		require.NoError(t, c.Resize(2))

		assert.Equal(t, 2, c.Len())
		assert.Equal(t, 2, c.Cap())
		assert.Equal(t, []string{"a", "b", "c"}, evicted,
			"the three least-recently-used entries go, in increasing recency order")
		assert.Equal(t, [][2]any{{"d", 4}, {"e", 5}}, pairs(c))
	})

	t.Run("grow keeps entries", func(t *testing.T) {
		c, err := New[string, int](2)
		require.NoError(t, err)
		c.Set("a", 1)
		c.Set("b", 2)

		require.NoError(t, c.Resize(10))
		assert.Equal(t, 2, c.Len())

		c.Set("c", 3)
		assert.Equal(t, 3, c.Len(), "no eviction below the new bound")
	})

	t.Run("invalid bound", func(t *testing.T) {
		c, err := New[string, int](2)
		require.NoError(t, err)
		c.Set("a", 1)

		assert.ErrorIs(t, c.Resize(0), ErrInvalidCapacity)
		assert.ErrorIs(t, c.Resize(-5), ErrInvalidCapacity)
		assert.Equal(t, 1, c.Len(), "a rejected resize must not mutate")
		assert.Equal(t, 2, c.Cap())
	})

	t.Run("bounds an unbounded cache", func(t *testing.T) {
		c := NewUnbounded[int, int]()
		for i := 0; i < 10; i++ {
			c.Set(i, i)
		}

		require.NoError(t, c.Resize(3))
		assert.Equal(t, 3, c.Len())
		assert.True(t, c.Contains(9))
		assert.False(t, c.Contains(0))
	})
}

func TestCache_Unbounded(t *testing.T) {
	c := NewUnbounded[int, int]()
	for i := 0; i < 1000; i++ {
		c.Set(i, i)
	}

	assert.Equal(t, 1000, c.Len())
	assert.True(t, c.Contains(0), "unbounded caches never evict")
	assert.Equal(t, Unbounded, c.Cap())
}

func TestCache_CapacityInvariant(t *testing.T) {
	// After every operation of a mixed sequence, size stays within bound.
	c, err := New[int, int](7)
	require.NoError(t, err)

	check := func() {
		if c.Len() > c.Cap() {
			t.Fatalf("size %d exceeds capacity %d", c.Len(), c.Cap())
		}
	}

	for i := 0; i < 500; i++ {
		c.Set(i%50, i)
		check()
		c.Get(i % 13)
		check()
		c.Contains(i % 7)
		check()
		if i%11 == 0 {
			c.Delete(i % 50)
			check()
		}
	}
}

func TestCache_IterationOrder(t *testing.T) {
	c, err := New[string, int](5)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a") // a becomes most recent

	assert.Equal(t, [][2]any{{"b", 2}, {"c", 3}, {"a", 1}}, pairs(c),
		"iteration runs least to most recently used")

	var keys []string
	for k := range c.Keys() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"b", "c", "a"}, keys)
}

func TestCache_IterationEarlyStop(t *testing.T) {
	c, err := New[int, int](5)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		c.Set(i, i)
	}

	var seen int
	for range c.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)

	// A new range statement restarts from the least recently used key.
	var first int
	for k := range c.Keys() {
		first = k
		break
	}
	assert.Equal(t, 0, first)
}

func TestCache_OnEvict(t *testing.T) {
	type evicted struct {
		key   string
		value int
	}
	var got []evicted

	c, err := New(2, WithOnEvict(func(k string, v int) {
		got = append(got, evicted{k, v})
	}))
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Empty(t, got, "no eviction while under capacity")

	c.Set("a", 10)
	assert.Empty(t, got, "updates never evict")

	c.Set("c", 3)
	assert.Equal(t, []evicted{{"b", 2}}, got, "exactly one eviction per overflowing insert")

	c.Delete("c")
	c.Clear()
	assert.Len(t, got, 1, "Delete and Clear are not evictions")
}

func TestCache_StructKeysAndValues(t *testing.T) {
	type point struct{ x, y int }

	c, err := New[point, []string](2)
	require.NoError(t, err)

	c.Set(point{1, 2}, []string{"north"})
	c.Set(point{3, 4}, []string{"south"})

	v, ok := c.Get(point{1, 2})
	require.True(t, ok)
	assert.Equal(t, []string{"north"}, v)

	c.Set(point{5, 6}, []string{"east"})
	assert.False(t, c.Contains(point{3, 4}))
}

func BenchmarkCache_Set(b *testing.B) {
	c, _ := New[string, int](10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
}

func BenchmarkCache_SetWithEviction(b *testing.B) {
	c, _ := New[string, int](1000) // Smaller cache to force evictions
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
}

func BenchmarkCache_Get(b *testing.B) {
	c, _ := New[string, int](10000)
	for i := 0; i < 10000; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("key%d", i%10000))
	}
}

func BenchmarkCache_Contains(b *testing.B) {
	c, _ := New[string, int](10000)
	for i := 0; i < 10000; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Contains(fmt.Sprintf("key%d", i%10000))
	}
}
