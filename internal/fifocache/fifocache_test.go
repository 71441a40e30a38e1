package fifocache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAndGet(t *testing.T) {
	cache := New[string, int](10)

	cache.Add("a", 1)

	v, ok := cache.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = cache.Get("b")
	require.False(t, ok)
}

func TestAddDoesNotOverwrite(t *testing.T) {
	cache := New[string, int](10)

	cache.Add("a", 1)
	cache.Add("a", 99)

	v, _ := cache.Get("a")
	require.Equal(t, 1, v)
	require.Equal(t, 1, cache.Len())
}

func TestFIFOEviction(t *testing.T) {
	cache := New[string, int](10)

	for i := 0; i < 11; i++ {
		cache.Add(fmt.Sprintf("input-%d", i), i)
	}

	// The oldest entry goes first, regardless of access pattern.
	require.False(t, cache.Contains("input-0"))
	require.True(t, cache.Contains("input-1"))
	require.True(t, cache.Contains("input-10"))
	require.Equal(t, 10, cache.Len())
}

func TestEvictionIgnoresAccessOrder(t *testing.T) {
	cache := New[string, int](3)

	cache.Add("a", 1)
	cache.Add("b", 2)
	cache.Add("c", 3)

	// Touching "a" must not save it; this is FIFO, not LRU.
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Add("d", 4)
	require.False(t, cache.Contains("a"))
	require.True(t, cache.Contains("b"))
	require.True(t, cache.Contains("d"))
}

func TestMinimumCapacity(t *testing.T) {
	cache := New[string, int](0)

	cache.Add("a", 1)
	cache.Add("b", 2)

	require.False(t, cache.Contains("a"))
	require.True(t, cache.Contains("b"))
	require.Equal(t, 1, cache.Len())
}
