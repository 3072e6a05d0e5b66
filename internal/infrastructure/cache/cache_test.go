package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New(Config{MaxSize: 10, TTL: time.Minute})

	_, ok := c.Get("/pools")
	assert.False(t, ok)

	c.Set("/pools", map[string]interface{}{"items": []interface{}{}}, 200)
	entry, ok := c.Get("/pools")
	require.True(t, ok)
	assert.Equal(t, 200, entry.StatusCode)
	assert.Equal(t, "/pools", entry.Key)
	assert.False(t, entry.LastAccessed().Before(entry.InsertedAt))

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestConsecutiveGetsRecordOneHitEach(t *testing.T) {
	c := New(DefaultConfig())
	c.Set("/lb", "data", 200)

	first, ok := c.Get("/lb")
	require.True(t, ok)
	before := c.Stats().Hits

	second, ok := c.Get("/lb")
	require.True(t, ok)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, before+1, c.Stats().Hits)
}

func TestExpiry(t *testing.T) {
	c := New(Config{MaxSize: 10, TTL: time.Minute})
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set("/pools", "data", 200)
	now = now.Add(59 * time.Second)
	_, ok := c.Get("/pools")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("/pools")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestEvictionIsLRU(t *testing.T) {
	c := New(Config{MaxSize: 2, TTL: time.Minute})
	c.Set("/a", 1, 200)
	c.Set("/b", 2, 200)
	_, _ = c.Get("/a")
	c.Set("/c", 3, 200)

	_, ok := c.Get("/b")
	assert.False(t, ok)
	_, ok = c.Get("/a")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestInvalidatePath(t *testing.T) {
	c := New(DefaultConfig())
	c.Set("/ns/default/pools", 1, 200)
	c.Set("/ns/default/pools?label_filter=a", 2, 200)
	c.Set("/ns/default/pools/web", 3, 200)
	c.Set("/ns/default/poolsx", 4, 200)

	removed := c.InvalidatePath("/ns/default/pools")
	assert.Equal(t, 2, removed)

	_, ok := c.Get("/ns/default/pools")
	assert.False(t, ok)
	_, ok = c.Get("/ns/default/pools?label_filter=a")
	assert.False(t, ok)
	_, ok = c.Get("/ns/default/pools/web")
	assert.True(t, ok)
	_, ok = c.Get("/ns/default/poolsx")
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	c := New(DefaultConfig())
	c.Set("/a", 1, 200)
	_, _ = c.Get("/a")
	c.Clear()

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Zero(t, stats.Hits)
	assert.Equal(t, DefaultMaxSize, stats.MaxSize)
}

func TestConcurrentAccess(t *testing.T) {
	c := New(Config{MaxSize: 50, TTL: time.Minute})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("/k/%d", j%20)
				c.Set(key, j, 200)
				c.Get(key)
				if j%25 == 0 {
					c.InvalidatePath(key)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
