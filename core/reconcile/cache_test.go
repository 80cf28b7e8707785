package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrLoad(t *testing.T) {
	c := NewCache[*Result]()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var loads int
	load := func(ctx context.Context) *Result {
		loads++
		return &Result{Loaded: loads, Expected: loads}
	}

	r, cached := c.GetOrLoad(context.Background(), "companies", time.Minute, load)
	assert.False(t, cached)
	assert.Equal(t, 1, r.Loaded)

	r, cached = c.GetOrLoad(context.Background(), "companies", time.Minute, load)
	assert.True(t, cached)
	assert.Equal(t, 1, r.Loaded)

	now = now.Add(2 * time.Minute)
	r, cached = c.GetOrLoad(context.Background(), "companies", time.Minute, load)
	assert.False(t, cached)
	assert.Equal(t, 2, r.Loaded)
	assert.Equal(t, 2, loads)
}

func TestCache_ZeroTTLAlwaysReloads(t *testing.T) {
	c := NewCache[*Result]()
	var loads int
	load := func(ctx context.Context) *Result {
		loads++
		return &Result{}
	}

	c.GetOrLoad(context.Background(), "k", 0, load)
	c.GetOrLoad(context.Background(), "k", 0, load)
	assert.Equal(t, 2, loads)
}

func TestCache_InvalidateAndPeek(t *testing.T) {
	c := NewCache[*Result]()
	_, ok := c.Peek("k")
	assert.False(t, ok)

	var loads int
	load := func(ctx context.Context) *Result {
		loads++
		return &Result{Loaded: loads}
	}
	c.GetOrLoad(context.Background(), "k", time.Hour, load)

	c.Invalidate("k")
	peeked, ok := c.Peek("k")
	require.True(t, ok)
	assert.Equal(t, 1, peeked.Loaded, "invalidated entries stay visible to Peek")

	r, cached := c.GetOrLoad(context.Background(), "k", time.Hour, load)
	assert.False(t, cached)
	assert.Equal(t, 2, r.Loaded)

	c.Invalidate("missing")
	_, ok = c.Peek("missing")
	assert.False(t, ok)
}

func TestCache_ConcurrentCallersShareOneLoad(t *testing.T) {
	c := NewCache[*Result]()
	var loads atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context) *Result {
		loads.Add(1)
		<-release
		return &Result{Loaded: 1, Expected: 1}
	}

	const callers = 8
	var started, wg sync.WaitGroup
	started.Add(callers)
	wg.Add(callers)
	results := make([]*Result, callers)
	for i := range callers {
		go func() {
			defer wg.Done()
			started.Done()
			results[i], _ = c.GetOrLoad(context.Background(), "k", time.Minute, load)
		}()
	}
	started.Wait()
	// Let the goroutines reach singleflight before the load returns.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}
