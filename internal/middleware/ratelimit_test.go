// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLocalBucketsLimitPerKey(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	b := newLocalBuckets(clock.Now)
	limit := PerMinute(60, 2)

	first := b.take("a", limit)
	second := b.take("a", limit)
	third := b.take("a", limit)

	assert.Equal(t, 1, first.Allowed)
	assert.Equal(t, 1, first.Remaining)
	assert.Equal(t, 1, second.Allowed)
	assert.Equal(t, 0, third.Allowed)
	assert.Equal(t, time.Second, third.RetryAfter)

	assert.Equal(t, 1, b.take("b", limit).Allowed)

	clock.Advance(time.Second)
	assert.Equal(t, 1, b.take("a", limit).Allowed)
}

func TestLocalBucketsEvictIdleKeys(t *testing.T) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	b := newLocalBuckets(clock.Now)
	limit := PerMinute(10, 10)

	b.take("stale", limit)
	clock.Advance(bucketIdleTTL / 2)
	b.take("fresh", limit)
	require.Equal(t, 2, b.size())

	clock.Advance(bucketIdleTTL/2 + time.Second)
	b.take("fresh", limit)

	assert.Equal(t, 1, b.size())
	assert.Equal(t, 0, b.sweep(clock.Now().Add(-bucketIdleTTL)))
}

func TestLocalBucketsConcurrentTakeAndSweep(t *testing.T) {
	b := newLocalBuckets(time.Now)
	limit := PerMinute(1000, 50)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 200 {
				b.take(fmt.Sprintf("k%d-%d", i, j%5), limit)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			b.sweep(time.Now().Add(-time.Millisecond))
		}
	}()
	wg.Wait()

	assert.LessOrEqual(t, b.size(), 40)
}
