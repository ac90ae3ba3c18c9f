package ratelimiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow(t *testing.T) {
	t.Run("allows up to capacity", func(t *testing.T) {
		l := New(1, 3, time.Minute)
		defer l.Stop()

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
	})

	t.Run("identities have separate buckets", func(t *testing.T) {
		l := New(1, 1, time.Minute)
		defer l.Stop()

		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"))
		assert.Equal(t, 2, l.Len())
	})

	t.Run("refills over time without exceeding capacity", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		l := New(1, 2, time.Minute)
		l.now = func() time.Time { return now }
		defer l.Stop()

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))

		now = now.Add(10 * time.Second)
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
	})
}

func TestBucketsExpire(t *testing.T) {
	l := New(1, 1, 10*time.Millisecond)
	defer l.Stop()

	l.Allow("a")
	assert.Equal(t, 1, l.Len())

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestConcurrentAllow(t *testing.T) {
	l := New(0, 50, time.Minute)
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("a") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
