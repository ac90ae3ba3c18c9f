// Package ratelimiter implements per-identity token buckets.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	timer      *time.Timer
}

// Limiter hands every identity its own bucket of capacity tokens refilled at
// rate tokens per second. Buckets unused for expiration are dropped.
type Limiter struct {
	rate       float64
	capacity   float64
	expiration time.Duration
	now        func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func New(rate, capacity float64, expiration time.Duration) *Limiter {
	return &Limiter{
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
	}
}

// Allow takes one token from identity's bucket if there is one.
func (l *Limiter) Allow(identity string) bool {
	b := l.bucket(identity)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (l *Limiter) bucket(identity string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[identity]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: l.now()}
		l.buckets[identity] = b
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(l.expiration, func() { l.expire(identity, b) })
	return b
}

func (l *Limiter) expire(identity string, b *bucket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buckets[identity] == b {
		delete(l.buckets, identity)
	}
}

// Len is the number of identities currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop cancels every expiration timer.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
	}
}
