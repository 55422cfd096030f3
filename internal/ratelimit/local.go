package ratelimit

import (
	"context"
	"sync"
	"time"
)

// LocalBucket is the in-process fallback used when no redis address is
// configured. Buckets are pruned lazily on access.
type LocalBucket struct {
	mu      sync.Mutex
	buckets map[string]*localEntry
	now     func() time.Time
}

type localEntry struct {
	tokens float64
	ts     time.Time
}

func NewLocalBucket() *LocalBucket {
	return &LocalBucket{
		buckets: make(map[string]*localEntry),
		now:     time.Now,
	}
}

func (l *LocalBucket) Allow(_ context.Context, key string, rate float64, burst int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.buckets[key]
	if !ok {
		entry = &localEntry{tokens: float64(burst), ts: now}
		l.buckets[key] = entry
	} else {
		elapsed := now.Sub(entry.ts).Seconds()
		if elapsed > 0 {
			entry.tokens = min(float64(burst), entry.tokens+elapsed*rate)
		}
		entry.ts = now
	}

	if len(l.buckets) > 10000 {
		l.prune(now, rate, burst)
	}

	if entry.tokens < 1 {
		return false, nil
	}
	entry.tokens--
	return true, nil
}

// prune drops buckets that have fully refilled; they carry no state a new
// bucket would not have.
func (l *LocalBucket) prune(now time.Time, rate float64, burst int) {
	for key, entry := range l.buckets {
		elapsed := now.Sub(entry.ts).Seconds()
		if entry.tokens+elapsed*rate >= float64(burst) {
			delete(l.buckets, key)
		}
	}
}
