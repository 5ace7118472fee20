package ratelimit

import (
	"sync"
	"time"
)

// Config stores TokenBucketLimiter settings.
type Config struct {
	Rate       float64       // refill rate, tokens per second
	Burst      int           // bucket capacity
	TTL        time.Duration // evict buckets idle longer than this (0 disables)
	MaxBuckets int           // cap on tracked keys (0 = unbounded)
}

// TokenBucketLimiter rate-limits independent keys, one token bucket per
// key. Safe for concurrent use.
type TokenBucketLimiter struct {
	cfg   Config
	clock Clock

	mu        sync.RWMutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	mu      sync.Mutex
	tokens  float64
	touched time.Time
}

// NewTokenBucketLimiter builds a limiter from cfg, sanitizing
// non-positive settings.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &TokenBucketLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// NewTokenBucketPerWindow expresses the limit as "limit requests per
// window" and converts it to a rate.
func NewTokenBucketPerWindow(clock Clock, limit int, window time.Duration, ttl time.Duration, maxBuckets int) *TokenBucketLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return NewTokenBucketLimiter(clock, Config{
		Rate:       float64(limit) / window.Seconds(),
		Burst:      limit,
		TTL:        ttl,
		MaxBuckets: maxBuckets,
	})
}

// Allow reports whether key may proceed, consuming one token if so.
// Keys beyond MaxBuckets are denied until eviction frees a slot.
func (l *TokenBucketLimiter) Allow(key string) bool {
	now := l.clock.Now()
	l.sweep(now)

	b := l.lookup(key, now)
	if b == nil {
		return false
	}
	return l.take(b, now)
}

func (l *TokenBucketLimiter) lookup(key string, now time.Time) *bucket {
	l.mu.RLock()
	b := l.buckets[key]
	l.mu.RUnlock()
	if b != nil {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b = l.buckets[key]; b != nil {
		return b
	}
	if l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets {
		return nil
	}
	b = &bucket{tokens: float64(l.cfg.Burst), touched: now}
	l.buckets[key] = b
	return b
}

func (l *TokenBucketLimiter) take(b *bucket, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dt := now.Sub(b.touched); dt > 0 {
		b.tokens += dt.Seconds() * l.cfg.Rate
		if burst := float64(l.cfg.Burst); b.tokens > burst {
			b.tokens = burst
		}
	}
	b.touched = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops idle buckets, at most once per sweep interval.
func (l *TokenBucketLimiter) sweep(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}
	interval := time.Minute
	if half := l.cfg.TTL / 2; half > interval {
		interval = half
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < interval {
		return
	}
	l.lastSweep = now

	for k, b := range l.buckets {
		b.mu.Lock()
		idle := now.Sub(b.touched)
		b.mu.Unlock()
		if idle > l.cfg.TTL {
			delete(l.buckets, k)
		}
	}
}
