package ratelimit

import "time"

// Limiter is a per-key rate limiter. Keys are caller-defined: the HTTP
// middleware uses client IPs, the verify flow uses delivery ids.
type Limiter interface {
	Allow(key string) bool
}

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the default clock.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now() }

// NopLimiter is a no-op limiter
type NopLimiter struct{}

// Allow always returns true
func (NopLimiter) Allow(string) bool { return true }

// NewNopLimiter returns NopLimiter
func NewNopLimiter() Limiter { return NopLimiter{} }
