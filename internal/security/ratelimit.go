package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when an operation exceeds its rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// Rate limit bucket names.
const (
	BucketExecution = "execution"
	BucketApproval  = "approval"
	BucketAuth      = "auth"
)

// RateLimitConfig holds configurable per-minute limits. Zero values are
// replaced with defaults; executions are the expensive bucket since each one
// may spawn a host process.
type RateLimitConfig struct {
	ExecutionsPerMin int `yaml:"executions_per_min"`
	ApprovalsPerMin  int `yaml:"approvals_per_min"`
	AuthPerMin       int `yaml:"auth_per_min"`
}

func rateLimitDefaults() RateLimitConfig {
	return RateLimitConfig{
		ExecutionsPerMin: 30,
		ApprovalsPerMin:  60,
		AuthPerMin:       30,
	}
}

// RateLimiter implements sliding-window rate limiting. Each bucket tracks
// timestamps of recent events within a one-minute window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	window time.Duration
	limit  int
	events []time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := rateLimitDefaults()
	if cfg.ExecutionsPerMin <= 0 {
		cfg.ExecutionsPerMin = defaults.ExecutionsPerMin
	}
	if cfg.ApprovalsPerMin <= 0 {
		cfg.ApprovalsPerMin = defaults.ApprovalsPerMin
	}
	if cfg.AuthPerMin <= 0 {
		cfg.AuthPerMin = defaults.AuthPerMin
	}

	return &RateLimiter{
		now: time.Now,
		buckets: map[string]*bucket{
			BucketExecution: {window: time.Minute, limit: cfg.ExecutionsPerMin},
			BucketApproval:  {window: time.Minute, limit: cfg.ApprovalsPerMin},
			BucketAuth:      {window: time.Minute, limit: cfg.AuthPerMin},
		},
	}
}

// Allow checks whether an event in the named bucket is permitted and, if so,
// records it. An unknown bucket name means no limit is configured.
func (rl *RateLimiter) Allow(name string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[name]
	if !ok {
		return nil
	}

	now := rl.now()
	b.evict(now)

	if len(b.events) >= b.limit {
		return ErrRateLimited
	}

	b.events = append(b.events, now)
	return nil
}

// evict drops events that have aged out of the window.
func (b *bucket) evict(now time.Time) {
	cutoff := now.Add(-b.window)
	i := 0
	for i < len(b.events) && !b.events[i].After(cutoff) {
		i++
	}
	if i > 0 {
		b.events = append(b.events[:0], b.events[i:]...)
	}
}
