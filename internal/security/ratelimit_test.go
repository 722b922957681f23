package security

import (
	"errors"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{ExecutionsPerMin: 3})
	for i := 0; i < 3; i++ {
		if err := rl.Allow(BucketExecution); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if err := rl.Allow(BucketExecution); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("4th call: got %v, want ErrRateLimited", err)
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimitConfig{ApprovalsPerMin: 2})
	rl.now = func() time.Time { return now }

	if err := rl.Allow(BucketApproval); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Second)
	if err := rl.Allow(BucketApproval); err != nil {
		t.Fatal(err)
	}
	if err := rl.Allow(BucketApproval); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}

	// First event ages out after a minute; one slot frees up.
	now = now.Add(31 * time.Second)
	if err := rl.Allow(BucketApproval); err != nil {
		t.Fatalf("after window slide: %v", err)
	}
	if err := rl.Allow(BucketApproval); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
}

func TestRateLimiterBucketsIndependent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{ExecutionsPerMin: 1, AuthPerMin: 1})
	if err := rl.Allow(BucketExecution); err != nil {
		t.Fatal(err)
	}
	if err := rl.Allow(BucketExecution); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
	if err := rl.Allow(BucketAuth); err != nil {
		t.Fatalf("auth bucket affected by execution limit: %v", err)
	}
}

func TestRateLimiterUnknownBucket(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})
	for i := 0; i < 100; i++ {
		if err := rl.Allow("no-such-bucket"); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRateLimiterZeroConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})
	defaults := rateLimitDefaults()
	for i := 0; i < defaults.ExecutionsPerMin; i++ {
		if err := rl.Allow(BucketExecution); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if err := rl.Allow(BucketExecution); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
}
