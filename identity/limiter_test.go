package identity

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimiter(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	ctx := context.Background()

	now := time.Now()
	limiter.now = func() time.Time { return now }

	limit := 3
	for i := 0; i < limit; i++ {
		allowed, remaining, err := limiter.Allow(ctx, "k", limit, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
		if remaining != limit-i-1 {
			t.Errorf("expected remaining %d, got %d", limit-i-1, remaining)
		}
	}

	if allowed, _, _ := limiter.Allow(ctx, "k", limit, time.Minute); allowed {
		t.Error("4th request should be denied")
	}
	if allowed, _, _ := limiter.Allow(ctx, "other", limit, time.Minute); !allowed {
		t.Error("other keys are independent")
	}

	now = now.Add(2 * time.Minute)
	if allowed, _, _ := limiter.Allow(ctx, "k", limit, time.Minute); !allowed {
		t.Error("request should be allowed after the window passes")
	}

	_ = limiter.Reset(ctx, "k")
	if allowed, remaining, _ := limiter.Allow(ctx, "k", limit, time.Minute); !allowed || remaining != limit-1 {
		t.Errorf("expected a fresh window after reset, got allowed=%v remaining=%d", allowed, remaining)
	}
}
