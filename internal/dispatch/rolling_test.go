package dispatch

import (
	"context"
	"testing"
	"time"

	"inboxeval/internal/testutil"
)

func TestRollingLimiterEnforcesWindow(t *testing.T) {
	clock := testutil.NewFakeClock(time.Unix(1_700_000_000, 0))
	limiter := NewRollingLimiterWithClock(map[LimitKey]RollingLimit{
		"workflow": {Requests: 2, Window: time.Minute},
	}, clock.Now)
	ctx := context.Background()

	for i, lease := range []string{"a", "b"} {
		res, err := limiter.Reserve(ctx, ReserveRequest{LeaseID: lease, Key: "workflow"})
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("reserve %d should be allowed", i)
		}
	}

	res, err := limiter.Reserve(ctx, ReserveRequest{LeaseID: "c", Key: "workflow"})
	if err != nil {
		t.Fatalf("reserve over capacity: %v", err)
	}
	if res.Allowed {
		t.Fatalf("expected denial over capacity")
	}
	if res.RetryAfterMs != int(time.Minute/time.Millisecond) {
		t.Fatalf("retry hint = %d ms", res.RetryAfterMs)
	}

	clock.Advance(time.Minute + time.Second)
	res, err = limiter.Reserve(ctx, ReserveRequest{LeaseID: "c", Key: "workflow"})
	if err != nil {
		t.Fatalf("reserve after window: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("expected allowance after window expiry")
	}
}

func TestRollingLimiterUnknownKeyAllowed(t *testing.T) {
	limiter := NewRollingLimiter(map[LimitKey]RollingLimit{"workflow": {Requests: 1, Window: time.Minute}})
	res, err := limiter.Reserve(context.Background(), ReserveRequest{LeaseID: "x", Key: "other"})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !res.Allowed {
		t.Fatalf("unlimited key should be allowed")
	}
}

func TestRollingLimiterIdempotentLease(t *testing.T) {
	limiter := NewRollingLimiter(map[LimitKey]RollingLimit{"workflow": {Requests: 1, Window: time.Minute}})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, err := limiter.Reserve(ctx, ReserveRequest{LeaseID: "same", Key: "workflow"})
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("re-reserving the same lease should stay allowed")
		}
	}
}

func TestRollingLimiterRejectsEmptyLease(t *testing.T) {
	limiter := NewRollingLimiter(nil)
	res, err := limiter.Reserve(context.Background(), ReserveRequest{Key: "workflow"})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if res.Allowed || res.Error != "invalid_request" {
		t.Fatalf("expected invalid_request denial, got %+v", res)
	}
}
