package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"inboxeval/internal/testutil"
)

type fakeLimiter struct {
	mu            sync.Mutex
	reserveCalls  []ReserveRequest
	completeCalls []CompleteRequest
	reserveFn     func(ReserveRequest) (ReserveResponse, error)
	completeCh    chan struct{}
}

func (f *fakeLimiter) Reserve(_ context.Context, req ReserveRequest) (ReserveResponse, error) {
	f.mu.Lock()
	f.reserveCalls = append(f.reserveCalls, req)
	fn := f.reserveFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return ReserveResponse{Allowed: true}, nil
}

func (f *fakeLimiter) Complete(_ context.Context, req CompleteRequest) (CompleteResponse, error) {
	f.mu.Lock()
	f.completeCalls = append(f.completeCalls, req)
	completeCh := f.completeCh
	f.mu.Unlock()
	if completeCh != nil {
		select {
		case completeCh <- struct{}{}:
		default:
		}
	}
	return CompleteResponse{Ok: true}, nil
}

type idSource struct {
	mu   sync.Mutex
	next int
}

func (s *idSource) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("L-%d", s.next)
}

func testSchedulerConfig(ids *idSource) schedulerConfig {
	return schedulerConfig{
		now:             time.Now,
		newLeaseID:      ids.Next,
		jitter:          func(time.Duration) time.Duration { return 0 },
		errorRetryDelay: 5 * time.Millisecond,
		idleInterval:    time.Millisecond,
	}
}

// runWithTimeout fails the test if fn does not complete within timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-ctx.Done():
		t.Fatalf("test timed out")
	case <-done:
	}
}

// waitFor waits for a signal on ch or fails after timeout.
func waitFor(t *testing.T, ch <-chan struct{}, timeout time.Duration) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	select {
	case <-ctx.Done():
		t.Fatalf("timeout waiting for signal")
	case <-ch:
	}
}

// waitForCount waits for count signals or fails after timeout.
func waitForCount(t *testing.T, ch <-chan struct{}, count int, timeout time.Duration) {
	t.Helper()
	if count <= 0 {
		return
	}
	ctx := testutil.Context(t, timeout)
	seen := 0
	for seen < count {
		select {
		case <-ctx.Done():
			t.Fatalf("timeout waiting for %d signals (got %d)", count, seen)
		case <-ch:
			seen++
		}
	}
}

func TestScheduler_NoHeadOfLineBlocking(t *testing.T) {
	runWithTimeout(t, 2*time.Second, func() {
		lim := &fakeLimiter{}
		lim.reserveFn = func(req ReserveRequest) (ReserveResponse, error) {
			if req.Key == "workflow" {
				return ReserveResponse{Allowed: false, RetryAfterMs: 100}, nil
			}
			return ReserveResponse{Allowed: true}, nil
		}
		sched := newScheduler(lim, 1, testSchedulerConfig(&idSource{}))
		defer func() {
			_ = sched.Shutdown(testutil.Context(t, time.Second))
		}()

		done := make(chan struct{}, 2)
		sched.Submit(Job{
			Variant: "workflow",
			Execute: func(context.Context) {
				t.Errorf("workflow job should not execute")
			},
		})
		sched.Submit(Job{Variant: "tool-agent", Execute: func(context.Context) { done <- struct{}{} }})
		sched.Submit(Job{Variant: "tool-agent", Execute: func(context.Context) { done <- struct{}{} }})

		waitForCount(t, done, 2, 200*time.Millisecond)
	})
}

func TestScheduler_RetryUsesNewLeaseID(t *testing.T) {
	runWithTimeout(t, 2*time.Second, func() {
		lim := &fakeLimiter{}
		countMu := sync.Mutex{}
		callCounts := map[string]int{}
		lim.reserveFn = func(req ReserveRequest) (ReserveResponse, error) {
			countMu.Lock()
			count := callCounts[req.JobID]
			callCounts[req.JobID] = count + 1
			countMu.Unlock()
			if count == 0 {
				return ReserveResponse{Allowed: false, RetryAfterMs: 1}, nil
			}
			return ReserveResponse{Allowed: true}, nil
		}
		sched := newScheduler(lim, 1, testSchedulerConfig(&idSource{}))
		defer func() {
			_ = sched.Shutdown(testutil.Context(t, time.Second))
		}()

		done := make(chan struct{})
		sched.Submit(Job{
			JobID:   "job-1",
			Variant: "workflow",
			Execute: func(context.Context) { close(done) },
		})
		waitFor(t, done, 300*time.Millisecond)

		lim.mu.Lock()
		calls := append([]ReserveRequest(nil), lim.reserveCalls...)
		lim.mu.Unlock()
		if len(calls) < 2 {
			t.Fatalf("expected at least 2 reserve calls, got %d", len(calls))
		}
		if calls[0].LeaseID == calls[1].LeaseID {
			t.Fatalf("expected different lease IDs for retry")
		}
	})
}

func TestScheduler_CompleteAlwaysCalledAfterAllowed(t *testing.T) {
	runWithTimeout(t, 2*time.Second, func() {
		lim := &fakeLimiter{}
		completeCalled := make(chan struct{}, 2)
		lim.completeCh = completeCalled
		sched := newScheduler(lim, 2, testSchedulerConfig(&idSource{}))
		defer func() {
			_ = sched.Shutdown(testutil.Context(t, time.Second))
		}()

		for i := 0; i < 2; i++ {
			sched.Submit(Job{
				JobID:   fmt.Sprintf("job-%d", i),
				Variant: "workflow",
				Execute: func(context.Context) {},
			})
		}
		waitForCount(t, completeCalled, 2, 200*time.Millisecond)

		lim.mu.Lock()
		count := len(lim.completeCalls)
		lim.mu.Unlock()
		if count != 2 {
			t.Fatalf("expected 2 complete calls, got %d", count)
		}
	})
}

func TestScheduler_BoundedWorkers(t *testing.T) {
	runWithTimeout(t, 3*time.Second, func() {
		const workers = 2
		var mu sync.Mutex
		inFlight := 0
		maxInFlight := 0
		done := make(chan struct{}, 8)
		sched := newScheduler(NoopLimiter, workers, testSchedulerConfig(&idSource{}))
		defer func() {
			_ = sched.Shutdown(testutil.Context(t, time.Second))
		}()

		for i := 0; i < 8; i++ {
			sched.Submit(Job{
				JobID:   fmt.Sprintf("job-%d", i),
				Variant: "workflow",
				Execute: func(context.Context) {
					mu.Lock()
					inFlight++
					if inFlight > maxInFlight {
						maxInFlight = inFlight
					}
					mu.Unlock()
					time.Sleep(10 * time.Millisecond)
					mu.Lock()
					inFlight--
					mu.Unlock()
					done <- struct{}{}
				},
			})
		}
		waitForCount(t, done, 8, 2*time.Second)

		mu.Lock()
		defer mu.Unlock()
		if maxInFlight > workers {
			t.Fatalf("observed %d concurrent executions, limit is %d", maxInFlight, workers)
		}
	})
}
