package dispatch

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// RollingLimit caps invocations per rolling window for one key.
type RollingLimit struct {
	Requests uint64
	Window   time.Duration
}

// RollingLimiter is an in-process limiter enforcing per-key rolling windows.
// Keys without a configured limit are always allowed.
type RollingLimiter struct {
	mu     sync.Mutex
	limits map[LimitKey]*rollingState
	now    func() time.Time
}

type rollingState struct {
	limit RollingLimit
	used  uint64
	heap  reservationHeap
	byID  map[string]*reservation
}

type reservation struct {
	id        string
	expiresAt time.Time
	heapIndex int
}

// NewRollingLimiter builds a limiter from per-key limits.
func NewRollingLimiter(limits map[LimitKey]RollingLimit) *RollingLimiter {
	return NewRollingLimiterWithClock(limits, time.Now)
}

// NewRollingLimiterWithClock injects the clock, primarily for tests.
func NewRollingLimiterWithClock(limits map[LimitKey]RollingLimit, now func() time.Time) *RollingLimiter {
	states := make(map[LimitKey]*rollingState, len(limits))
	for key, limit := range limits {
		if limit.Requests == 0 || limit.Window <= 0 {
			continue
		}
		states[key] = &rollingState{
			limit: limit,
			byID:  map[string]*reservation{},
		}
	}
	return &RollingLimiter{limits: states, now: now}
}

// Reserve admits the invocation when the key's window has capacity. A denial
// carries a retry hint of one full window.
func (l *RollingLimiter) Reserve(_ context.Context, req ReserveRequest) (ReserveResponse, error) {
	if req.LeaseID == "" {
		return ReserveResponse{Allowed: false, Error: "invalid_request"}, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.limits[req.Key]
	if !ok {
		return ReserveResponse{Allowed: true}, nil
	}
	now := l.now()
	state.expire(now)
	if _, held := state.byID[req.LeaseID]; held {
		return ReserveResponse{Allowed: true}, nil
	}
	if state.used+1 > state.limit.Requests {
		return ReserveResponse{
			Allowed:      false,
			RetryAfterMs: int(state.limit.Window / time.Millisecond),
		}, nil
	}
	state.add(req.LeaseID, now.Add(state.limit.Window))
	return ReserveResponse{Allowed: true}, nil
}

// Complete acknowledges a finished invocation. The reservation keeps counting
// against the window until it expires; completion only confirms the lease.
func (l *RollingLimiter) Complete(_ context.Context, req CompleteRequest) (CompleteResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, state := range l.limits {
		if _, ok := state.byID[req.LeaseID]; ok {
			return CompleteResponse{Ok: true}, nil
		}
	}
	return CompleteResponse{Ok: true}, nil
}

func (s *rollingState) expire(now time.Time) {
	for s.heap.Len() > 0 {
		res := s.heap[0]
		if res.expiresAt.After(now) {
			return
		}
		heap.Pop(&s.heap)
		delete(s.byID, res.id)
		if s.used > 0 {
			s.used--
		}
	}
}

func (s *rollingState) add(leaseID string, expiresAt time.Time) {
	res := &reservation{id: leaseID, expiresAt: expiresAt}
	s.byID[leaseID] = res
	s.used++
	heap.Push(&s.heap, res)
}

type reservationHeap []*reservation

func (h reservationHeap) Len() int { return len(h) }

func (h reservationHeap) Less(i, j int) bool {
	return h[i].expiresAt.Before(h[j].expiresAt)
}

func (h reservationHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *reservationHeap) Push(x interface{}) {
	res := x.(*reservation)
	res.heapIndex = len(*h)
	*h = append(*h, res)
}

func (h *reservationHeap) Pop() interface{} {
	old := *h
	n := len(old)
	res := old[n-1]
	res.heapIndex = -1
	*h = old[:n-1]
	return res
}
