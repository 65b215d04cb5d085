// Package dispatch provides the bounded-worker scheduler the experiment
// runner uses at concurrency > 1, together with an optional per-variant
// invocation rate limiter.
package dispatch

import "context"

// LimitKey identifies the resource being limited, one key per variant.
type LimitKey string

// ReserveRequest asks the limiter for permission to run one invocation.
type ReserveRequest struct {
	LeaseID string
	JobID   string
	Key     LimitKey
}

// ReserveResponse reports the limiter's decision.
type ReserveResponse struct {
	Allowed      bool
	RetryAfterMs int
	Error        string
}

// CompleteRequest releases a lease after the invocation finished.
type CompleteRequest struct {
	LeaseID string
	JobID   string
}

// CompleteResponse acknowledges a completion.
type CompleteResponse struct {
	Ok bool
}

// Limiter gates invocation starts. Implementations must be safe for
// concurrent use by scheduler workers.
type Limiter interface {
	Reserve(ctx context.Context, req ReserveRequest) (ReserveResponse, error)
	Complete(ctx context.Context, req CompleteRequest) (CompleteResponse, error)
}

// NoopLimiter always allows invocations.
var NoopLimiter Limiter = noopLimiter{}

type noopLimiter struct{}

// Reserve accepts every reservation.
func (noopLimiter) Reserve(_ context.Context, _ ReserveRequest) (ReserveResponse, error) {
	return ReserveResponse{Allowed: true}, nil
}

// Complete accepts every completion.
func (noopLimiter) Complete(_ context.Context, _ CompleteRequest) (CompleteResponse, error) {
	return CompleteResponse{Ok: true}, nil
}
