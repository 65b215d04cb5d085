package dispatch

import (
	"context"
	"time"
)

// worker consumes jobs from the work channel and executes them.
func (s *Scheduler) worker() {
	defer s.wg.Done()
	for job := range s.workCh {
		s.handleJob(job)
	}
}

// handleJob runs a single reserve/execute/complete attempt.
func (s *Scheduler) handleJob(job Job) {
	job = s.ensureLeaseID(job)
	res, err := s.limiter.Reserve(s.ctx, ReserveRequest{
		LeaseID: job.LeaseID,
		JobID:   job.JobID,
		Key:     LimitKey(job.Variant),
	})
	if err != nil {
		if s.observer != nil {
			s.observer.OnReserveError(job, err)
		}
		s.requeue(job, s.now().Add(s.errorRetryDelay))
		return
	}
	if !res.Allowed {
		if s.observer != nil {
			s.observer.OnReserveDenied(job, res)
		}
		job.LeaseID = s.newLeaseID()
		s.requeue(job, s.now().Add(s.retryDelay(res)))
		return
	}
	if job.Execute != nil {
		job.Execute(s.ctx)
	}
	s.complete(job)
}

// ensureLeaseID assigns a lease ID if one is missing.
func (s *Scheduler) ensureLeaseID(job Job) Job {
	if job.LeaseID == "" {
		job.LeaseID = s.newLeaseID()
	}
	return job
}

// retryDelay calculates retry timing for a denied reservation.
func (s *Scheduler) retryDelay(res ReserveResponse) time.Duration {
	delay := time.Duration(res.RetryAfterMs) * time.Millisecond
	if delay < 0 {
		delay = 0
	}
	jitter := s.jitter(delay)
	if jitter < 0 {
		jitter = 0
	}
	return delay + jitter
}

// complete reports completion to the limiter, ignoring errors.
func (s *Scheduler) complete(job Job) {
	_, _ = s.limiter.Complete(context.Background(), CompleteRequest{
		LeaseID: job.LeaseID,
		JobID:   job.JobID,
	})
}
