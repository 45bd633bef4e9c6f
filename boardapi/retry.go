package boardapi

import (
	"context"
	"time"
)

// retryState is the explicit per-page retry machine: attempt counter,
// doubling delay, and a terminal bound. Keeping it as a value type makes the
// worst-case latency of one page auditable: sum of delays is
// base * (2^(max-1) - 1) plus max page timeouts.
type retryState struct {
	attempt    int
	max        int
	delay      time.Duration
	retryAfter time.Duration // server-provided override for the next wait
}

func newRetryState(maxAttempts int, baseDelay time.Duration) retryState {
	return retryState{max: maxAttempts, delay: baseDelay}
}

// failed records a failed attempt and reports whether another try remains.
func (s *retryState) failed() bool {
	s.attempt++
	return s.attempt < s.max
}

// wait blocks for the next backoff interval, doubling it for the attempt
// after. A Retry-After hint from the server replaces the computed delay
// once, then the doubling schedule resumes.
func (s *retryState) wait(ctx context.Context) error {
	d := s.delay
	if s.retryAfter > 0 {
		d = s.retryAfter
		s.retryAfter = 0
	}
	s.delay *= 2

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
