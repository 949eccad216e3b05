package retry

import "time"

// BackoffStrategyRetry doubles the delay after every failed attempt:
// base, 2*base, 4*base... until MaxAttempts attempts have been made.
type BackoffStrategyRetry struct {
	base        time.Duration
	maxAttempts int
}

func newBackoffStrategyRetry() *BackoffStrategyRetry {
	return &BackoffStrategyRetry{
		base:        time.Second,
		maxAttempts: 3,
	}
}

func WithBackoff(base time.Duration, maxAttempts int) Option {
	return func(r Retry) {
		retry := r.(*BackoffStrategyRetry)
		retry.base = base
		retry.maxAttempts = maxAttempts
	}
}

func (r *BackoffStrategyRetry) NextDelay(attempts int) time.Duration {
	if attempts < 1 || attempts >= r.maxAttempts {
		return Stop
	}
	return r.base << (attempts - 1)
}
