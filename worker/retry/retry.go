package retry

import (
	"time"
)

type Strategy string

const (
	BackoffStrategy Strategy = "backoff"
)

// Stop means no further attempt may be made.
const Stop time.Duration = -1

type Retry interface {
	// NextDelay returns the delay before the attempt following the given
	// (1-based) failed attempt, or Stop.
	NextDelay(attempts int) time.Duration
}

type Option func(Retry)

func NewRetry(strategy Strategy, opts ...Option) Retry {
	var retry Retry
	switch strategy {
	case BackoffStrategy:
		retry = newBackoffStrategyRetry()
	default:
		panic("invalid strategy: " + strategy)
	}
	for _, opt := range opts {
		opt(retry)
	}
	return retry
}
