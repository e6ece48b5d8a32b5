package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultFailThreshold = 3
	defaultOpenFor       = 15 * time.Second
)

// newBreaker opens after threshold consecutive failures and, once openFor has elapsed,
// lets a single probe through while half-open.
func newBreaker(name string, threshold int, openFor time.Duration, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if threshold <= 0 {
		threshold = defaultFailThreshold
	}
	if openFor <= 0 {
		openFor = defaultOpenFor
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		// a caller giving up says nothing about the relay's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mail relay circuit changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// breakerRejected reports whether err came from the breaker rather than the call it guards.
func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
