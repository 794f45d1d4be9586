package ai

import (
	"context"
	"errors"
	"time"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/logging"
	"github.com/sony/gobreaker"
)

const (
	defaultRetryDelay       = time.Second
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

// Resilient wraps a TextGenerator with at most one retry on transient
// failures and a circuit breaker that fails fast after repeated failures
type Resilient struct {
	next       TextGenerator
	breaker    *gobreaker.CircuitBreaker
	retryDelay time.Duration
	threshold  uint32
	openFor    time.Duration
}

// ResilientOption configures a Resilient generator
type ResilientOption func(*Resilient)

// WithRetryDelay sets the pause before the single retry
func WithRetryDelay(d time.Duration) ResilientOption {
	return func(r *Resilient) { r.retryDelay = d }
}

// WithFailureThreshold sets how many consecutive request failures open the breaker
func WithFailureThreshold(n uint32) ResilientOption {
	return func(r *Resilient) { r.threshold = n }
}

// WithOpenTimeout sets how long the breaker stays open before probing again
func WithOpenTimeout(d time.Duration) ResilientOption {
	return func(r *Resilient) { r.openFor = d }
}

// NewResilient wraps next
func NewResilient(next TextGenerator, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		next:       next,
		retryDelay: defaultRetryDelay,
		threshold:  defaultFailureThreshold,
		openFor:    defaultOpenTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     r.openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= r.threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.NewLogger(context.Background()).
				WithField("backend", name).
				Warnf("circuit breaker %s -> %s", from, to)
		},
		// Only transport failures count against the backend
		IsSuccessful: func(err error) bool {
			return err == nil || !apierr.IsRequest(err)
		},
	})
	return r
}

// Generate calls the wrapped backend, retrying once on a transient failure
func (r *Resilient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	log := logging.NewLogger(ctx).WithField("backend", r.next.Name())

	text, err := r.attempt(ctx, prompt, opts)
	if err == nil || !apierr.IsTransient(err) || isBreakerError(err) {
		return text, err
	}

	log.Warnf("transient failure, retrying once: %v", err)
	select {
	case <-ctx.Done():
		return "", &apierr.RequestError{Provider: r.next.Name(), Err: ctx.Err()}
	case <-time.After(r.retryDelay):
	}

	return r.attempt(ctx, prompt, opts)
}

// Name returns the wrapped backend name
func (r *Resilient) Name() string {
	return r.next.Name()
}

// State exposes the breaker state for diagnostics
func (r *Resilient) State() gobreaker.State {
	return r.breaker.State()
}

func (r *Resilient) attempt(ctx context.Context, prompt string, opts Options) (string, error) {
	res, err := r.breaker.Execute(func() (interface{}, error) {
		return r.next.Generate(ctx, prompt, opts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &apierr.RequestError{Provider: r.next.Name(), Err: err}
		}
		return "", err
	}
	return res.(string), nil
}

func isBreakerError(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
