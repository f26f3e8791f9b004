package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Verdict tells the executor what to do with a failed attempt.
type Verdict struct {
	Retry         bool
	CountsAgainst bool
}

type Classifier func(err error) Verdict

type Option func(*Executor)

// WithRetryHook is called before every retry of an operation.
func WithRetryHook(hook func(operation string)) Option {
	return func(e *Executor) {
		e.onRetry = hook
	}
}

// WithBreakerHook is called whenever a breaker changes state.
func WithBreakerHook(hook func(operation string, to gobreaker.State)) Option {
	return func(e *Executor) {
		e.onStateChange = hook
	}
}

// Executor wraps remote calls in per-operation circuit breakers and bounded
// exponential retry. It is safe for concurrent use.
type Executor struct {
	policy Policy

	onRetry       func(operation string)
	onStateChange func(operation string, to gobreaker.State)

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(policy Policy, opts ...Option) *Executor {
	e := &Executor{
		policy:   policy.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Call runs fn through e and returns its value. A nil executor calls fn once.
func Call[T any](
	ctx context.Context,
	e *Executor,
	operation string,
	fn func(context.Context) (T, error),
	classify Classifier,
) (T, error) {
	var out T
	if e == nil {
		return fn(ctx)
	}
	err := e.Do(ctx, operation, func(ctx context.Context) error {
		value, err := fn(ctx)
		if err != nil {
			return err
		}
		out = value
		return nil
	}, classify)
	return out, err
}

func (e *Executor) Do(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classify Classifier,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classify == nil {
		classify = neverRetry
	}

	if !e.policy.BreakerEnabled {
		return e.retry(ctx, op, fn, classify)
	}

	breaker := e.breaker(op, classify)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.retry(ctx, op, fn, classify)
	})
	return err
}

func (e *Executor) retry(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classify Classifier,
) error {
	var lastErr error
	for attempt := 1; attempt <= e.policy.RetryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !classify(lastErr).Retry || attempt == e.policy.RetryMaxAttempts {
			return lastErr
		}

		wait := e.policy.Backoff(attempt)
		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.policy.RetryMaxAttempts,
			"backoff_ms", float64(wait.Microseconds())/1000.0,
			"error", lastErr,
		)
		if e.onRetry != nil {
			e.onRetry(operation)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

func (e *Executor) breaker(operation string, classify Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	policy := e.policy
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: policy.BreakerHalfOpenMaxCalls,
		Timeout:     policy.BreakerOpenTimeout,
		ReadyToTrip: policy.shouldTrip,
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).CountsAgainst
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
			if e.onStateChange != nil {
				e.onStateChange(name, to)
			}
		},
	})
	e.breakers[operation] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func neverRetry(error) Verdict {
	return Verdict{Retry: false, CountsAgainst: true}
}
