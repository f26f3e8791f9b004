package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastPolicy() Policy {
	return Policy{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestDoRetriesRetryableFailureUntilSuccess(t *testing.T) {
	retries := 0
	exec := NewExecutor(fastPolicy(), WithRetryHook(func(string) { retries++ }))

	attempts := 0
	errFlaky := errors.New("flaky")
	err := exec.Do(context.Background(), "grading.extract", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errFlaky
		}
		return nil
	}, func(err error) Verdict {
		return Verdict{Retry: errors.Is(err, errFlaky), CountsAgainst: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if retries != 2 {
		t.Fatalf("expected retry hook twice, got %d", retries)
	}
}

func TestDoReturnsLastErrorWhenAttemptsExhausted(t *testing.T) {
	exec := NewExecutor(fastPolicy())

	attempts := 0
	errFlaky := errors.New("flaky")
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		return errFlaky
	}, func(error) Verdict { return Verdict{Retry: true, CountsAgainst: true} })
	if !errors.Is(err, errFlaky) {
		t.Fatalf("expected flaky error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastPolicy())

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Do(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) Verdict { return Verdict{} })
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoOpensCircuitAfterFailures(t *testing.T) {
	policy := fastPolicy()
	policy.RetryMaxAttempts = 1
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 2
	policy.BreakerFailureRatio = 0.5
	policy.BreakerOpenTimeout = 50 * time.Millisecond
	policy.BreakerHalfOpenMaxCalls = 1

	var opened bool
	exec := NewExecutor(policy, WithBreakerHook(func(_ string, to gobreaker.State) {
		if to == gobreaker.StateOpen {
			opened = true
		}
	}))

	errDown := errors.New("down")
	countAgainst := func(error) Verdict { return Verdict{CountsAgainst: true} }
	for i := 0; i < 2; i++ {
		err := exec.Do(context.Background(), "op", func(context.Context) error { return errDown }, countAgainst)
		if !errors.Is(err, errDown) {
			t.Fatalf("expected down error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Do(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, countAgainst)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !opened {
		t.Fatalf("expected breaker hook to observe open state")
	}
}

func TestCallWithNilExecutorInvokesOnce(t *testing.T) {
	calls := 0
	got, err := Call(context.Background(), nil, "op", func(context.Context) (int, error) {
		calls++
		return 42, nil
	}, nil)
	if err != nil || got != 42 || calls != 1 {
		t.Fatalf("Call() = %d, %v after %d calls", got, err, calls)
	}
}

func TestCallReturnsValueAfterRetry(t *testing.T) {
	exec := NewExecutor(fastPolicy())
	calls := 0
	got, err := Call(context.Background(), exec, "op", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("again")
		}
		return "ok", nil
	}, func(error) Verdict { return Verdict{Retry: true} })
	if err != nil || got != "ok" {
		t.Fatalf("Call() = %q, %v", got, err)
	}
}
