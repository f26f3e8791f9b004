package resilience

import (
	"math/rand/v2"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Policy bounds retries and breaker behaviour for one executor. Zero fields
// fall back to DefaultPolicy.
type Policy struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64
	// RetryJitter spreads each wait by up to this fraction in either direction.
	RetryJitter float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

func DefaultPolicy() Policy {
	return Policy{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 200 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Second,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

// Backoff returns the wait before retry number attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := float64(p.RetryInitialBackoff)
	for i := 1; i < attempt && wait < float64(p.RetryMaxBackoff); i++ {
		wait *= p.RetryMultiplier
	}
	if p.RetryJitter > 0 {
		wait += wait * p.RetryJitter * (2*rand.Float64() - 1)
	}
	return min(time.Duration(wait), p.RetryMaxBackoff)
}

// shouldTrip opens the breaker once enough requests were seen and the failure
// ratio reaches the threshold.
func (p Policy) shouldTrip(counts gobreaker.Counts) bool {
	if counts.Requests < p.BreakerMinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= p.BreakerFailureRatio
}

func (p Policy) normalize() Policy {
	def := DefaultPolicy()

	p.RetryMaxAttempts = positiveOr(p.RetryMaxAttempts, def.RetryMaxAttempts)
	p.RetryInitialBackoff = positiveOr(p.RetryInitialBackoff, def.RetryInitialBackoff)
	p.RetryMaxBackoff = max(positiveOr(p.RetryMaxBackoff, def.RetryMaxBackoff), p.RetryInitialBackoff)
	if p.RetryMultiplier < 1.0 {
		p.RetryMultiplier = def.RetryMultiplier
	}
	p.RetryJitter = min(max(p.RetryJitter, 0), 1)

	p.BreakerMinRequests = positiveOr(p.BreakerMinRequests, def.BreakerMinRequests)
	if p.BreakerFailureRatio <= 0 || p.BreakerFailureRatio > 1 {
		p.BreakerFailureRatio = def.BreakerFailureRatio
	}
	p.BreakerOpenTimeout = positiveOr(p.BreakerOpenTimeout, def.BreakerOpenTimeout)
	p.BreakerHalfOpenMaxCalls = positiveOr(p.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)
	return p
}

func positiveOr[T int | uint32 | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}
