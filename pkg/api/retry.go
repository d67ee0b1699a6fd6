package api

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryPolicy decides whether a failed attempt may be followed by another,
// and how long to wait before it.
//
// Attempt numbers are 1-based. The delay is applied only between attempts,
// never after the final one. Policies must be stateless per call so a single
// policy value can be shared across steps and across runs.
type RetryPolicy interface {
	// ShouldRetry reports whether another attempt is permitted after the
	// given attempt failed with err.
	ShouldRetry(attempt int, err error) bool

	// Delay returns how long to wait before the attempt that follows the
	// given one.
	Delay(attempt int) time.Duration
}

// FixedDelay retries with a constant wait between attempts.
//
//	policy := api.FixedDelay{MaxAttempts: 3, Wait: 2 * time.Second}
//
// MaxAttempts includes the first attempt: MaxAttempts = 1 means no retries.
type FixedDelay struct {
	MaxAttempts int
	Wait        time.Duration
}

func (p FixedDelay) ShouldRetry(attempt int, _ error) bool {
	return attempt < p.MaxAttempts
}

func (p FixedDelay) Delay(int) time.Duration { return p.Wait }

// Validate reports a configuration error if the policy can never run a step.
func (p FixedDelay) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("fixed delay: max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Wait < 0 {
		return fmt.Errorf("fixed delay: wait must not be negative, got %s", p.Wait)
	}
	return nil
}

// ExponentialBackoff doubles the wait for every retry.
//
// The delay before retry k (1-based) is min(Base * 2^(k-1), MaxWait); a
// MaxWait of zero means no cap. With Jitter enabled the computed delay is
// scaled by a uniformly random factor in [0, 1), drawn independently for
// every attempt, so many flows failing in lockstep do not retry in lockstep.
type ExponentialBackoff struct {
	MaxAttempts int
	Base        time.Duration
	MaxWait     time.Duration
	Jitter      bool
}

func (p ExponentialBackoff) ShouldRetry(attempt int, _ error) bool {
	return attempt < p.MaxAttempts
}

func (p ExponentialBackoff) Delay(attempt int) time.Duration {
	d := p.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxWait > 0 && d >= p.MaxWait {
			d = p.MaxWait
			break
		}
	}
	if p.MaxWait > 0 && d > p.MaxWait {
		d = p.MaxWait
	}
	if p.Jitter && d > 0 {
		d = time.Duration(rand.Float64() * float64(d))
	}
	return d
}

// Validate reports a configuration error if the policy can never run a step.
func (p ExponentialBackoff) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("exponential backoff: max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Base < 0 {
		return fmt.Errorf("exponential backoff: base must not be negative, got %s", p.Base)
	}
	if p.MaxWait < 0 {
		return fmt.Errorf("exponential backoff: max wait must not be negative, got %s", p.MaxWait)
	}
	return nil
}
