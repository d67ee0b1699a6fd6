package botflow

import (
	"time"

	"github.com/petrijr/botflow/pkg/api"
)

// RetryBuilder provides a fluent way to construct retry policies for use
// with Flow.StepWithRetry or WithDefaultRetry.
type RetryBuilder struct {
	maxAttempts int
	exponential bool
	wait        time.Duration
	base        time.Duration
	maxWait     time.Duration
	jitter      bool
}

// Retry creates a RetryBuilder with the given maxAttempts.
//
// maxAttempts <= 0 is treated as 1 (no retries).
func Retry(maxAttempts int) RetryBuilder {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return RetryBuilder{maxAttempts: maxAttempts}
}

// WithFixedDelay configures a constant wait between retries.
//
// Example:
//
//	Retry(3).WithFixedDelay(2 * time.Second)
func (r RetryBuilder) WithFixedDelay(wait time.Duration) RetryBuilder {
	r.exponential = false
	r.wait = wait
	return r
}

// WithExponentialBackoff configures exponential backoff:
//
//   - base is the delay before the first retry.
//   - max caps the delay; if <= 0, there is no cap.
//
// The delay doubles on every retry until it hits the cap.
//
// Example:
//
//	Retry(5).WithExponentialBackoff(500*time.Millisecond, 30*time.Second)
func (r RetryBuilder) WithExponentialBackoff(base, max time.Duration) RetryBuilder {
	r.exponential = true
	r.base = base
	r.maxWait = max
	return r
}

// WithJitter scales each exponential delay by a uniformly random factor in
// [0, 1), drawn independently per attempt. Many flows failing in lockstep
// will then not retry in lockstep. It has no effect on fixed delays.
func (r RetryBuilder) WithJitter() RetryBuilder {
	r.jitter = true
	return r
}

// Immediate disables any wait between retries. Retries still respect
// maxAttempts.
func (r RetryBuilder) Immediate() RetryBuilder {
	r.exponential = false
	r.wait = 0
	return r
}

// Policy returns the configured RetryPolicy.
func (r RetryBuilder) Policy() api.RetryPolicy {
	if r.exponential {
		return api.ExponentialBackoff{
			MaxAttempts: r.maxAttempts,
			Base:        r.base,
			MaxWait:     r.maxWait,
			Jitter:      r.jitter,
		}
	}
	return api.FixedDelay{
		MaxAttempts: r.maxAttempts,
		Wait:        r.wait,
	}
}
