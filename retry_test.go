package botflow

import (
	"testing"
	"time"

	"github.com/petrijr/botflow/pkg/api"
)

// Ensure non-positive maxAttempts is normalized to 1.
func TestRetry_NonPositiveMaxAttemptsDefaultsToOne(t *testing.T) {
	p, ok := Retry(0).Policy().(api.FixedDelay)
	if !ok {
		t.Fatalf("expected FixedDelay, got %T", Retry(0).Policy())
	}
	if p.MaxAttempts != 1 {
		t.Fatalf("expected MaxAttempts=1 for Retry(0), got %d", p.MaxAttempts)
	}

	p = Retry(-5).Policy().(api.FixedDelay)
	if p.MaxAttempts != 1 {
		t.Fatalf("expected MaxAttempts=1 for Retry(-5), got %d", p.MaxAttempts)
	}
}

// Ensure WithFixedDelay produces a FixedDelay with the configured wait.
func TestRetry_WithFixedDelay(t *testing.T) {
	p, ok := Retry(3).WithFixedDelay(2 * time.Second).Policy().(api.FixedDelay)
	if !ok {
		t.Fatal("expected a FixedDelay policy")
	}
	if p.MaxAttempts != 3 {
		t.Fatalf("expected MaxAttempts=3, got %d", p.MaxAttempts)
	}
	if p.Wait != 2*time.Second {
		t.Fatalf("expected Wait=2s, got %v", p.Wait)
	}
}

// Ensure WithExponentialBackoff wires base, cap and jitter correctly.
func TestRetry_WithExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	max := 2 * time.Second

	p, ok := Retry(5).WithExponentialBackoff(base, max).Policy().(api.ExponentialBackoff)
	if !ok {
		t.Fatal("expected an ExponentialBackoff policy")
	}
	if p.MaxAttempts != 5 {
		t.Fatalf("expected MaxAttempts=5, got %d", p.MaxAttempts)
	}
	if p.Base != base {
		t.Fatalf("expected Base=%v, got %v", base, p.Base)
	}
	if p.MaxWait != max {
		t.Fatalf("expected MaxWait=%v, got %v", max, p.MaxWait)
	}
	if p.Jitter {
		t.Fatal("jitter must be off unless requested")
	}

	p = Retry(5).WithExponentialBackoff(base, max).WithJitter().Policy().(api.ExponentialBackoff)
	if !p.Jitter {
		t.Fatal("expected jitter to be enabled")
	}
}

// Ensure Immediate resets any previously configured wait and strategy.
func TestRetry_ImmediateOverridesEarlierConfiguration(t *testing.T) {
	p, ok := Retry(4).
		WithExponentialBackoff(time.Second, time.Minute).
		Immediate().
		Policy().(api.FixedDelay)
	if !ok {
		t.Fatal("expected Immediate to produce a FixedDelay policy")
	}
	if p.Wait != 0 {
		t.Fatalf("expected zero wait, got %v", p.Wait)
	}
	if p.MaxAttempts != 4 {
		t.Fatalf("expected MaxAttempts=4, got %d", p.MaxAttempts)
	}
}

// The builder is a value type; branching off one base must not mutate it.
func TestRetry_BuilderIsImmutable(t *testing.T) {
	base := Retry(3)
	_ = base.WithExponentialBackoff(time.Second, 0)

	p := base.Policy().(api.FixedDelay)
	if p.Wait != 0 {
		t.Fatalf("base builder was mutated: got Wait=%v", p.Wait)
	}
}

// A builder-produced policy must pass engine validation.
func TestRetry_PoliciesValidate(t *testing.T) {
	policies := []api.RetryPolicy{
		Retry(3).WithFixedDelay(time.Second).Policy(),
		Retry(5).WithExponentialBackoff(100*time.Millisecond, time.Minute).Policy(),
		Retry(2).Immediate().Policy(),
	}
	for _, p := range policies {
		v, ok := p.(interface{ Validate() error })
		if !ok {
			t.Fatalf("policy %T has no Validate", p)
		}
		if err := v.Validate(); err != nil {
			t.Fatalf("policy %T failed validation: %v", p, err)
		}
	}
}
