package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/botflow/pkg/api"
)

func step(name string, fn api.StepFunc) StepDefinition {
	return StepDefinition{Step: api.NewStep(name, fn)}
}

func stepWithRetry(name string, fn api.StepFunc, p api.RetryPolicy) StepDefinition {
	return StepDefinition{Step: api.NewStep(name, fn), Retry: p}
}

func okStep(name string, output any) StepDefinition {
	return step(name, func(context.Context, api.Context) (any, error) {
		return output, nil
	})
}

func newTestRunner(def FlowDefinition) *Runner {
	return NewRunner(def, nil, nil)
}

func TestRun_AllStepsSucceedInOrder(t *testing.T) {
	var cKeys []string
	r := newTestRunner(FlowDefinition{
		Name:          "happy",
		StopOnFailure: true,
		Steps: []StepDefinition{
			okStep("A", map[string]any{"user": "admin"}),
			okStep("B", 42),
			step("C", func(_ context.Context, fc api.Context) (any, error) {
				cKeys = fc.Keys()
				return "done", nil
			}),
		},
	})

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "A", results[0].Step)
	assert.Equal(t, "B", results[1].Step)
	assert.Equal(t, "C", results[2].Step)
	for _, res := range results {
		assert.Equal(t, api.StatusSuccess, res.Status)
		assert.Equal(t, 1, res.Attempts)
		assert.NoError(t, res.Err)
	}

	// C sees exactly its predecessors, in execution order.
	assert.Equal(t, []string{"A", "B"}, cKeys)
	assert.Equal(t, map[string]any{"user": "admin"}, results[0].Output)
	assert.Equal(t, 42, results[1].Output)
}

func TestRun_FailFastStopsAtFirstFailure(t *testing.T) {
	cRan := false
	var bSawKeys []string

	r := newTestRunner(FlowDefinition{
		Name:          "failing",
		StopOnFailure: true,
		Steps: []StepDefinition{
			okStep("A", "a-data"),
			stepWithRetry("B", func(_ context.Context, fc api.Context) (any, error) {
				bSawKeys = fc.Keys()
				return nil, errors.New("persistent failure")
			}, api.FixedDelay{MaxAttempts: 3}),
			step("C", func(context.Context, api.Context) (any, error) {
				cRan = true
				return nil, nil
			}),
		},
	})

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	// Two results only: the aborted run is recognizable by the short
	// sequence.
	require.Len(t, results, 2)
	assert.Equal(t, api.StatusSuccess, results[0].Status)
	assert.Equal(t, api.StatusFailure, results[1].Status)
	assert.EqualError(t, results[1].Err, "persistent failure")
	assert.Equal(t, 3, results[1].Attempts)
	assert.False(t, cRan)

	// B only ever saw A's entry; its own failure contributed nothing.
	assert.Equal(t, []string{"A"}, bSawKeys)
}

func TestRun_StepWithoutPolicyAttemptsExactlyOnce(t *testing.T) {
	calls := 0
	r := newTestRunner(FlowDefinition{
		Name:          "no-retry",
		StopOnFailure: true,
		Steps: []StepDefinition{
			step("flaky", func(context.Context, api.Context) (any, error) {
				calls++
				return nil, errors.New("boom")
			}),
		},
	})

	start := time.Now()
	results, err := r.Run(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, api.StatusFailure, results[0].Status)
	assert.Equal(t, 1, results[0].Attempts)
	assert.Equal(t, 1, calls)
	// No retry means no backoff sleep.
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestRun_DefaultRetryAppliesToStepsWithoutOwnPolicy(t *testing.T) {
	calls := 0
	r := newTestRunner(FlowDefinition{
		Name:          "default-retry",
		StopOnFailure: true,
		DefaultRetry:  api.FixedDelay{MaxAttempts: 2},
		Steps: []StepDefinition{
			step("flaky", func(context.Context, api.Context) (any, error) {
				calls++
				if calls < 2 {
					return nil, errors.New("first try fails")
				}
				return "ok", nil
			}),
		},
	})

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, api.StatusSuccess, results[0].Status)
	assert.Equal(t, 2, results[0].Attempts)
}

func TestRun_OwnPolicyOverridesDefault(t *testing.T) {
	calls := 0
	r := newTestRunner(FlowDefinition{
		Name:          "override",
		StopOnFailure: true,
		DefaultRetry:  api.FixedDelay{MaxAttempts: 5},
		Steps: []StepDefinition{
			stepWithRetry("once", func(context.Context, api.Context) (any, error) {
				calls++
				return nil, errors.New("boom")
			}, api.FixedDelay{MaxAttempts: 1}),
		},
	})

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, api.StatusFailure, results[0].Status)
}

func TestRun_ContinueOnFailureExecutesRemainingSteps(t *testing.T) {
	r := newTestRunner(FlowDefinition{
		Name:          "lenient",
		StopOnFailure: false,
		Steps: []StepDefinition{
			okStep("A", "a"),
			step("B", func(context.Context, api.Context) (any, error) {
				return nil, errors.New("b failed")
			}),
			step("C", func(_ context.Context, fc api.Context) (any, error) {
				// B failed, so its entry must be absent.
				return fc.Has("B"), nil
			}),
		},
	})

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, api.StatusSuccess, results[0].Status)
	assert.Equal(t, api.StatusFailure, results[1].Status)
	assert.Equal(t, api.StatusSuccess, results[2].Status)
	assert.Equal(t, false, results[2].Output)
}

func TestRun_NilOutputContributesNoContextEntry(t *testing.T) {
	r := newTestRunner(FlowDefinition{
		Name:          "nil-output",
		StopOnFailure: true,
		Steps: []StepDefinition{
			okStep("quiet", nil),
			step("probe", func(_ context.Context, fc api.Context) (any, error) {
				return fc.Has("quiet"), nil
			}),
		},
	})

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.StatusSuccess, results[0].Status)
	assert.Equal(t, false, results[1].Output)
}

func TestRun_FreshContextPerRun(t *testing.T) {
	var lens []int
	r := newTestRunner(FlowDefinition{
		Name:          "reusable",
		StopOnFailure: true,
		Steps: []StepDefinition{
			step("A", func(_ context.Context, fc api.Context) (any, error) {
				lens = append(lens, fc.Len())
				return "data", nil
			}),
		},
	})

	for range 3 {
		_, err := r.Run(context.Background())
		require.NoError(t, err)
	}

	// The context starts empty on every run; nothing leaks between runs.
	assert.Equal(t, []int{0, 0, 0}, lens)
}

func TestRun_EmptyFlowCompletesWithNoResults(t *testing.T) {
	r := newTestRunner(FlowDefinition{Name: "empty", StopOnFailure: true})

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRun_SkippedStepBypassesExecution(t *testing.T) {
	executed := false
	r := newTestRunner(FlowDefinition{
		Name:          "skipping",
		StopOnFailure: true,
		Steps: []StepDefinition{
			okStep("A", "a"),
			{Step: &alwaysSkipStep{name: "B", executed: &executed}},
			step("C", func(_ context.Context, fc api.Context) (any, error) {
				return fc.Has("B"), nil
			}),
		},
	})

	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, api.StatusSkipped, results[1].Status)
	assert.False(t, executed)
	// Skipped steps contribute nothing to the context.
	assert.Equal(t, false, results[2].Output)
}

type alwaysSkipStep struct {
	name     string
	executed *bool
}

func (s *alwaysSkipStep) Name() string { return s.name }

func (s *alwaysSkipStep) Execute(context.Context, api.Context) (any, error) {
	*s.executed = true
	return nil, nil
}

func (s *alwaysSkipStep) Skip(api.Context) bool { return true }

// Mirrors the canonical report pipeline: Login succeeds; Download fails
// twice and succeeds on the third attempt under exponential backoff; Email
// reads Download's output. The run's elapsed time must cover both computed
// backoff delays, and Download's duration must span its whole attempt
// sequence.
func TestRun_BackoffTimingAndDurationSpanAttemptSequence(t *testing.T) {
	base := 30 * time.Millisecond
	policy := api.ExponentialBackoff{MaxAttempts: 3, Base: base, MaxWait: time.Second}

	attempts := 0
	var emailInput any
	r := newTestRunner(FlowDefinition{
		Name:          "report",
		StopOnFailure: true,
		Steps: []StepDefinition{
			okStep("Login", map[string]any{"usuario": "admin"}),
			stepWithRetry("Download", func(context.Context, api.Context) (any, error) {
				attempts++
				if attempts < 3 {
					return nil, errors.New("connection reset")
				}
				return "report.csv", nil
			}, policy),
			step("Email", func(_ context.Context, fc api.Context) (any, error) {
				emailInput = fc.MustGet("Download")
				return nil, nil
			}),
		},
	})

	start := time.Now()
	results, err := r.Run(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, api.StatusSuccess, res.Status)
	}
	assert.Equal(t, 3, results[1].Attempts)
	assert.Equal(t, "report.csv", emailInput)

	// delay(1) + delay(2) = base + 2*base.
	minElapsed := 3 * base
	assert.GreaterOrEqual(t, elapsed, minElapsed)
	assert.GreaterOrEqual(t, results[1].Duration, minElapsed)
}

func TestRun_CancellationDuringBackoffFailsTheStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := newTestRunner(FlowDefinition{
		Name:          "cancelled",
		StopOnFailure: true,
		Steps: []StepDefinition{
			stepWithRetry("slow", func(context.Context, api.Context) (any, error) {
				cancel()
				return nil, errors.New("transient")
			}, api.FixedDelay{MaxAttempts: 5, Wait: 10 * time.Second}),
		},
	})

	start := time.Now()
	results, err := r.Run(ctx)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, api.StatusFailure, results[0].Status)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	// The 10s backoff was interrupted.
	assert.Less(t, elapsed, time.Second)
}
