package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/botflow/pkg/api"
)

// StepDefinition pairs a step with its retry policy. A nil policy falls
// back to the flow's default; if that is nil too, the step gets exactly
// one attempt.
type StepDefinition struct {
	Step  api.Step
	Retry api.RetryPolicy
}

// FlowDefinition is the static configuration of a flow, assembled by the
// builder in the root package.
type FlowDefinition struct {
	Name          string
	Steps         []StepDefinition
	DefaultRetry  api.RetryPolicy
	StopOnFailure bool
}

// Runner drives one flow definition. It holds only static configuration,
// so a single Runner may be reused across sequential runs; every Run call
// starts from a fresh context and result sequence.
type Runner struct {
	def     FlowDefinition
	hooks   *api.HookManager
	plugins *api.PluginManager
}

// NewRunner creates a Runner over the given definition. Nil managers are
// replaced with empty ones.
func NewRunner(def FlowDefinition, hooks *api.HookManager, plugins *api.PluginManager) *Runner {
	if hooks == nil {
		hooks = api.NewHookManager()
	}
	if plugins == nil {
		plugins = api.NewPluginManager()
	}
	return &Runner{def: def, hooks: hooks, plugins: plugins}
}

// Run executes the flow's steps in declaration order.
//
// Step failures are contained: they are expressed through the returned
// result sequence, and with StopOnFailure set (the default) a failed step
// aborts the run without executing the steps after it. The returned error
// is non-nil only for infrastructure failures: invalid configuration, or
// an error raised by a hook or plugin callback.
func (r *Runner) Run(ctx context.Context) ([]api.StepResult, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	flow := api.FlowInfo{
		RunID: uuid.NewString(),
		Name:  r.def.Name,
		Steps: len(r.def.Steps),
	}

	fc := newFlowContext()
	results := make([]api.StepResult, 0, len(r.def.Steps))

	if err := r.plugins.Start(ctx, flow); err != nil {
		return nil, err
	}

	for _, sd := range r.def.Steps {
		step := sd.Step

		if sk, ok := step.(api.Skipper); ok && sk.Skip(fc) {
			results = append(results, api.StepResult{
				Step:   step.Name(),
				Status: api.StatusSkipped,
			})
			continue
		}

		if err := r.hooks.RunBefore(ctx, step, fc); err != nil {
			return results, err
		}
		if err := r.plugins.StepStart(ctx, flow, step, fc); err != nil {
			return results, err
		}

		policy := sd.Retry
		if policy == nil {
			policy = r.def.DefaultRetry
		}

		result, err := r.runStep(ctx, flow, step, policy, fc)
		if err != nil {
			return results, err
		}

		// After-hooks and step-finish plugins see the context without the
		// step's own output; the output reaches them through the result.
		if err := r.hooks.RunAfter(ctx, step, result, fc); err != nil {
			return results, err
		}
		if err := r.plugins.StepFinish(ctx, flow, step, result, fc); err != nil {
			return results, err
		}

		results = append(results, result)

		if result.Status == api.StatusSuccess {
			if result.Output != nil {
				fc.put(step.Name(), result.Output)
			}
			continue
		}

		if r.def.StopOnFailure {
			break
		}
	}

	if err := r.plugins.Finish(ctx, flow, results); err != nil {
		return results, err
	}
	return results, nil
}

// runStep executes one step's full attempt sequence and produces its
// StepResult. The result's duration spans every attempt plus the sleeps
// between them. The returned error is non-nil only when a FailureListener
// plugin fails.
func (r *Runner) runStep(ctx context.Context, flow api.FlowInfo, step api.Step, policy api.RetryPolicy, fc *flowContext) (api.StepResult, error) {
	start := time.Now()

	for attempt := 1; ; attempt++ {
		out, err := step.Execute(ctx, fc)
		if err == nil {
			return api.StepResult{
				Step:     step.Name(),
				Status:   api.StatusSuccess,
				Output:   out,
				Duration: time.Since(start),
				Attempts: attempt,
			}, nil
		}

		if policy != nil && policy.ShouldRetry(attempt, err) {
			if serr := sleep(ctx, policy.Delay(attempt)); serr == nil {
				continue
			} else {
				// Cancelled mid-backoff: the cancellation becomes the
				// step's terminal error.
				err = serr
			}
		}

		result := api.StepResult{
			Step:     step.Name(),
			Status:   api.StatusFailure,
			Err:      err,
			Duration: time.Since(start),
			Attempts: attempt,
		}
		if perr := r.plugins.StepError(ctx, flow, step, err, fc); perr != nil {
			return result, perr
		}
		return result, nil
	}
}

func (r *Runner) validate() error {
	if err := validatePolicy(r.def.DefaultRetry); err != nil {
		return &api.ConfigError{Err: err}
	}

	seen := make(map[string]struct{}, len(r.def.Steps))
	for _, sd := range r.def.Steps {
		if sd.Step == nil {
			return &api.ConfigError{Err: api.ErrNilStep}
		}
		name := sd.Step.Name()
		if name == "" {
			return &api.ConfigError{Err: api.ErrEmptyStepName}
		}
		if _, dup := seen[name]; dup {
			return &api.ConfigError{Step: name, Err: api.ErrDuplicateStep}
		}
		seen[name] = struct{}{}

		if err := validatePolicy(sd.Retry); err != nil {
			return &api.ConfigError{Step: name, Err: err}
		}
	}
	return nil
}

func validatePolicy(p api.RetryPolicy) error {
	if p == nil {
		return nil
	}
	if v, ok := p.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

// sleep blocks the run for the inter-attempt delay. It honors context
// cancellation, the only way a run can be interrupted from outside.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still surface a cancellation that happened before the retry.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
