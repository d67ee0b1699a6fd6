package botflow

import (
	"context"
	"fmt"

	"github.com/petrijr/botflow/internal/engine"
	"github.com/petrijr/botflow/pkg/api"
)

// Flow aggregates a name, an ordered list of (step, retry policy) pairs,
// one HookManager, and one PluginManager. Build it with the fluent API:
//
//	flow := botflow.New("Backup").
//	    Step(dumpStep).
//	    StepWithRetry(uploadStep, botflow.FixedDelay{MaxAttempts: 3, Wait: time.Second}).
//	    Use(botflow.NewLogPlugin(nil))
//
//	results, err := flow.Execute(ctx)
//
// A Flow holds static configuration only. Sequential runs of the same Flow
// are independent; overlapping concurrent runs of one Flow value are not
// supported.
type Flow struct {
	name          string
	steps         []engine.StepDefinition
	hooks         *api.HookManager
	plugins       *api.PluginManager
	defaultRetry  api.RetryPolicy
	stopOnFailure bool
}

// Option configures a Flow at construction time.
type Option func(*Flow)

// WithDefaultRetry sets a retry policy applied to every step that has no
// policy of its own.
func WithDefaultRetry(policy api.RetryPolicy) Option {
	return func(f *Flow) { f.defaultRetry = policy }
}

// WithContinueOnFailure makes the flow keep executing subsequent steps
// after one fails. The default is to stop on the first failed step.
func WithContinueOnFailure() Option {
	return func(f *Flow) { f.stopOnFailure = false }
}

// New creates an empty Flow with the given name.
func New(name string, opts ...Option) *Flow {
	f := &Flow{
		name:          name,
		hooks:         api.NewHookManager(),
		plugins:       api.NewPluginManager(),
		stopOnFailure: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the flow's name.
func (f *Flow) Name() string { return f.name }

// Len returns the number of declared steps.
func (f *Flow) Len() int { return len(f.steps) }

// Step appends a step with no retry policy of its own. It returns the flow
// for chaining.
func (f *Flow) Step(step api.Step) *Flow {
	if step == nil {
		panic("botflow: nil step")
	}
	f.steps = append(f.steps, engine.StepDefinition{Step: step})
	return f
}

// StepWithRetry appends a step with its own retry policy.
func (f *Flow) StepWithRetry(step api.Step, retry api.RetryPolicy) *Flow {
	if step == nil {
		panic("botflow: nil step")
	}
	f.steps = append(f.steps, engine.StepDefinition{Step: step, Retry: retry})
	return f
}

// StepFunc is a convenience for appending a function step.
func (f *Flow) StepFunc(name string, fn api.StepFunc) *Flow {
	return f.Step(api.NewStep(name, fn))
}

// Use registers a plugin. It returns the flow for chaining.
func (f *Flow) Use(p api.Plugin) *Flow {
	f.plugins.Register(p)
	return f
}

// BeforeEach registers a hook fired before every step.
func (f *Flow) BeforeEach(fn api.BeforeHook) *Flow {
	f.hooks.Before(fn)
	return f
}

// AfterEach registers a hook fired after every step.
func (f *Flow) AfterEach(fn api.AfterHook) *Flow {
	f.hooks.After(fn)
	return f
}

// Hooks exposes the flow's hook manager for direct registration.
func (f *Flow) Hooks() *api.HookManager { return f.hooks }

// Plugins exposes the flow's plugin manager.
func (f *Flow) Plugins() *api.PluginManager { return f.plugins }

// Execute runs the steps in declaration order and returns one StepResult
// per executed step, in that order.
//
// Each call starts from a fresh, empty context. Step failures never
// surface through the error return; inspect the results' Status instead.
// A run that stopped early is recognizable by a result sequence shorter
// than Len(). The error return covers configuration problems (duplicate
// or empty step names, invalid retry policies) and errors raised by hooks
// or plugins; those abort the run immediately.
func (f *Flow) Execute(ctx context.Context) ([]api.StepResult, error) {
	r := engine.NewRunner(engine.FlowDefinition{
		Name:          f.name,
		Steps:         f.steps,
		DefaultRetry:  f.defaultRetry,
		StopOnFailure: f.stopOnFailure,
	}, f.hooks, f.plugins)
	return r.Run(ctx)
}

func (f *Flow) String() string {
	return fmt.Sprintf("Flow(name=%q, steps=%d)", f.name, len(f.steps))
}
