package api

import "context"

// BeforeHook runs before each step. It sees the context as it stands before
// the step executes.
type BeforeHook func(ctx context.Context, step Step, fc Context) error

// AfterHook runs after each step's attempt sequence has finished. It sees
// the finalized StepResult, and the context as it stands before the step's
// own output is merged in; the step's output is only visible through the
// result argument.
type AfterHook func(ctx context.Context, step Step, result StepResult, fc Context) error

// HookManager holds the ordered before/after hook registries for a flow.
//
// Hooks fire once per step (not once per retry attempt), synchronously, in
// registration order. An error from a hook aborts the run immediately and
// propagates out of Execute; hooks are trusted infrastructure code and are
// never retried.
type HookManager struct {
	before []BeforeHook
	after  []AfterHook
}

// NewHookManager returns an empty HookManager.
func NewHookManager() *HookManager {
	return &HookManager{}
}

// Before appends a hook to run before each step.
func (m *HookManager) Before(fn BeforeHook) {
	if fn == nil {
		panic("botflow: nil before hook")
	}
	m.before = append(m.before, fn)
}

// After appends a hook to run after each step.
func (m *HookManager) After(fn AfterHook) {
	if fn == nil {
		panic("botflow: nil after hook")
	}
	m.after = append(m.after, fn)
}

// RunBefore invokes every before hook in registration order.
func (m *HookManager) RunBefore(ctx context.Context, step Step, fc Context) error {
	for _, fn := range m.before {
		if err := fn(ctx, step, fc); err != nil {
			return &HookError{Phase: "before", Step: step.Name(), Err: err}
		}
	}
	return nil
}

// RunAfter invokes every after hook in registration order.
func (m *HookManager) RunAfter(ctx context.Context, step Step, result StepResult, fc Context) error {
	for _, fn := range m.after {
		if err := fn(ctx, step, result, fc); err != nil {
			return &HookError{Phase: "after", Step: step.Name(), Err: err}
		}
	}
	return nil
}
