package api

import (
	"context"
	"fmt"
)

// FlowInfo identifies one run of a flow to plugins.
type FlowInfo struct {
	// RunID is unique per Execute call and doubles as the log
	// correlation id.
	RunID string

	// Name is the flow's declared name.
	Name string

	// Steps is the number of declared steps. A finish callback receiving
	// fewer results than Steps indicates a short-circuited run.
	Steps int
}

// Plugin observes flow lifecycle boundaries.
//
// OnFlowStart fires before the first step executes; OnFlowFinish fires
// exactly once per run after the last step completes, whether the run
// finished cleanly or was aborted by a step failure. A plugin may carry
// state between the two calls (a start timestamp, for instance); the engine
// guarantees OnFlowStart happens before OnFlowFinish for the same run.
//
// Plugins may additionally implement StepListener and FailureListener to
// observe per-step events.
type Plugin interface {
	Name() string
	OnFlowStart(ctx context.Context, flow FlowInfo) error
	OnFlowFinish(ctx context.Context, flow FlowInfo, results []StepResult) error
}

// StepListener is an optional plugin interface for per-step events.
// OnStepStart fires after before-hooks, OnStepFinish after after-hooks,
// both once per step regardless of retry attempts.
type StepListener interface {
	OnStepStart(ctx context.Context, flow FlowInfo, step Step, fc Context) error
	OnStepFinish(ctx context.Context, flow FlowInfo, step Step, result StepResult, fc Context) error
}

// FailureListener is an optional plugin interface notified once with the
// terminal error when a step exhausts its attempts.
type FailureListener interface {
	OnStepError(ctx context.Context, flow FlowInfo, step Step, err error, fc Context) error
}

// NopPlugin implements Plugin with no-ops. Embed it to pick only the
// callbacks you need.
type NopPlugin struct{}

func (NopPlugin) Name() string { return "" }

func (NopPlugin) OnFlowStart(context.Context, FlowInfo) error { return nil }

func (NopPlugin) OnFlowFinish(context.Context, FlowInfo, []StepResult) error { return nil }

// PluginManager holds the ordered plugin registry for a flow. Plugins are
// invoked in registration order at every lifecycle boundary. An error from
// any callback aborts the run immediately and propagates out of Execute.
type PluginManager struct {
	plugins []Plugin
}

// NewPluginManager returns an empty PluginManager.
func NewPluginManager() *PluginManager {
	return &PluginManager{}
}

// Register appends a plugin to the registry.
func (m *PluginManager) Register(p Plugin) {
	if p == nil {
		panic("botflow: nil plugin")
	}
	m.plugins = append(m.plugins, p)
}

// Len returns the number of registered plugins.
func (m *PluginManager) Len() int { return len(m.plugins) }

// Start invokes OnFlowStart on every plugin in registration order.
func (m *PluginManager) Start(ctx context.Context, flow FlowInfo) error {
	for _, p := range m.plugins {
		if err := p.OnFlowStart(ctx, flow); err != nil {
			return &PluginError{Plugin: pluginName(p), Event: "flow start", Err: err}
		}
	}
	return nil
}

// Finish invokes OnFlowFinish on every plugin in registration order.
func (m *PluginManager) Finish(ctx context.Context, flow FlowInfo, results []StepResult) error {
	for _, p := range m.plugins {
		if err := p.OnFlowFinish(ctx, flow, results); err != nil {
			return &PluginError{Plugin: pluginName(p), Event: "flow finish", Err: err}
		}
	}
	return nil
}

// StepStart notifies plugins implementing StepListener that a step is about
// to execute.
func (m *PluginManager) StepStart(ctx context.Context, flow FlowInfo, step Step, fc Context) error {
	for _, p := range m.plugins {
		l, ok := p.(StepListener)
		if !ok {
			continue
		}
		if err := l.OnStepStart(ctx, flow, step, fc); err != nil {
			return &PluginError{Plugin: pluginName(p), Event: "step start", Err: err}
		}
	}
	return nil
}

// StepFinish notifies plugins implementing StepListener of a finalized
// step result.
func (m *PluginManager) StepFinish(ctx context.Context, flow FlowInfo, step Step, result StepResult, fc Context) error {
	for _, p := range m.plugins {
		l, ok := p.(StepListener)
		if !ok {
			continue
		}
		if err := l.OnStepFinish(ctx, flow, step, result, fc); err != nil {
			return &PluginError{Plugin: pluginName(p), Event: "step finish", Err: err}
		}
	}
	return nil
}

// StepError notifies plugins implementing FailureListener that a step has
// exhausted its attempts.
func (m *PluginManager) StepError(ctx context.Context, flow FlowInfo, step Step, stepErr error, fc Context) error {
	for _, p := range m.plugins {
		l, ok := p.(FailureListener)
		if !ok {
			continue
		}
		if err := l.OnStepError(ctx, flow, step, stepErr, fc); err != nil {
			return &PluginError{Plugin: pluginName(p), Event: "step error", Err: err}
		}
	}
	return nil
}

func pluginName(p Plugin) string {
	if n := p.Name(); n != "" {
		return n
	}
	return fmt.Sprintf("%T", p)
}
