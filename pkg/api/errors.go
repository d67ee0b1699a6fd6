package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNilStep is reported when a flow declares a nil step.
	ErrNilStep = errors.New("nil step")

	// ErrEmptyStepName is reported when a step's name is empty.
	ErrEmptyStepName = errors.New("step name must not be empty")

	// ErrDuplicateStep is reported when two steps in one flow share a name.
	// Step names double as context keys, so they must be unique.
	ErrDuplicateStep = errors.New("duplicate step name")
)

// ConfigError describes an invalid flow configuration detected before any
// step executes. Execute returns it without running the flow.
type ConfigError struct {
	// Step is the name of the offending step, if attributable to one.
	Step string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("flow configuration: step %q: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("flow configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// HookError wraps an error raised inside a before or after hook. Hook
// errors are fatal for the run and propagate out of Execute unrecovered.
type HookError struct {
	// Phase is "before" or "after".
	Phase string
	// Step is the step the hook was running around.
	Step string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook for step %q: %v", e.Phase, e.Step, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// PluginError wraps an error raised inside a plugin callback. Plugin
// errors are fatal for the run and propagate out of Execute unrecovered.
type PluginError struct {
	// Plugin is the plugin's name, or its Go type when unnamed.
	Plugin string
	// Event is the lifecycle boundary that was being dispatched.
	Event string
	Err   error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s on %s: %v", e.Plugin, e.Event, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }
