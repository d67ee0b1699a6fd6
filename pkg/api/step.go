package api

import (
	"context"
	"fmt"
	"time"
)

// StepStatus is the terminal state of one step within a run.
type StepStatus string

const (
	StatusSuccess StepStatus = "success"
	StatusFailure StepStatus = "failure"
	StatusSkipped StepStatus = "skipped"
)

// Step is one named unit of work in a flow.
//
// The name must be unique within a flow; it doubles as the key under which
// the step's output is recorded in the shared context. Execute receives the
// read view of the context as it stands when the step starts, and returns
// the data to record under the step's name. A nil output means the step
// succeeded without contributing a context entry.
type Step interface {
	Name() string
	Execute(ctx context.Context, fc Context) (any, error)
}

// Skipper is an optional interface a Step may implement to be skipped
// conditionally. When Skip returns true the engine records a skipped
// result and moves on; hooks and plugin step callbacks do not fire.
type Skipper interface {
	Skip(fc Context) bool
}

// StepFunc is the function form of a step body.
type StepFunc func(ctx context.Context, fc Context) (any, error)

// NewStep wraps a StepFunc into a Step with the given name.
func NewStep(name string, fn StepFunc) Step {
	if name == "" {
		panic("botflow: step name must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("botflow: step %q has nil function", name))
	}
	return &funcStep{name: name, fn: fn}
}

type funcStep struct {
	name string
	fn   StepFunc
}

func (s *funcStep) Name() string { return s.name }

func (s *funcStep) Execute(ctx context.Context, fc Context) (any, error) {
	return s.fn(ctx, fc)
}

// StepResult records the final outcome of one step for a run.
//
// It is produced exactly once per step by the engine, never by the step
// itself, and reflects the final attempt only. Duration spans the entire
// retry sequence for the step, inter-attempt sleeps included.
type StepResult struct {
	// Step is the name of the step this result belongs to.
	Step string

	// Status is success unless every permitted attempt failed.
	Status StepStatus

	// Output is the data the step returned on success.
	Output any

	// Err is the terminal error after attempts were exhausted.
	Err error

	// Duration is the wall-clock time of the whole attempt sequence.
	Duration time.Duration

	// Attempts is how many attempts were made, including the first.
	Attempts int
}

// Succeeded reports whether the step completed successfully.
func (r StepResult) Succeeded() bool { return r.Status == StatusSuccess }

func (r StepResult) String() string {
	return fmt.Sprintf("StepResult(step=%q, status=%s, attempts=%d, duration=%s)",
		r.Step, r.Status, r.Attempts, r.Duration)
}
