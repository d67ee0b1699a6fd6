package botflow

import (
	"context"
	"time"

	"github.com/petrijr/botflow/pkg/api"
)

// SkipIf wraps a step so it is skipped whenever cond returns true for the
// context as it stands when the step's turn comes. A skipped step records
// a skipped result and contributes no context entry.
//
//	flow.Step(botflow.SkipIf(emailStep, func(fc botflow.Context) bool {
//	    return !fc.Has("Download")
//	}))
func SkipIf(step api.Step, cond func(fc api.Context) bool) api.Step {
	if step == nil {
		panic("botflow: nil step")
	}
	if cond == nil {
		panic("botflow: nil skip condition")
	}
	return &skippableStep{Step: step, cond: cond}
}

type skippableStep struct {
	api.Step
	cond func(fc api.Context) bool
}

func (s *skippableStep) Skip(fc api.Context) bool { return s.cond(fc) }

// SleepStep returns a step that waits for the given duration and produces
// no output. It is context-aware: if the context is cancelled during the
// sleep, the step fails with ctx.Err.
func SleepStep(name string, d time.Duration) api.Step {
	return api.NewStep(name, func(ctx context.Context, _ api.Context) (any, error) {
		if d <= 0 {
			return nil, nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, nil
		}
	})
}
