package engine

import (
	"fmt"

	"github.com/petrijr/botflow/pkg/api"
)

// flowContext is the engine-owned mutable implementation of api.Context.
// Steps, hooks, and plugins only ever see it through the read interface;
// the engine holds the sole mutable handle and writes exactly one entry
// per successful step.
type flowContext struct {
	entries map[string]any
	order   []string
}

var _ api.Context = (*flowContext)(nil)

func newFlowContext() *flowContext {
	return &flowContext{entries: make(map[string]any)}
}

func (c *flowContext) Get(step string) (any, bool) {
	v, ok := c.entries[step]
	return v, ok
}

func (c *flowContext) MustGet(step string) any {
	v, ok := c.entries[step]
	if !ok {
		panic(fmt.Sprintf("botflow: no context entry for step %q", step))
	}
	return v
}

func (c *flowContext) Has(step string) bool {
	_, ok := c.entries[step]
	return ok
}

func (c *flowContext) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

func (c *flowContext) Len() int { return len(c.entries) }

// put records a step's output. Entries are never overwritten; the runner
// guarantees unique step names before the run starts.
func (c *flowContext) put(step string, v any) {
	if _, ok := c.entries[step]; ok {
		return
	}
	c.entries[step] = v
	c.order = append(c.order, step)
}
