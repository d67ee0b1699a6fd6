package api

// Context is the read view of the shared result context handed to steps,
// hooks, and plugins during a flow run.
//
// The context maps a step name to the output that step produced. It starts
// empty and gains at most one entry per completed step, in execution order.
// Entries are never removed or overwritten within a run, and a fresh context
// is created for every Execute call.
//
// Only the engine holds a mutable handle; a step contributes its own entry
// exclusively through its return value.
type Context interface {
	// Get returns the output recorded under the given step name.
	Get(step string) (any, bool)

	// MustGet is like Get but panics if no entry exists. Intended for steps
	// that declare a hard dependency on an earlier step.
	MustGet(step string) any

	// Has reports whether an entry exists for the given step name.
	Has(step string) bool

	// Keys returns the recorded step names in execution order.
	Keys() []string

	// Len returns the number of recorded entries.
	Len() int
}
