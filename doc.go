// Package botflow is a lightweight, embeddable orchestrator for sequential
// automations in Go.
//
// Botflow chains discrete units of work ("steps") and threads a shared
// result context between them. Cross-cutting concerns like retry-on-failure
// and lifecycle hooks are layered around plain execution logic, so that
// application code stays free of ad-hoc error handling and control flags.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Flow
//  2. Step
//  3. Context
//  4. RetryPolicy
//  5. Hooks and Plugins
//
// # Flow
//
// A Flow owns an ordered list of steps and drives the run loop. It is built
// with a fluent, accretive API and executed synchronously:
//
//	flow := botflow.New("DailyReport").
//	    Step(LoginStep{}).
//	    StepWithRetry(DownloadStep{},
//	        botflow.Retry(3).WithExponentialBackoff(time.Second, 30*time.Second).Policy()).
//	    Step(EmailStep{}).
//	    Use(botflow.NewLogPlugin(nil))
//
//	results, err := flow.Execute(ctx)
//
// Steps run strictly in declaration order. A failed step (after its retry
// attempts are exhausted) aborts the run by default; no later step executes.
// Step failures are data: they are expressed through the returned StepResult
// sequence, never through the error return. Execute returns an error only
// for infrastructure failures: invalid configuration, or an error raised by
// a hook or plugin.
//
// # Step
//
// A Step is one named unit of work:
//
//	type Step interface {
//	    Name() string
//	    Execute(ctx context.Context, fc botflow.Context) (any, error)
//	}
//
// The name must be unique within a flow; it is also the key under which the
// step's output lands in the shared context. NewStep adapts a plain function.
//
// # Context
//
// Each Execute call starts from a fresh, empty context. Every successful
// step contributes at most one entry, recorded under the step's name; steps
// read earlier entries through the read-only Context view and can never
// mutate them. No state leaks between runs of the same Flow value.
//
// # RetryPolicy
//
// A retry policy answers "may attempt N be retried, and after what delay?".
// FixedDelay waits a constant interval; ExponentialBackoff doubles the wait
// per retry with an optional cap and full jitter. A step without a policy
// attempts exactly once. The delay is a real, thread-blocking wait: a run
// occupies its calling goroutine for its whole duration, backoff included.
//
// # Hooks and Plugins
//
// Hooks are before/after callbacks fired around every step, in registration
// order, once per step (not per retry attempt). Plugins observe flow
// boundaries (start, finish) and may optionally observe per-step events.
// Both are trusted infrastructure code: an error from either aborts the run
// immediately and propagates out of Execute.
//
// Botflow ships three plugins: LogPlugin (structured slog records with a
// per-run correlation id), MetricsPlugin (atomic counters), and History
// (persists run summaries to memory, SQLite, or Redis).
//
// For complete programs, see the /examples directory.
package botflow
