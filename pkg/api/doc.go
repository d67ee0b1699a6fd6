// Package api contains the public types of the botflow orchestrator:
// steps and their results, retry policies, hooks, and plugins.
//
// Application code normally imports the root botflow package, which
// re-exports everything here together with the Flow builder.
package api
