// Package runner executes pipelines: it selects nodes, resolves their
// inputs against the run's data environment with catalog fallback,
// resolves parameter bindings, matches arguments to function signatures,
// and captures outputs.
//
// Execution is single-threaded and deterministic: nodes run strictly in
// the selector's output order, and a node failure aborts the remaining
// plan. The partial environment is always returned alongside the error.
package runner
