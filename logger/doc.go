// Package logger provides structured logging for flowkit built on zerolog.
//
// It exposes a small wrapper with console and JSON output, a global logger
// for package-level convenience, and a field vocabulary for pipeline runs
// (run id, node, dataset, duration).
package logger
