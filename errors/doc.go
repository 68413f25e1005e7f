// Package errors provides the coded error type shared by all flowkit
// packages. Every failure the framework can produce carries a machine-
// readable code, optional structured details, and a cause chain that
// unwraps with the standard library errors package.
package errors
