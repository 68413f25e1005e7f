package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the framework error type.
type Error struct {
	// Code is a machine-readable error code.
	Code Code `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of err, walking the wrap chain. Errors that do
// not carry a framework code report the empty Code.
func CodeOf(err error) Code {
	var fe *Error
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// HasCode reports whether err or any error in its chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var fe *Error
		if !stderrors.As(err, &fe) {
			return false
		}
		if fe.Code == code {
			return true
		}
		err = fe.Cause
	}
	return false
}

// --- Constructors, one per taxonomy entry ---

// ConfigMissing reports an absent configuration file.
func ConfigMissing(path string) *Error {
	return Newf(CodeConfigMissing, "configuration file %s does not exist", path).
		WithDetail("path", path)
}

// ConfigParse reports a malformed configuration file. The message leads
// with the path so parser diagnostics stay attributable.
func ConfigParse(path string, cause error) *Error {
	return Newf(CodeConfigParse, "failed to parse %s", path).
		WithDetail("path", path).WithCause(cause)
}

// InvalidNode reports a node declaration that failed validation.
func InvalidNode(reason string) *Error {
	return Newf(CodeInvalidNode, "invalid node: %s", reason)
}

// InvalidPipeline reports a pipeline that could not be composed.
func InvalidPipeline(reason string) *Error {
	return Newf(CodeInvalidPipeline, "invalid pipeline: %s", reason)
}

// UnknownDataset reports a dataset name absent from the catalog.
func UnknownDataset(name, catalogPath string) *Error {
	return Newf(CodeUnknownDataset, "dataset %q not found in catalog %s", name, catalogPath).
		WithDetail("dataset", name).WithDetail("catalog", catalogPath)
}

// UnsupportedType reports a catalog entry with an unknown type discriminator.
func UnsupportedType(name, datasetType string) *Error {
	return Newf(CodeUnsupportedType, "dataset %q has unsupported type %q", name, datasetType).
		WithDetail("dataset", name).WithDetail("type", datasetType)
}

// UnknownCredentials reports a credentials key absent from the credentials file.
func UnknownCredentials(key, path string) *Error {
	return Newf(CodeUnknownCredentials, "credentials key %q not found in %s", key, path).
		WithDetail("key", key).WithDetail("path", path)
}

// UnsupportedDatabase reports a SQL dataset naming a database kind without a driver.
func UnsupportedDatabase(kind string) *Error {
	return Newf(CodeUnsupportedDatabase, "unsupported database kind %q", kind).
		WithDetail("database", kind)
}

// SQLFileMissing reports an absent SQL query file.
func SQLFileMissing(path string) *Error {
	return Newf(CodeSQLFileMissing, "sql file %s does not exist", path).
		WithDetail("path", path)
}

// InputResolution reports a node input that was neither in memory nor loadable.
func InputResolution(node, ref string, cause error) *Error {
	return Newf(CodeInputResolution, "node %q: could not resolve input %q", node, ref).
		WithDetail("node", node).WithDetail("ref", ref).WithCause(cause)
}

// MissingArgument reports a function formal with no binding and no default.
func MissingArgument(node, arg string) *Error {
	return Newf(CodeMissingArgument, "node %q: no value for argument %q", node, arg).
		WithDetail("node", node).WithDetail("argument", arg)
}

// OutputMismatch reports a return value that does not match the declared outputs.
func OutputMismatch(node, reason string) *Error {
	return Newf(CodeOutputMismatch, "node %q: %s", node, reason).
		WithDetail("node", node)
}

// Cancelled reports a run aborted by the caller.
func Cancelled(node string, cause error) *Error {
	return Newf(CodeCancelled, "run cancelled at node %q", node).
		WithDetail("node", node).WithCause(cause)
}
