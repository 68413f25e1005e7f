package errors

// Code is a machine-readable error code.
type Code string

// Configuration errors.
const (
	// CodeConfigMissing indicates a required configuration file does not exist.
	CodeConfigMissing Code = "CONFIG_MISSING"
	// CodeConfigParse indicates a configuration file could not be parsed.
	CodeConfigParse Code = "CONFIG_PARSE"
)

// Construction-time validation errors.
const (
	// CodeInvalidNode indicates a node declaration failed validation.
	CodeInvalidNode Code = "INVALID_NODE"
	// CodeInvalidPipeline indicates a pipeline could not be composed.
	CodeInvalidPipeline Code = "INVALID_PIPELINE"
)

// Catalog and loader resolution errors.
const (
	// CodeUnknownDataset indicates a dataset name is not in the catalog.
	CodeUnknownDataset Code = "UNKNOWN_DATASET"
	// CodeUnsupportedType indicates a catalog entry has an unknown type discriminator.
	CodeUnsupportedType Code = "UNSUPPORTED_TYPE"
	// CodeUnknownCredentials indicates a credentials key is not defined.
	CodeUnknownCredentials Code = "UNKNOWN_CREDENTIALS"
	// CodeUnsupportedDatabase indicates a SQL dataset names a database kind without a driver.
	CodeUnsupportedDatabase Code = "UNSUPPORTED_DATABASE"
	// CodeSQLFileMissing indicates a SQL dataset's query file does not exist.
	CodeSQLFileMissing Code = "SQL_FILE_MISSING"
)

// Run-time errors.
const (
	// CodeInputResolution indicates a node input was neither in memory nor loadable.
	CodeInputResolution Code = "INPUT_RESOLUTION_FAILED"
	// CodeMissingArgument indicates a function formal had no binding and no default.
	CodeMissingArgument Code = "MISSING_ARGUMENT"
	// CodeOutputMismatch indicates a function's return value did not match the
	// node's declared output shape.
	CodeOutputMismatch Code = "OUTPUT_MISMATCH"
	// CodeCancelled indicates the run was aborted by the caller.
	CodeCancelled Code = "CANCELLED"
)
