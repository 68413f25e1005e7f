// Package datasource turns catalog entries into in-memory tables.
//
// Loaders are stateless: every call opens and releases its own resources
// (file handles, database connections) regardless of outcome.
package datasource
