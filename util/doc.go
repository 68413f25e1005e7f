// Package util provides generic helpers shared across flowkit packages.
package util
