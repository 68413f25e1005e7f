// Package project provides the project-level entry point: settings
// resolution for the conventional conf/ layout, a registry of named
// pipeline factories, and Run, which wires parameters, catalog and
// runner together for a registered pipeline.
package project
