// Package main hosts the studiodrop CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the workflow engine:
// scanning and validating a delivery, previewing its copy plan, packaging it
// into the versioned output layout, and browsing run history and profiles.
// Configuration and logging are resolved lazily in commandContext so
// commands that do not need them (config init) stay usable on a broken setup.
package main
