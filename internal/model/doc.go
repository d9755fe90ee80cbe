package model

// Package model defines the domain data structures shared across the
// pipeline: queue items, phase and status enums, the per-item event
// stream, and the error taxonomy. Items carry explicit state
// transitions and are safe for the one-writer-per-phase access pattern
// used by the worker pools and the batch scheduler.
