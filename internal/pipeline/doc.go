package pipeline

// Package pipeline owns the batch state machine: it advances a set of
// items through the download and convert phases, detecting phase
// completion with completion counters signaled by the worker that
// brings an item to a terminal state, and runs the idempotent final
// cleanup sweep once conversion finishes.
