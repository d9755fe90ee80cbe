package download

// Package download implements the first pipeline phase: a pool of N
// parallel workers draining a shared FIFO queue of items. Each worker
// fully owns one item at a time and drives an external multi-connection
// downloader, a simpler external downloader, or the built-in streaming
// HTTP fallback, emitting progress parsed from the tool's merged
// output. A failure in one item never blocks the worker loop or the
// other items.
