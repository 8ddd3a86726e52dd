package observability

// Package observability provides logging and Prometheus metrics for trainpipe.
//
// Key features:
// - A process-wide log sink that is configured exactly once
// - Named loggers rendering "timestamp - name - LEVEL - message" records
// - Prometheus metrics for the bootstrap sequence and collaborator resolution
