// Package service orchestrates the core components (registry, WAL,
// outbox, sequencer) behind the single write entry point.
//
// It provides a clean API for placing, cancelling, reducing, and querying
// orders, decoupled from the HTTP transport.
package service
