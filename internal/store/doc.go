// Package store provides SQLite-backed durable storage for query
// evaluations.
//
// The store is an append-only log with two tables:
//   - sessions: one row per CLI run or script, keyed by a UUIDv7
//   - evaluations: one row per (query id, catalog hash)
//
// # Identity
//
// Evaluation ids and catalog hashes are content addressed (see
// ir.EvaluationID and ir.CatalogHash), so an evaluation recorded by one
// session answers the same query in any later session that loads an
// identical catalog and targets the same pointer size. The
// first outcome written for a pair is kept; later writes are no-ops.
//
// # Ordering
//
// All ordering uses the seq column (logical clock), never timestamps.
// Reads use ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Memo plugs the store into engine.Engine via engine.WithMemo.
package store
