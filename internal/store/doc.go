// Package store provides SQLite-backed history for framecheck runs.
//
// Every check run is appended as one row in runs, one row per transition
// report and one row per diagnostic. Runs are never updated in place.
//
// # Critical Patterns
//
// Logical ordering
//   - runs are ordered by seq INTEGER, assigned inside the write transaction
//   - wall-clock time is never stored, so identical inputs give identical rows
//
// Content addressing
//   - spec_hash identifies the loaded spec (ir.SpecHash)
//   - report_hash identifies the rendered text (ir.ReportHash)
//   - two runs with equal hashes produced byte-identical output
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
