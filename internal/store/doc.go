// Package store provides SQLite-backed durable storage for run history.
//
// The store keeps one append-only table:
//   - Runs: one record per solve or probe invocation
//
// Instances are identified by a content-addressed fingerprint of the
// canonical formula (see internal/dimacs), so the same benchmark under
// two filenames shares one history. Run IDs are UUIDv7 and therefore
// time-ordered; queries use them as the deterministic tiebreak within a
// created_at timestamp.
//
// Writes are idempotent: INSERT ... ON CONFLICT(id) DO NOTHING means
// re-recording a run is silently ignored, which keeps retry loops in
// the CLI safe.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
