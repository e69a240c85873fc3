// Package journal provides a SQLite-backed record of deployment runs.
//
// Every run, every confirmed publish and every initiate call is written as
// the sequencer reports it. Because a second publish creates a new address,
// the journal is the place to look up what a previous (possibly failed) run
// left on chain before deploying again.
//
// # Ordering
//
// All rows carry a seq drawn from the journal_seq counter in the same
// transaction that writes the row, so separate handles on one file never
// issue the same value. Queries order by seq, never by timestamps.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - _txlock=immediate: Writers take the lock at BEGIN
//
// Initiation parameters are stored as canonical JSON with a fingerprint
// computed by the canon package.
package journal
