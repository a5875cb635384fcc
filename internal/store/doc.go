// Package store provides SQLite-backed history of archcheck runs.
//
// The store is append-only: every recorded run gets a fresh uuid and its
// check results are written in the same transaction. archcheck never reads
// the history to decide what to check; it exists for reporting (the
// history command) and for trend analysis outside the tool.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema upgrades are tracked with PRAGMA user_version.
package store
