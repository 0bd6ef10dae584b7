// Package store provides the SQLite database that paper searches run
// against.
//
// The store holds papers, their tags, conflicts and reviews, and the
// contact directory. It executes the statements planned by a search and
// scans the projected columns into rows; columns a statement did not
// project stay zero.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Tags compare case-insensitively (COLLATE NOCASE), matching the in-memory
// tag tests.
package store
