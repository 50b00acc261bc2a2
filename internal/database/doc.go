// Package database provides SQLite-based run history for linkcheck.
//
// This package implements the HistoryDB, which stores:
//   - Every finished run as JSON, keyed by seed URL and start time
//   - One row per verified link, for per-URL history queries
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
