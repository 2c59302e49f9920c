// Package store exports bills of materials to a SQLite database.
//
// Each export is a run: the document it came from, content hashes of the
// graph and BOM that were produced, and the BOM lines themselves.
//
// # Ordering
//
//   - Runs carry seq, a logical counter assigned on insert. Wall-clock time
//     is never stored or used for ordering.
//   - Queries order by seq ASC, id ASC COLLATE BINARY, and items by position,
//     so reads are identical across machines.
//
// # Idempotency
//
// Writing a run whose id already exists is a no-op. With a fixed run id
// generator, exporting the same BOM twice leaves the database unchanged.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000ms
//   - foreign_keys=ON
//   - Single connection: SQLite has one writer anyway
package store
