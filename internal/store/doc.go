// Package store provides the SQLite-backed persistence layer of the
// downloader: a schema-driven store with a small generic query surface.
//
// A Store owns one connection to one database file for the life of the
// process. Open creates the file if needed, applies every table and index of
// a schema.Set with "if not exists" statements, and commits once. After that
// the Store exposes:
//   - Insert, Count, Select, SelectOne, Update, Delete
//   - GetConfig, SetConfig (the config key/value table)
//   - Commit, Rollback, Close
//
// # Transactions
//
// Insert, Update and Delete open a deferred transaction on first use and leave
// it open. Nothing is durable until Commit. Reads run on the same connection
// and see this process's uncommitted writes.
//
// # Contention
//
// Several OS processes may open the same file. SQLite serializes them with
// file locks; a commit that loses the race fails with SQLITE_BUSY. Commit
// retries those failures according to a RetryPolicy (fixed or exponential
// backoff, optional attempt bound). Any other failure is returned at once.
//
// # Trust boundary
//
// Values are always bound through ? placeholders. Table names, projections,
// assignments and where fragments are raw SQL supplied by the caller and are
// not validated or sanitized here. Never build them from untrusted input.
//
// # Database Configuration
//
//   - journal_mode: WAL by default, configurable
//   - busy_timeout: 5000 ms by default, configurable
//   - foreign_keys: OFF by default; the downloader's schema references
//     albums(rowid), which SQLite refuses as a parent key when enforcement
//     is on
//
// A Store is not safe for concurrent use by multiple goroutines.
package store
