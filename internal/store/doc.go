// Package store provides SQLite-backed run history for idlsdk.
//
// Every successful transform can be recorded as a run: the input and output
// paths, the content hashes of both documents (see idl.DocumentHash), and
// the rewrite counts reported by the pipeline.
//
// # Ordering
//
//   - Runs are ordered by seq INTEGER (logical clock), never by timestamps
//   - All list queries use ORDER BY seq
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - user_version: Schema version; newer databases are rejected
package store
