// Package store persists the accumulated canonical measurement store.
//
// The primary representation is a row-oriented CSV with a header row
// holding the union of all canonical columns plus bookkeeping columns.
// Each merge produces a whole new generation: existing rows are read,
// new rows appended, duplicates removed by the dedup key
// (timestamp, joint, metric, value, source_hash) restricted to columns
// present, keeping the last occurrence so newly merged rows win, and
// the result is written to a temp file and renamed over the old one.
//
// A secondary columnar mirror (Parquet) is regenerated whenever the
// primary is written, and also when a run produced no new rows but the
// CSV already exists, so the two representations stay consistent. Mirror
// failures are non-fatal: the CSV remains authoritative.
//
// Merging is a read-modify-write over the entire store with no optimistic
// concurrency control. Two concurrent runs against the same directory are
// unsafe; serialize them externally.
package store
