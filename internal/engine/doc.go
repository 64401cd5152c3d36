// Package engine drives batch ingestion of an inbox directory into the
// canonical measurement store.
//
// Per run, every regular file in the inbox is visited in name order. Each
// file is read fully into memory, identified by the SHA-256 of its bytes,
// and skipped outright when the ledger already holds that hash. Otherwise
// the file's frames are parsed and each one runs through provider
// detection, rule normalization, and angle-unit normalization. The frames
// of one file are buffered: only when every frame succeeds are the rows
// handed to the merge, and the ledger is marked only after the merge has
// persisted. A file whose frames all succeed but yield no rows is marked
// without a merge; there is nothing to write. A failure in any frame
// aborts that file (none of its rows reach the store, its hash stays
// unmarked) but never the batch.
//
// Failure model per file: UnsupportedFormat, ProviderNotDetected,
// MissingRequiredFields, and DerivedFieldError are reported inline and the
// run continues. A mirror write failure is store-scoped and demoted to a
// warning.
//
// Per-file processing is independent and may run on a worker pool; the
// ledger check, the merge, and the ledger marks stay on the caller's
// goroutine. The merge itself is a read-modify-write over the whole store,
// so concurrent runs against one store directory must be serialized
// externally.
//
// Crash or cancellation mid-run leaves not-yet-marked files eligible for
// full reprocessing next run; the dedup key at merge time makes that
// replay exactly-once in effect.
package engine
