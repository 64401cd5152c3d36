// Package ledger tracks which source files have already been fully
// ingested, keyed by content hash.
//
// The engine owns the marking discipline: a hash is marked only after
// every frame of the file has been normalized and its rows merged into
// the store. The ledger itself is a dumb durable set behind the SeenSet
// interface, with two interchangeable backends: an append-only flat file
// (one hex hash per line) and a SQLite table.
package ledger

// SeenSet is a durable set of content hashes. Implementations must be
// safe for concurrent use; the engine may check and mark from worker
// goroutines.
type SeenSet interface {
	// Contains reports whether the hash was marked by an earlier run
	// or earlier in this run.
	Contains(hash string) (bool, error)

	// MarkSeen durably adds the hash. Marking an already-present hash
	// is a no-op.
	MarkSeen(hash string) error

	Close() error
}
