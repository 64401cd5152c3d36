package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLedger stores seen hashes in an embedded SQLite database. Same
// contract as FileLedger; useful once the ledger outgrows linear scans
// or when several tools share it.
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite-backed ledger at the given path.
// Safe to call repeatedly; the schema is applied idempotently.
func OpenSQLite(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to ledger db: %w", err)
	}

	// SQLite supports one writer at a time; keep the pool at a single
	// connection to avoid SQLITE_BUSY under the worker pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS ingested_hashes (
			hash      TEXT PRIMARY KEY,
			marked_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying ledger schema: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

// Contains implements SeenSet.
func (l *SQLiteLedger) Contains(hash string) (bool, error) {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM ingested_hashes WHERE hash = ?`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying ledger: %w", err)
	}
	return true, nil
}

// MarkSeen implements SeenSet. Duplicate marks are silently ignored.
func (l *SQLiteLedger) MarkSeen(hash string) error {
	_, err := l.db.Exec(
		`INSERT INTO ingested_hashes (hash) VALUES (?) ON CONFLICT(hash) DO NOTHING`, hash)
	if err != nil {
		return fmt.Errorf("marking hash: %w", err)
	}
	return nil
}

// Close implements SeenSet.
func (l *SQLiteLedger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
