package ledger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileLedger is the flat-file SeenSet: one lowercase hex hash per line,
// append-only. The whole file is loaded into memory on open; appends are
// synced before MarkSeen returns so a crash never loses a mark.
type FileLedger struct {
	mu   sync.Mutex
	path string
	file *os.File
	seen map[string]bool
}

// OpenFile opens (creating if absent) a flat-file ledger.
func OpenFile(path string) (*FileLedger, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if h := strings.TrimSpace(sc.Text()); h != "" {
			seen[h] = true
		}
	}
	if err := sc.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	if _, err := f.Seek(0, 2); err != nil {
		f.Close()
		return nil, fmt.Errorf("seeking ledger: %w", err)
	}

	return &FileLedger{path: path, file: f, seen: seen}, nil
}

// Contains implements SeenSet.
func (l *FileLedger) Contains(hash string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[hash], nil
}

// MarkSeen implements SeenSet. The line is flushed to disk before the
// in-memory set is updated.
func (l *FileLedger) MarkSeen(hash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[hash] {
		return nil
	}
	if _, err := fmt.Fprintln(l.file, hash); err != nil {
		return fmt.Errorf("appending to ledger: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("syncing ledger: %w", err)
	}
	l.seen[hash] = true
	return nil
}

// Close implements SeenSet.
func (l *FileLedger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
