package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/motionforge/motionstore/internal/frame"
)

const (
	csvName     = "measurements.csv"
	parquetName = "measurements.parquet"
)

// Store is the accumulated measurement store rooted at one directory.
type Store struct {
	dir string
}

// Open prepares a store directory, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// CSVPath returns the path of the primary store file.
func (s *Store) CSVPath() string { return filepath.Join(s.dir, csvName) }

// ParquetPath returns the path of the columnar mirror.
func (s *Store) ParquetPath() string { return filepath.Join(s.dir, parquetName) }

// Exists reports whether a primary store generation has been persisted.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.CSVPath())
	return err == nil
}

// Read loads the current store generation: all rows plus the column list
// from the header. A store that has never been written reads as empty.
func (s *Store) Read() ([]frame.Row, []string, error) {
	f, err := os.Open(s.CSVPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	columns, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading store header: %w", err)
	}

	var rows []frame.Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading store rows: %w", err)
		}
		row := make(frame.Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, columns, nil
}

// WriteAll persists rows as a new store generation and regenerates the
// mirror. The CSV is written to a temp file and renamed, so readers never
// observe a half-written generation. A mirror failure is reported as a
// *SecondaryWriteError after the primary write has already succeeded.
func (s *Store) WriteAll(rows []frame.Row, columns []string) error {
	if err := s.writeCSV(rows, columns); err != nil {
		return err
	}
	if err := s.writeMirror(rows); err != nil {
		return &SecondaryWriteError{Err: err}
	}
	return nil
}

// RefreshMirror regenerates the columnar mirror from the current primary
// generation. Used when a run produced no new rows but the store exists.
func (s *Store) RefreshMirror() error {
	rows, _, err := s.Read()
	if err != nil {
		return err
	}
	if err := s.writeMirror(rows); err != nil {
		return &SecondaryWriteError{Err: err}
	}
	return nil
}

func (s *Store) writeCSV(rows []frame.Row, columns []string) error {
	tmp, err := os.CreateTemp(s.dir, csvName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp store: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing store header: %w", err)
	}
	rec := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("writing store row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.CSVPath()); err != nil {
		return fmt.Errorf("replacing store generation: %w", err)
	}
	return nil
}
