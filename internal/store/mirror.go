package store

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/motionforge/motionstore/internal/frame"
)

// SecondaryWriteError reports a failed mirror write. The primary CSV
// generation is already persisted when this is returned, so callers
// treat it as a warning, not a run failure.
type SecondaryWriteError struct {
	Err error
}

func (e *SecondaryWriteError) Error() string {
	return fmt.Sprintf("columnar mirror not written: %v", e.Err)
}

func (e *SecondaryWriteError) Unwrap() error { return e.Err }

// IsSecondaryWriteFailure reports whether err is a SecondaryWriteError.
func IsSecondaryWriteFailure(err error) bool {
	var se *SecondaryWriteError
	return errors.As(err, &se)
}

// mirrorRow is the Parquet schema of the columnar mirror. It covers the
// canonical fixed columns; value is typed numeric, with NaN standing in
// for the rare non-numeric cell.
type mirrorRow struct {
	Timestamp  string  `parquet:"timestamp"`
	Joint      string  `parquet:"joint"`
	Metric     string  `parquet:"metric"`
	Value      float64 `parquet:"value"`
	Unit       string  `parquet:"unit"`
	SessionID  string  `parquet:"session_id"`
	SubjectID  string  `parquet:"subject_id"`
	Activity   string  `parquet:"activity"`
	SourceHash string  `parquet:"source_hash"`
	SourceFile string  `parquet:"source_file"`
}

func (s *Store) writeMirror(rows []frame.Row) error {
	out := make([]mirrorRow, len(rows))
	for i, row := range rows {
		rec := frame.RecordFromRow(row)
		value, err := rec.ValueNumber()
		if err != nil {
			value = math.NaN()
		}
		out[i] = mirrorRow{
			Timestamp:  rec.Timestamp,
			Joint:      rec.Joint,
			Metric:     rec.Metric,
			Value:      value,
			Unit:       rec.Unit,
			SessionID:  rec.SessionID,
			SubjectID:  rec.SubjectID,
			Activity:   rec.Activity,
			SourceHash: rec.SourceHash,
			SourceFile: rec.SourceFile,
		}
	}

	tmp, err := os.CreateTemp(s.dir, parquetName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp mirror: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := parquet.NewGenericWriter[mirrorRow](tmp)
	if _, err := w.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("writing mirror rows: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("closing mirror writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing mirror file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.ParquetPath()); err != nil {
		return fmt.Errorf("replacing mirror: %w", err)
	}
	return nil
}
