// Package reader turns raw source-file bytes into tabular frames.
//
// Dispatch is by file extension: delimited text (.csv, .tsv), workbook
// (.xlsx, .xlsm; one frame per sheet), or JSON (.json; a top-level list,
// an object with a "data" list, or a single flattened record). Anything
// else is an UnsupportedFormatError. Headers are NFC-normalized and
// trimmed so detection sees one spelling per column regardless of how the
// exporting tool encoded it.
package reader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/motionforge/motionstore/internal/frame"
)

// UnsupportedFormatError reports a file whose extension maps to no reader.
type UnsupportedFormatError struct {
	Filename  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q: %s", e.Extension, e.Filename)
}

// IsUnsupportedFormat reports whether err is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var ue *UnsupportedFormatError
	return errors.As(err, &ue)
}

// Read parses a source file into its ordered list of frames.
// The file's bytes are already in memory; Read never touches the filesystem.
func Read(filename string, data []byte) ([]frame.Frame, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	switch ext {
	case ".csv":
		f, err := readDelimited(stem, data, ',')
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return []frame.Frame{f}, nil
	case ".tsv":
		f, err := readDelimited(stem, data, '\t')
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return []frame.Frame{f}, nil
	case ".xlsx", ".xlsm":
		frames, err := readWorkbook(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return frames, nil
	case ".json":
		f, err := readJSON(stem, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return []frame.Frame{f}, nil
	default:
		return nil, &UnsupportedFormatError{Filename: filename, Extension: ext}
	}
}

// cleanHeader normalizes a header cell for detection and lookup.
func cleanHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

func buildFrame(name string, headers []string, records [][]string) frame.Frame {
	f := frame.Frame{Name: name, Columns: make([]string, len(headers))}
	for i, h := range headers {
		f.Columns[i] = cleanHeader(h)
	}
	for _, rec := range records {
		row := make(frame.Row, len(f.Columns))
		for i, col := range f.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		f.Rows = append(f.Rows, row)
	}
	return f
}
