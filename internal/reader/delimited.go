package reader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/motionforge/motionstore/internal/frame"
)

// readDelimited parses comma- or tab-separated text into a single frame.
// The first record is the header row. Short records pad with empty cells.
func readDelimited(name string, data []byte, comma rune) (frame.Frame, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err == io.EOF {
		return frame.Frame{}, fmt.Errorf("empty document")
	}
	if err != nil {
		return frame.Frame{}, fmt.Errorf("reading header: %w", err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Frame{}, fmt.Errorf("reading rows: %w", err)
		}
		records = append(records, rec)
	}
	return buildFrame(name, headers, records), nil
}
