package store

import (
	"slices"
	"strings"

	"github.com/motionforge/motionstore/internal/frame"
)

// dedupColumns is the dedup key, restricted at merge time to the columns
// actually present in the combined store.
var dedupColumns = []string{
	frame.ColTimestamp, frame.ColJoint, frame.ColMetric,
	frame.ColValue, frame.ColSourceHash,
}

// Merge concatenates the existing store generation with new canonical
// rows, deduplicates by the dedup key keeping the last occurrence, and
// persists the result as the new generation. Returns the total row count
// of the merged store. A *SecondaryWriteError return means the primary
// generation was persisted but the mirror was not.
func (s *Store) Merge(newRows []frame.Row, newColumns []string) (int, error) {
	existing, existingColumns, err := s.Read()
	if err != nil {
		return 0, err
	}

	columns := frame.UnionColumns(existingColumns, newColumns)
	combined := make([]frame.Row, 0, len(existing)+len(newRows))
	combined = append(combined, existing...)
	combined = append(combined, newRows...)
	merged := dedupe(combined, columns)

	if err := s.WriteAll(merged, columns); err != nil {
		return len(merged), err
	}
	return len(merged), nil
}

// dedupe removes rows sharing a dedup key, keeping each key's last
// occurrence at its original position.
func dedupe(rows []frame.Row, columns []string) []frame.Row {
	var keyCols []string
	for _, col := range dedupColumns {
		if slices.Contains(columns, col) {
			keyCols = append(keyCols, col)
		}
	}
	if len(keyCols) == 0 {
		return rows
	}

	last := make(map[string]int, len(rows))
	keys := make([]string, len(rows))
	var sb strings.Builder
	for i, row := range rows {
		sb.Reset()
		for _, col := range keyCols {
			sb.WriteString(row[col])
			sb.WriteByte(0x1f) // unit separator keeps adjacent cells distinct
		}
		keys[i] = sb.String()
		last[keys[i]] = i
	}

	out := make([]frame.Row, 0, len(last))
	for i, row := range rows {
		if last[keys[i]] == i {
			out = append(out, row)
		}
	}
	return out
}
