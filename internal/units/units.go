// Package units unifies angle units across providers.
//
// One function carries the whole policy: rows whose metric is "angle" and
// unit is "rad" (both case-insensitive) have their value rewritten to
// degrees. The inline per-frame pass during ingestion and the bulk store
// migration both call Normalize, so running the migration after ingestion
// is a no-op by construction.
package units

import (
	"fmt"
	"math"
	"strings"

	"github.com/motionforge/motionstore/internal/frame"
)

const degPerRad = 180.0 / math.Pi

// Normalize rewrites angle rows expressed in radians to degrees, in
// place. Returns the number of rows changed. A matching row whose value
// cell is not numeric is an error; the caller treats that as a failure of
// the whole file or migration.
func Normalize(rows []frame.Row) (int, error) {
	changed := 0
	for i, row := range rows {
		if !needsConversion(row) {
			continue
		}
		v, err := frame.ParseNumber(row[frame.ColValue])
		if err != nil {
			return changed, fmt.Errorf("row %d: angle value %w", i, err)
		}
		row[frame.ColValue] = frame.FormatNumber(v * degPerRad)
		row[frame.ColUnit] = "deg"
		changed++
	}
	return changed, nil
}

func needsConversion(row frame.Row) bool {
	return strings.EqualFold(row[frame.ColMetric], "angle") &&
		strings.EqualFold(row[frame.ColUnit], "rad")
}
