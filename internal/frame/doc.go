// Package frame provides the tabular data model shared by every stage of
// the ingestion pipeline.
//
// This package contains type definitions and cell helpers only. All other
// internal packages import frame; frame imports nothing internal. This keeps
// it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Cells are always strings. Readers stringify source scalars once, at
//     the boundary; numeric stages parse on demand and re-format with
//     strconv so a value survives a round trip unchanged.
//   - A Frame carries an explicit Columns slice. Row maps alone cannot
//     preserve column order, and reshape/projection semantics depend on it.
//   - Record is the typed view of one canonical row: fixed canonical fields
//     plus a dynamic Extra map for whatever further columns the canonical
//     schema requires.
package frame
