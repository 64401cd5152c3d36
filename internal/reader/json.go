package reader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/motionforge/motionstore/internal/frame"
)

// readJSON parses a JSON document into a single frame. Accepted shapes:
// a top-level array of objects, an object with a "data" array, or any
// other object treated as one flattened record (nested keys joined with
// dots, the way pandas json_normalize does).
func readJSON(name string, data []byte) (frame.Frame, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return frame.Frame{}, fmt.Errorf("parsing json: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		return frameFromObjects(name, v)
	case map[string]any:
		if inner, ok := v["data"].([]any); ok {
			return frameFromObjects(name, inner)
		}
		flat := map[string]any{}
		flatten("", v, flat)
		return frameFromObjects(name, []any{flat})
	default:
		return frame.Frame{}, fmt.Errorf("json document is neither a list nor an object")
	}
}

// frameFromObjects builds a frame from a list of objects. Columns are the
// union of keys across all objects, in first-appearance order with a sorted
// tail for keys first seen on later rows.
func frameFromObjects(name string, items []any) (frame.Frame, error) {
	f := frame.Frame{Name: name}
	seen := map[string]bool{}
	rows := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return frame.Frame{}, fmt.Errorf("json record %d is not an object", i)
		}
		rows = append(rows, obj)
		var fresh []string
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				fresh = append(fresh, cleanHeader(k))
			}
		}
		sort.Strings(fresh)
		f.Columns = append(f.Columns, fresh...)
	}
	for _, obj := range rows {
		row := make(frame.Row, len(f.Columns))
		for k, v := range obj {
			row[cleanHeader(k)] = frame.CellString(v)
		}
		for _, col := range f.Columns {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

// flatten joins nested object keys with dots. Arrays and scalars stop the
// recursion and become cell values.
func flatten(prefix string, v map[string]any, out map[string]any) {
	for k, val := range v {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = val
	}
}
