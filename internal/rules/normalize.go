package rules

import (
	"fmt"
	"slices"
	"sort"

	"github.com/motionforge/motionstore/internal/frame"
)

// Normalize runs one frame through a provider rule and the canonical
// schema, producing a canonical-shaped frame. The step order is fixed:
// reshape, feature extraction, rename, set, derive, default-fill,
// required check, projection. Failures are frame-scoped; the caller
// decides what that means for the rest of the file.
func (c *Config) Normalize(f frame.Frame, rule *ProviderRule) (frame.Frame, error) {
	var err error
	if rule.Reshape != nil {
		f, err = reshape(f, rule.Reshape)
		if err != nil {
			return frame.Frame{}, err
		}
		if rule.featureRe != nil {
			extractFeatures(&f, rule)
		}
	}

	applyRename(&f, rule.Rename)

	for _, name := range sortedKeys(rule.setCells) {
		f.SetAll(name, rule.setCells[name])
	}

	if err := applyDerived(&f, rule); err != nil {
		return frame.Frame{}, err
	}

	for _, name := range sortedKeys(c.Canonical.defaultCells) {
		if !f.HasColumn(name) {
			f.SetAll(name, c.Canonical.defaultCells[name])
		}
	}

	var missing []string
	for _, name := range c.Canonical.Required {
		if !f.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return frame.Frame{}, &MissingRequiredFieldsError{Missing: missing}
	}

	return project(f, &c.Canonical), nil
}

// reshape melts a wide frame into long form: one output row per
// (source row, non-id column) pair. The variable column receives the
// source column's name, the value column its cell.
func reshape(f frame.Frame, spec *ReshapeSpec) (frame.Frame, error) {
	for _, id := range spec.IDColumns {
		if !f.HasColumn(id) {
			return frame.Frame{}, fmt.Errorf("reshape id column %q not in frame headers", id)
		}
	}

	out := frame.Frame{Name: f.Name}
	out.Columns = append(out.Columns, spec.IDColumns...)
	out.Columns = append(out.Columns, spec.VarColumn, spec.ValueColumn)

	for _, row := range f.Rows {
		for _, col := range f.Columns {
			if slices.Contains(spec.IDColumns, col) {
				continue
			}
			long := make(frame.Row, len(out.Columns))
			for _, id := range spec.IDColumns {
				long[id] = row[id]
			}
			long[spec.VarColumn] = col
			long[spec.ValueColumn] = row[col]
			out.Rows = append(out.Rows, long)
		}
	}
	return out, nil
}

// extractFeatures applies the provider's capture pattern to the variable
// column. Each named group becomes a column; rows the pattern does not
// match get empty cells. Feature constants are set on every row.
func extractFeatures(f *frame.Frame, rule *ProviderRule) {
	varCol := rule.Reshape.VarColumn
	names := rule.featureRe.SubexpNames()

	for _, name := range names {
		if name != "" {
			f.AddColumn(name)
		}
	}
	for _, row := range f.Rows {
		m := rule.featureRe.FindStringSubmatch(row[varCol])
		for i, name := range names {
			if name == "" {
				continue
			}
			if m != nil {
				row[name] = m[i]
			} else {
				row[name] = ""
			}
		}
	}

	for _, name := range sortedKeys(rule.Feature.setCells) {
		f.SetAll(name, rule.Feature.setCells[name])
	}
}

// applyRename maps old column names to new ones; unmapped columns pass
// through. Walks the header slice so output order stays deterministic.
func applyRename(f *frame.Frame, rename map[string]string) {
	if len(rename) == 0 {
		return
	}
	for i, col := range f.Columns {
		newName, ok := rename[col]
		if !ok || newName == col {
			continue
		}
		f.Columns[i] = newName
		for _, row := range f.Rows {
			if v, present := row[col]; present {
				row[newName] = v
				delete(row, col)
			}
		}
	}
}

func applyDerived(f *frame.Frame, rule *ProviderRule) error {
	for _, d := range rule.derived {
		for _, col := range d.formula.Columns() {
			if !f.HasColumn(col) {
				return &DerivedFieldError{Column: d.name,
					Err: fmt.Errorf("formula references absent column %q", col)}
			}
		}
		for _, row := range f.Rows {
			var lookupErr error
			v, err := d.formula.Eval(func(col string) (float64, bool) {
				n, perr := frame.ParseNumber(row[col])
				if perr != nil {
					lookupErr = fmt.Errorf("column %q: %w", col, perr)
					return 0, false
				}
				return n, true
			})
			if lookupErr != nil {
				return &DerivedFieldError{Column: d.name, Err: lookupErr}
			}
			if err != nil {
				return &DerivedFieldError{Column: d.name, Err: err}
			}
			row[d.name] = frame.FormatNumber(v)
		}
		f.AddColumn(d.name)
	}
	return nil
}

// project keeps the union of required columns, default columns, and the
// passthrough identity columns that are present, in that order. Cells
// outside the kept set are dropped.
func project(f frame.Frame, schema *CanonicalSchema) frame.Frame {
	var keep []string
	add := func(name string) {
		if f.HasColumn(name) && !slices.Contains(keep, name) {
			keep = append(keep, name)
		}
	}
	for _, name := range schema.Required {
		add(name)
	}
	for _, name := range sortedKeys(schema.defaultCells) {
		add(name)
	}
	for _, name := range frame.PassthroughColumns {
		add(name)
	}

	out := frame.Frame{Name: f.Name, Columns: keep}
	out.Rows = make([]frame.Row, 0, len(f.Rows))
	for _, row := range f.Rows {
		kept := make(frame.Row, len(keep))
		for _, col := range keep {
			kept[col] = row[col]
		}
		out.Rows = append(out.Rows, kept)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
