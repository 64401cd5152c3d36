package engine

import (
	"fmt"

	"github.com/motionforge/motionstore/internal/frame"
	"github.com/motionforge/motionstore/internal/reader"
	"github.com/motionforge/motionstore/internal/rules"
	"github.com/motionforge/motionstore/internal/units"
)

// processFile runs the full per-file pipeline: parse into frames, then
// detect, normalize, and unit-normalize each frame. All frames are
// buffered; the first failing frame fails the whole file and discards the
// buffer. Bookkeeping columns are stamped here, by the engine; provider
// rules never see them.
func (e *Engine) processFile(p pendingFile) outcome {
	frames, err := reader.Read(p.name, p.data)
	if err != nil {
		return outcome{err: err}
	}

	var out outcome
	for _, f := range frames {
		rule, ok := e.cfg.Detect(f.Columns)
		if !ok {
			return outcome{err: &rules.NotDetectedError{Frame: f.Name, Headers: f.Columns}}
		}

		norm, err := e.cfg.Normalize(f, rule)
		if err != nil {
			return outcome{err: fmt.Errorf("frame %q: %w", f.Name, err)}
		}
		if _, err := units.Normalize(norm.Rows); err != nil {
			return outcome{err: fmt.Errorf("frame %q: %w", f.Name, err)}
		}

		norm.SetAll(frame.ColSourceHash, p.hash)
		norm.SetAll(frame.ColSourceFile, p.name)

		out.rows = append(out.rows, norm.Rows...)
		out.columns = frame.UnionColumns(out.columns, norm.Columns)
		out.provider = rule.Name
	}
	return out
}
