package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/motionforge/motionstore/internal/frame"
	"github.com/motionforge/motionstore/internal/ledger"
	"github.com/motionforge/motionstore/internal/rules"
	"github.com/motionforge/motionstore/internal/store"
)

// Options wires the engine's collaborators. Everything is injected; the
// engine holds no global state.
type Options struct {
	Config *rules.Config
	Seen   ledger.SeenSet
	Store  *store.Store
	Logger *slog.Logger

	// Workers sets the per-file parallelism. Values below 2 mean
	// sequential processing.
	Workers int
}

// Engine ingests inbox files into the store.
type Engine struct {
	cfg     *rules.Config
	seen    ledger.SeenSet
	store   *store.Store
	log     *slog.Logger
	workers int
	runID   string
}

// New constructs an engine. Each engine carries a time-sortable run token
// that is stamped into logs so interleaved runs can be told apart.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	runID := uuid.Must(uuid.NewV7()).String()
	return &Engine{
		cfg:     opts.Config,
		seen:    opts.Seen,
		store:   opts.Store,
		log:     log.With("run_id", runID),
		workers: workers,
		runID:   runID,
	}
}

// RunID returns the engine's run token.
func (e *Engine) RunID() string { return e.runID }

// Run ingests every regular file in the inbox, in name order, and merges
// the buffered rows of all successful files in one store write. Ledger
// marks happen only after that write persists: a file's frames are merged
// and its hash marked together, or neither.
func (e *Engine) Run(ctx context.Context, inbox string) (*Report, error) {
	files, err := listInbox(inbox)
	if err != nil {
		return nil, err
	}
	e.log.Info("run starting", "inbox", inbox, "files", len(files))

	report := &Report{RunID: e.runID}
	var pending []pendingFile
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(inbox, name))
		if err != nil {
			report.add(FileResult{File: name, Status: StatusFail, Reason: err.Error()})
			continue
		}
		sum := sha256.Sum256(data)
		hash := hex.EncodeToString(sum[:])

		dup, err := e.seen.Contains(hash)
		if err != nil {
			return nil, fmt.Errorf("checking ledger: %w", err)
		}
		if dup {
			e.log.Debug("duplicate skipped", "file", name, "hash", hash)
			report.add(FileResult{File: name, Status: StatusSkip, Reason: "duplicate"})
			continue
		}
		pending = append(pending, pendingFile{name: name, hash: hash, data: data})
	}

	outcomes := e.processAll(ctx, pending)

	var (
		buffered []frame.Row
		columns  []string
		marked   []string
	)
	for i, p := range pending {
		out := outcomes[i]
		if out.err != nil {
			e.log.Warn("file failed", "file", p.name, "error", out.err)
			report.add(FileResult{File: p.name, Status: StatusFail, Reason: out.err.Error()})
			continue
		}
		buffered = append(buffered, out.rows...)
		columns = frame.UnionColumns(columns, out.columns)
		marked = append(marked, p.hash)
		e.log.Info("file normalized", "file", p.name, "provider", out.provider, "rows", len(out.rows))
		report.add(FileResult{File: p.name, Status: StatusOK, Provider: out.provider, Rows: len(out.rows)})
	}

	if len(buffered) == 0 {
		// Files that normalized successfully but produced zero rows still
		// count as ingested: there is nothing to merge, so the hash is
		// marked right away.
		if err := e.markAll(marked); err != nil {
			return nil, err
		}
		return e.finishEmpty(report, len(marked) > 0)
	}

	total, err := e.store.Merge(buffered, columns)
	if store.IsSecondaryWriteFailure(err) {
		e.log.Warn("mirror write failed", "error", err)
		report.MirrorFailed = true
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("merging store: %w", err)
	}
	if err := e.markAll(marked); err != nil {
		return nil, err
	}

	report.TotalRows = total
	e.log.Info("run complete", "new_rows", len(buffered), "total_rows", total)
	return report, nil
}

func (e *Engine) markAll(hashes []string) error {
	for _, hash := range hashes {
		if err := e.seen.MarkSeen(hash); err != nil {
			return fmt.Errorf("marking ledger: %w", err)
		}
	}
	return nil
}

// finishEmpty handles a run that produced no new rows. An existing store
// still gets its mirror regenerated so the representations stay
// consistent. With no store at all, "nothing to ingest" applies only when
// no file succeeded; a run of zero-row successes is a normal empty run.
func (e *Engine) finishEmpty(report *Report, anySucceeded bool) (*Report, error) {
	if !e.store.Exists() {
		if anySucceeded {
			e.log.Info("run complete", "new_rows", 0, "total_rows", 0)
			return report, nil
		}
		report.NothingToIngest = true
		e.log.Info("nothing to ingest")
		return report, nil
	}
	rows, _, err := e.store.Read()
	if err != nil {
		return nil, err
	}
	report.TotalRows = len(rows)
	if err := e.store.RefreshMirror(); err != nil {
		if !store.IsSecondaryWriteFailure(err) {
			return nil, err
		}
		e.log.Warn("mirror refresh failed", "error", err)
		report.MirrorFailed = true
	}
	e.log.Info("no new rows; mirror refreshed", "total_rows", report.TotalRows)
	return report, nil
}

type pendingFile struct {
	name string
	hash string
	data []byte
}

type outcome struct {
	rows     []frame.Row
	columns  []string
	provider string
	err      error
}

// processAll runs the per-file pipeline, fanning out to a worker pool
// when configured. Outcomes keep the input order regardless of which
// worker finished first.
func (e *Engine) processAll(ctx context.Context, pending []pendingFile) []outcome {
	outcomes := make([]outcome, len(pending))
	if e.workers < 2 || len(pending) < 2 {
		for i, p := range pending {
			if ctx.Err() != nil {
				outcomes[i] = outcome{err: ctx.Err()}
				continue
			}
			outcomes[i] = e.processFile(p)
		}
		return outcomes
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					outcomes[i] = outcome{err: ctx.Err()}
					continue
				}
				outcomes[i] = e.processFile(pending[i])
			}
		}()
	}
	for i := range pending {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return outcomes
}

func listInbox(inbox string) ([]string, error) {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		return nil, fmt.Errorf("reading inbox: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}
