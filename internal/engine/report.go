package engine

import (
	"fmt"
	"strings"
)

// Status classifies a file's outcome within one run.
type Status string

const (
	StatusOK   Status = "ok"
	StatusSkip Status = "skip"
	StatusFail Status = "fail"
)

// FileResult is the per-file line of the run report.
type FileResult struct {
	File     string `json:"file"`
	Status   Status `json:"status"`
	Provider string `json:"provider,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Report summarizes one ingestion run.
type Report struct {
	RunID           string       `json:"run_id"`
	Results         []FileResult `json:"results"`
	TotalRows       int          `json:"total_rows"`
	NothingToIngest bool         `json:"nothing_to_ingest,omitempty"`
	MirrorFailed    bool         `json:"mirror_failed,omitempty"`
}

func (r *Report) add(res FileResult) {
	r.Results = append(r.Results, res)
}

// Failed reports how many files failed.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusFail {
			n++
		}
	}
	return n
}

// Render formats the report as one line per file plus a summary line.
func (r *Report) Render() string {
	var sb strings.Builder
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			fmt.Fprintf(&sb, "[ok] %s (%s)\n", res.File, res.Provider)
		case StatusSkip:
			fmt.Fprintf(&sb, "[skip] %s: %s\n", res.File, res.Reason)
		case StatusFail:
			fmt.Fprintf(&sb, "[fail] %s: %s\n", res.File, res.Reason)
		}
	}
	if r.NothingToIngest {
		sb.WriteString("nothing to ingest\n")
		return sb.String()
	}
	if r.MirrorFailed {
		sb.WriteString("warning: columnar mirror not written; csv remains authoritative\n")
	}
	fmt.Fprintf(&sb, "accumulated rows: %d\n", r.TotalRows)
	return sb.String()
}
