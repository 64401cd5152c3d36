package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/motionforge/motionstore/internal/engine"
	"github.com/motionforge/motionstore/internal/ledger"
	"github.com/motionforge/motionstore/internal/rules"
	"github.com/motionforge/motionstore/internal/store"
)

// Filenames inside the store directory.
const (
	fileLedgerName   = "_ingested_hashes.txt"
	sqliteLedgerName = "ledger.db"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Inbox   string
	DBDir   string
	Config  string
	Ledger  string // "file" | "sqlite"
	Workers int
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Normalize inbox files into the canonical store",
		Long: `Ingest every file in the inbox directory into the canonical measurement
store. Files already ingested (by content hash) are skipped; files that
fail detection or normalization are reported and leave the store
untouched.

Example:
  motionstore ingest --config ingest.yaml --inbox ./uploads --db ./db
  motionstore ingest --config ingest.yaml --inbox ./uploads --db ./db --ledger sqlite --workers 4`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Inbox, "inbox", "", "directory of source files (required)")
	cmd.Flags().StringVar(&opts.DBDir, "db", "", "store directory (required)")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to ingest config YAML (required)")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "file", "ledger backend (file|sqlite)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "per-file parallelism")
	_ = cmd.MarkFlagRequired("inbox")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runIngest(cmd *cobra.Command, opts *IngestOptions) error {
	cfg, err := rules.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	st, err := store.Open(opts.DBDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening store", err)
	}

	seen, err := openLedger(opts.Ledger, opts.DBDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening ledger", err)
	}
	defer func() {
		if closeErr := seen.Close(); closeErr != nil {
			slog.Error("closing ledger", "error", closeErr)
		}
	}()

	eng := engine.New(engine.Options{
		Config:  cfg,
		Seen:    seen,
		Store:   st,
		Logger:  slog.Default(),
		Workers: opts.Workers,
	})

	report, err := eng.Run(cmd.Context(), opts.Inbox)
	if err != nil {
		return WrapExitError(ExitFailure, "ingestion run", err)
	}
	if n := report.Failed(); n > 0 {
		slog.Warn("run completed with failures", "failed_files", n)
	}
	return emit(cmd.OutOrStdout(), opts.Format, report.Render(), report)
}

func openLedger(backend, dbDir string) (ledger.SeenSet, error) {
	switch backend {
	case "file":
		return ledger.OpenFile(filepath.Join(dbDir, fileLedgerName))
	case "sqlite":
		return ledger.OpenSQLite(filepath.Join(dbDir, sqliteLedgerName))
	default:
		return nil, fmt.Errorf("unknown ledger backend %q (file|sqlite)", backend)
	}
}
