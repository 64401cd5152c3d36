package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/motionforge/motionstore/internal/store"
	"github.com/motionforge/motionstore/internal/units"
)

// MigrateUnitsOptions holds flags for the migrate-units command.
type MigrateUnitsOptions struct {
	*RootOptions
	DBDir string
}

// migrateResult is the JSON payload of migrate-units.
type migrateResult struct {
	Changed      int  `json:"changed"`
	TotalRows    int  `json:"total_rows"`
	MirrorFailed bool `json:"mirror_failed,omitempty"`
}

// NewMigrateUnitsCommand creates the migrate-units command.
func NewMigrateUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateUnitsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate-units",
		Short: "Convert stored radian angles to degrees",
		Long: `Rewrite the whole persisted store, converting every angle row still
expressed in radians to degrees. Uses the identical predicate and
constant as the inline conversion during ingestion, so running this
after an ingest changes zero rows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUnits(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBDir, "db", "", "store directory (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runMigrateUnits(cmd *cobra.Command, opts *MigrateUnitsOptions) error {
	st, err := store.Open(opts.DBDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	if !st.Exists() {
		return emit(cmd.OutOrStdout(), opts.Format,
			"no store yet; run ingest first\n", migrateResult{})
	}

	rows, columns, err := st.Read()
	if err != nil {
		return WrapExitError(ExitFailure, "reading store", err)
	}

	changed, err := units.Normalize(rows)
	if err != nil {
		return WrapExitError(ExitFailure, "converting units", err)
	}

	result := migrateResult{Changed: changed, TotalRows: len(rows)}
	if changed > 0 {
		err = st.WriteAll(rows, columns)
	} else {
		err = st.RefreshMirror()
	}
	if store.IsSecondaryWriteFailure(err) {
		slog.Warn("mirror write failed", "error", err)
		result.MirrorFailed = true
		err = nil
	}
	if err != nil {
		return WrapExitError(ExitFailure, "persisting store", err)
	}

	text := fmt.Sprintf("converted %d of %d rows from rad to deg\n", changed, len(rows))
	if changed == 0 {
		text = fmt.Sprintf("nothing to convert; all %d rows already in deg\n", len(rows))
	}
	return emit(cmd.OutOrStdout(), opts.Format, text, result)
}
