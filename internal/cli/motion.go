package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/motionforge/motionstore/internal/motion"
	"github.com/motionforge/motionstore/internal/store"
)

// ExportMotionOptions holds flags for the export-motion command.
type ExportMotionOptions struct {
	*RootOptions
	DBDir   string
	OutDir  string
	Session string
}

// exportResult is the JSON payload of export-motion.
type exportResult struct {
	Clips []string `json:"clips"`
}

// NewExportMotionCommand creates the export-motion command.
func NewExportMotionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportMotionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export-motion",
		Short: "Export angle rows as motion-clip JSON for the viewer",
		Long: `Read the canonical store and write one motion clip per
(session, activity) group, mapping joint names onto the Mixamo/Xbot
skeleton. Consumes the store only; never touches the inbox or ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportMotion(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.DBDir, "db", "", "store directory (required)")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "clips output directory (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "export only this session")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runExportMotion(cmd *cobra.Command, opts *ExportMotionOptions) error {
	st, err := store.Open(opts.DBDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	rows, _, err := st.Read()
	if err != nil {
		return WrapExitError(ExitFailure, "reading store", err)
	}

	clips, err := motion.Export(rows, opts.OutDir, opts.Session)
	if err != nil {
		return WrapExitError(ExitFailure, "exporting clips", err)
	}

	text := fmt.Sprintf("wrote %d clips: %s\n", len(clips), strings.Join(clips, ", "))
	if len(clips) == 0 {
		text = "no angle rows to export\n"
	}
	return emit(cmd.OutOrStdout(), opts.Format, text, exportResult{Clips: clips})
}

// MotionIndexOptions holds flags for the motion-index command.
type MotionIndexOptions struct {
	*RootOptions
	Dir string
}

// NewMotionIndexCommand creates the motion-index command.
func NewMotionIndexCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MotionIndexOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "motion-index",
		Short:         "Rebuild the clip index the viewer loads",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMotionIndex(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "clips directory (required)")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runMotionIndex(cmd *cobra.Command, opts *MotionIndexOptions) error {
	idx, err := motion.WriteIndex(opts.Dir)
	if err != nil {
		return WrapExitError(ExitFailure, "building index", err)
	}
	text := fmt.Sprintf("indexed %d clips\n", len(idx.Items))
	return emit(cmd.OutOrStdout(), opts.Format, text, idx)
}
