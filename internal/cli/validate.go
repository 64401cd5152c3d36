package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/motionforge/motionstore/internal/rules"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Config string
}

// validateResult is the JSON payload of validate.
type validateResult struct {
	Providers []string `json:"providers"`
	Required  []string `json:"required"`
	Defaults  int      `json:"defaults"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an ingest config without touching any data",
		Long: `Load the configuration, validate it against the embedded schema, and
compile every feature pattern and derived-column formula. Formula
tokens outside the arithmetic grammar are reported here, before any
ingestion run uses the config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to ingest config YAML (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	cfg, err := rules.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	result := validateResult{
		Required: cfg.Canonical.Required,
		Defaults: len(cfg.Canonical.Defaults),
	}
	for _, p := range cfg.Providers {
		result.Providers = append(result.Providers, p.Name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "config ok: %d providers (%s)\n",
		len(result.Providers), strings.Join(result.Providers, ", "))
	fmt.Fprintf(&sb, "required: %s\n", strings.Join(result.Required, ", "))
	fmt.Fprintf(&sb, "defaults: %d\n", result.Defaults)
	return emit(cmd.OutOrStdout(), opts.Format, sb.String(), result)
}
