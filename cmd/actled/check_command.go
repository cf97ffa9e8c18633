package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"actled/internal/faults"
	"actled/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the source, output device and state directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := newPrinter(cmd.OutOrStdout())
			results := preflight.RunAll(cfg)
			if failed := out.checks(results); failed > 0 {
				return faults.Wrap(faults.ErrResource, "check", "", fmt.Sprintf("%d of %d preflight checks failed", failed, len(results)), nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			return nil
		},
	}
}
