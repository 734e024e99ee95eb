package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kashi/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that configured paths are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, line := range checkLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			if len(preflight.Failed(results)) > 0 {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
