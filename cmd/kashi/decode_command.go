package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kashi/internal/decode"
	"kashi/internal/fileutil"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var variant int

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode one song file into a lyric document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := ctx.decodeOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("variant") {
				opts.SizeVariant = variant
			}

			input := args[0]
			doc, warnings, err := decode.DecodeFile(input, opts)
			if err != nil {
				return fmt.Errorf("decode %s: %w", input, err)
			}

			target := strings.TrimSpace(outputPath)
			if target == "-" {
				_, err := doc.WriteTo(cmd.OutOrStdout())
				return err
			}
			if target == "" {
				target = cfg.OutputPath(input)
			}
			if err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
				_, err := doc.WriteTo(w)
				return err
			}); err != nil {
				return fmt.Errorf("write document: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d compounds, %d warnings)\n", target, len(doc.Compounds), len(warnings))
			for _, w := range warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (\"-\" writes to stdout)")
	cmd.Flags().IntVar(&variant, "variant", 0, "JOY-U2 size variant (0-2), overrides decode.size_variant")
	return cmd
}
