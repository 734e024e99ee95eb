package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"kashi/internal/container"
	"kashi/internal/fileutil"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Write every container section of a song file to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input := args[0]
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}
			c, err := container.Open(data)
			if err != nil {
				return fmt.Errorf("open container: %w", err)
			}

			dir := strings.TrimSpace(outDir)
			if dir == "" {
				base := filepath.Base(input)
				dir = filepath.Join(cfg.Paths.OutputDir, strings.TrimSuffix(base, filepath.Ext(base))+".sections")
			}

			out := cmd.OutOrStdout()
			for _, s := range c.Sections() {
				target := filepath.Join(dir, sectionFileName(s))
				if err := fileutil.WriteFileAtomic(target, s.Data, 0o644); err != nil {
					return fmt.Errorf("write section %s: %w", s.Name, err)
				}
				fmt.Fprintf(out, "%s\t%d bytes\n", target, len(s.Data))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "dir", "d", "", "Destination directory (defaults to <output_dir>/<name>.sections)")
	return cmd
}

func sectionFileName(s container.RawSection) string {
	name := s.Name
	if s.Parent != "" {
		name = s.Parent + "." + name
	}
	if s.Name == container.SectionTitleCard {
		return name + ".png"
	}
	return name + ".bin"
}
