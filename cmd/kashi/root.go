package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configPath string
	ctx := newCommandContext(&configPath)

	root := &cobra.Command{
		Use:           "kashi",
		Short:         "Recover lyrics and timing from karaoke song files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Configuration file (default: $KASHI_CONFIG, then ~/.config/kashi/config.toml)")

	for _, build := range []func(*commandContext) *cobra.Command{
		newDecodeCommand,
		newBatchCommand,
		newInspectCommand,
		newExtractCommand,
		newCatalogCommand,
		newDoctorCommand,
		newConfigCommand,
	} {
		root.AddCommand(build(ctx))
	}
	return root
}
