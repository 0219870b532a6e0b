package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "surfacegate",
		Short:         "Asset gateway and catalog bridge for rendering engines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A local .env may carry SURFACEGATE_API_TOKEN; absence is fine.
			_ = godotenv.Load()
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))
	rootCmd.AddCommand(newPollCommand(ctx))
	rootCmd.AddCommand(newPromoteCommand(ctx))
	rootCmd.AddCommand(newProductsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
