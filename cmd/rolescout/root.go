package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dataDirFlag string

	ctx := newCommandContext(&dataDirFlag)

	rootCmd := &cobra.Command{
		Use:           "rolescout",
		Short:         "Discover, enrich and rank job postings into a local ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "",
		"Directory for the ledger, config and lock file (default $ROLESCOUT_DATA_DIR or .)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newDiscoverCommand(ctx))
	rootCmd.AddCommand(newEnrichCommand(ctx))
	rootCmd.AddCommand(newScoreCommand(ctx))
	rootCmd.AddCommand(newResetCommand(ctx))
	rootCmd.AddCommand(newTopCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newSecretCommand(ctx))

	return rootCmd
}
