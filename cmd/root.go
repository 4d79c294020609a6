package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tm",
		Short:         "TableMind (tm): run LLM-driven poker opponents",
		Long:          "tm (TableMind) manages conversation sessions for AI poker seats: it warms up opponent models, routes hand snapshots to them with cached context, and tracks the tendency profiles their actions reveal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRosterCmd(app),
		newWarmCmd(app),
		newDecideCmd(app),
		newPlayCmd(app),
	)

	return rootCmd
}
