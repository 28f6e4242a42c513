package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newCommandContext())
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studyctl",
		Short:         "Operate the StudyHub artifact store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.sqliteDSN, "sqlite", "", "Use a SQLite database instead of Postgres (POSTGRES_* env)")
	rootCmd.PersistentFlags().StringVar(&ctx.schedulesPath, "schedules", "", "Generation schedules YAML (defaults to GENERATION_SCHEDULES_YAML or the built-in table)")
	rootCmd.PersistentFlags().StringVar(&ctx.logMode, "log-mode", "production", "Logger mode")

	rootCmd.AddCommand(newScheduleCommand(ctx))
	rootCmd.AddCommand(newArtifactsCommand(ctx))
	rootCmd.AddCommand(newReconcileCommand(ctx))

	return rootCmd
}
