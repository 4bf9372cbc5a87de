// Package cmd defines the cobra command tree of the kardex CLI.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
)

// NewRootCommand creates the root command with all subcommands wired to
// the application context.
func NewRootCommand(a *app.App) *cobra.Command {
	var (
		verbose bool
		quiet   bool
		noColor bool
		dataDir string
	)

	rootCmd := &cobra.Command{
		Use:     "kardex",
		Short:   "Physical inventory reconciliation",
		Version: a.Version(),
		Long: `Kardex manages a physical inventory session: importing item lists,
locating items under custodians, reconciling corrected lists against the
recorded state, and backing the whole session up as a single archive.

Session data lives in the data directory (see --data-dir) and is
checkpointed automatically while you work.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.Config().UpdateFromFlags(verbose, quiet, noColor, dataDir)
			a.ReloadLogger()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "session data directory (default is $HOME/.kardex)")

	rootCmd.SetVersionTemplate("kardex {{.Version}}\n")

	rootCmd.AddCommand(newImportCommand(a))
	rootCmd.AddCommand(newDiffCommand(a))
	rootCmd.AddCommand(newCustodianCommand(a))
	rootCmd.AddCommand(newAssignCommand(a))
	rootCmd.AddCommand(newUnassignCommand(a))
	rootCmd.AddCommand(newRelabelCommand(a))
	rootCmd.AddCommand(newAdditionalCommand(a))
	rootCmd.AddCommand(newAreaCommand(a))
	rootCmd.AddCommand(newStatusCommand(a))
	rootCmd.AddCommand(newCheckpointCommand(a))
	rootCmd.AddCommand(newBackupCommand(a))
	rootCmd.AddCommand(newFinalizeCommand(a))
	rootCmd.AddCommand(newClearCommand(a))

	return rootCmd
}
