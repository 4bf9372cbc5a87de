package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
)

func newBackupCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and restore session backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBackupExportCommand(a))
	cmd.AddCommand(newBackupRestoreCommand(a))
	cmd.AddCommand(newBackupPhotosCommand(a))
	return cmd
}

func newBackupExportCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <archive.zip>",
		Short: "Write a full session backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			result, err := session.ExportBackup(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Backup written to %s (%d assets)\n", result.Path, result.Assets)
			return nil
		},
	}
}

func newBackupRestoreCommand(a *app.App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <archive.zip>",
		Short: "Replace the session with a backup archive",
		Long: `Restore replaces the entire session (items, custodians, assignments,
assets) with the archive's contents. The current session is lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("restore replaces the current session; re-run with --yes to confirm")
			}

			session, err := a.Session()
			if err != nil {
				return err
			}

			result, err := session.ImportBackup(cmd.Context(), args[0], func(processed, total int) {
				if !a.Config().Quiet {
					fmt.Printf("\rRestoring assets... %d/%d", processed, total)
				}
			})
			if !a.Config().Quiet {
				fmt.Println()
			}
			if err != nil {
				return err
			}

			fmt.Printf("Restored %d items, %d assets (%d skipped)\n",
				result.Items, result.AssetsRestored, result.AssetsSkipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm replacing the current session")
	return cmd
}

func newBackupPhotosCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "photos <archive.zip>",
		Short: "Restore only the photos from a backup archive",
		Long: `Photos restores the binary assets from an archive without touching
the session state. Photos whose owner is no longer in the session are
ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			result, err := session.RestorePhotos(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Restored %d photos (%d ignored)\n", result.Restored, result.Ignored)
			return nil
		},
	}
}
