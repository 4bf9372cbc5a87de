package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
)

func newCheckpointCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoint",
		Short: "Write the session snapshot now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			ack, err := session.Checkpoint()
			if err != nil {
				return err
			}
			fmt.Println(ack)
			return nil
		},
	}
}

func newFinalizeCommand(a *app.App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Mark the session read-only",
		Long: `Finalize writes a last snapshot and marks the session read-only.
A finalized session rejects every mutation; checkpoints become reported
no-ops. Use this once the physical count is signed off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("finalize makes the session read-only; re-run with --yes to confirm")
			}

			session, err := a.Session()
			if err != nil {
				return err
			}
			if err := session.Finalize(); err != nil {
				return err
			}

			fmt.Println("Session finalized (read-only).")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm finalizing the session")
	return cmd
}

func newClearCommand(a *app.App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Wipe the session and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("clear deletes all session data; re-run with --yes to confirm")
			}

			session, err := a.Session()
			if err != nil {
				return err
			}
			if err := session.ClearSession(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("Session cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm wiping all session data")
	return cmd
}
