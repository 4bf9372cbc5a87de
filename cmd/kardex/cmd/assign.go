package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
	"github.com/kardexlabs/kardex/pkg/errors"
)

func newAssignCommand(a *app.App) *cobra.Command {
	var (
		location string
		confirm  bool
	)

	cmd := &cobra.Command{
		Use:   "assign <key>...",
		Short: "Locate items under the active custodian",
		Long: `Assign marks items as physically located under the active custodian.
Items held by a different custodian are reported as conflicts; re-run
with --confirm to transfer them one by one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			if confirm {
				for _, key := range args {
					if err := session.Custody().Reassign(key, location, true); err != nil {
						return err
					}
					fmt.Printf("Transferred %s\n", key)
				}
				_, err := session.Checkpoint()
				return err
			}

			result, err := session.Custody().Assign(args, location)
			if err != nil {
				return err
			}

			if len(result.Assigned) > 0 {
				fmt.Printf("Assigned: %s\n", strings.Join(result.Assigned, ", "))
			}
			for _, conflict := range result.Conflicts {
				fmt.Printf("Conflict: %s is held by %s (re-run with --confirm to transfer)\n",
					conflict.Key, conflict.CurrentCustodian)
			}
			if len(result.Closed) > 0 {
				fmt.Printf("Area closed: %s\n", strings.Join(result.Closed, ", "))
			}
			if len(result.Missing) > 0 {
				fmt.Printf("Unknown keys: %s\n", strings.Join(result.Missing, ", "))
			}

			_, err = session.Checkpoint()
			return err
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "precise location (defaults to the custodian's primary location)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm transfers of items held by another custodian")
	return cmd
}

func newUnassignCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <key>...",
		Short: "Reverse item assignments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			for _, key := range args {
				if err := session.Custody().Unassign(key); err != nil {
					if errors.IsNotFound(err) || errors.IsValidationError(err) {
						fmt.Printf("Skipping %s: %v\n", key, err)
						continue
					}
					return err
				}
				fmt.Printf("Unassigned %s\n", key)
			}

			_, err = session.Checkpoint()
			return err
		},
	}
}

func newRelabelCommand(a *app.App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "relabel <key>",
		Short: "Flag a located item for relabeling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			if err := session.Custody().SetRelabel(args[0], !clear); err != nil {
				return err
			}
			if _, err := session.Checkpoint(); err != nil {
				return err
			}

			if clear {
				fmt.Printf("Relabel flag cleared on %s\n", args[0])
			} else {
				fmt.Printf("Relabel requested for %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear the relabel flag instead of setting it")
	return cmd
}
