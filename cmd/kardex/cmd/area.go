package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
)

func newAreaCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Inspect and close areas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAreaListCommand(a))
	cmd.AddCommand(newAreaCloseCommand(a))
	return cmd
}

func newAreaListCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known areas with their completion status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			store := session.Store()

			areas := store.Areas()
			if len(areas) == 0 {
				fmt.Println("No areas known yet; import a list first.")
				return nil
			}

			for _, area := range areas {
				status := "in progress"
				if store.IsAreaClosed(area.ID) {
					status = "closed"
				} else if store.IsAreaCompleted(area.ID) {
					status = "completed"
				}

				line := fmt.Sprintf("%s  %s  items=%d  %s", area.ID, area.Name, store.AreaCount(area.ID), status)
				if area.Responsible != nil {
					line += fmt.Sprintf("  responsible=%s (%s)", area.Responsible.Name, area.Responsible.Title)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newAreaCloseCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "close <area-id>",
		Short: "Administratively close an area (terminal)",
		Long: `Close finalizes an area. A closed area is frozen: its items can no
longer be assigned or unassigned, its completion status never changes,
and reconciliation skips it. Closure cannot be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			if err := session.Store().CloseArea(args[0]); err != nil {
				return err
			}
			session.Store().LogActivity("close-area", args[0])
			if _, err := session.Checkpoint(); err != nil {
				return err
			}

			fmt.Printf("Area %s closed.\n", args[0])
			return nil
		},
	}
}
