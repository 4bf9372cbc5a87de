package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
	"github.com/kardexlabs/kardex/pkg/inventory"
)

func newStatusCommand(a *app.App) *cobra.Command {
	var showLog bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			store := session.Store()

			total := store.Items().Len()
			located := 0
			relabel := 0
			mismatched := 0
			store.Items().ForEach(func(_ string, item *inventory.Item) bool {
				if item.Located {
					located++
				}
				if item.RelabelRequested {
					relabel++
				}
				if item.AreaMismatch {
					mismatched++
				}
				return true
			})

			fmt.Printf("Session started: %s\n", store.SessionStart())
			fmt.Printf("Items: %d total, %d located, %d pending\n", total, located, total-located)
			if relabel > 0 {
				fmt.Printf("Relabel requests: %d\n", relabel)
			}
			if mismatched > 0 {
				fmt.Printf("Items found outside their origin area: %d\n", mismatched)
			}
			fmt.Printf("Additional items: %d\n", store.Additionals().Len())
			fmt.Printf("Custodians: %d\n", store.Custodians().Len())
			fmt.Printf("Areas: %d known, %d completed, %d closed\n",
				len(store.Areas()), len(store.CompletedAreas()), len(store.ClosedAreas()))

			if active, ok := store.ActiveCustodian(); ok {
				fmt.Printf("Active custodian: %s\n", active.Name)
			}
			if store.Finished() {
				fmt.Println("Inventory FINISHED: every item located.")
			}
			if store.ReadOnly() {
				fmt.Println("Session is finalized (read-only).")
			}

			if showLog {
				fmt.Println("\nActivity log:")
				for _, entry := range store.ActivityLog() {
					fmt.Println("  " + entry)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showLog, "log", false, "also print the activity log")
	return cmd
}
