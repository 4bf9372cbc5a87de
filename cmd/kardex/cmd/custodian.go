package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
	"github.com/kardexlabs/kardex/pkg/inventory"
)

func newCustodianCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custodian",
		Short: "Manage custodians",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newCustodianAddCommand(a))
	cmd.AddCommand(newCustodianListCommand(a))
	cmd.AddCommand(newCustodianActivateCommand(a))
	cmd.AddCommand(newCustodianDeactivateCommand(a))
	cmd.AddCommand(newCustodianRemoveCommand(a))
	return cmd
}

func newCustodianAddCommand(a *app.App) *cobra.Command {
	var (
		area      string
		locations []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a custodian",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			custodian := inventory.Custodian{
				ID:        uuid.NewString(),
				Name:      args[0],
				Area:      area,
				Locations: locations,
			}
			if err := session.Store().SetCustodian(custodian); err != nil {
				return err
			}
			if _, err := session.Checkpoint(); err != nil {
				return err
			}

			fmt.Printf("Custodian %s registered [%s]\n", custodian.Name, custodian.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&area, "area", "", "area the custodian belongs to (required)")
	cmd.Flags().StringSliceVar(&locations, "location", nil, "location the custodian occupies (repeatable)")
	_ = cmd.MarkFlagRequired("area")
	return cmd
}

func newCustodianListCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered custodians",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			store := session.Store()

			custodians := store.Custodians().List()
			if len(custodians) == 0 {
				fmt.Println("No custodians registered.")
				return nil
			}

			active, hasActive := store.ActiveCustodian()
			for _, custodian := range custodians {
				marker := " "
				if hasActive && custodian.ID == active.ID {
					marker = "*"
				}
				fmt.Printf("%s %s  area=%s  locations=%s  [%s]\n",
					marker, custodian.Name, custodian.Area,
					strings.Join(custodian.Locations, ","), custodian.ID)
			}
			return nil
		},
	}
}

func newCustodianActivateCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id-or-name>",
		Short: "Make a custodian the one receiving assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			store := session.Store()

			id := args[0]
			if !store.Custodians().Exists(id) {
				if byName, ok := store.Custodians().GetByName(id); ok {
					id = byName.ID
				}
			}
			if err := store.ActivateCustodian(id); err != nil {
				return err
			}

			active, _ := store.ActiveCustodian()
			fmt.Printf("Active custodian: %s\n", active.Name)
			return nil
		},
	}
}

func newCustodianDeactivateCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Clear the active custodian",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			session.Store().DeactivateCustodian()
			fmt.Println("No custodian active.")
			return nil
		},
	}
}

func newCustodianRemoveCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a custodian (located items keep their record)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			if err := session.Store().DeleteCustodian(args[0]); err != nil {
				return err
			}
			if _, err := session.Checkpoint(); err != nil {
				return err
			}
			fmt.Println("Custodian removed.")
			return nil
		},
	}
}
