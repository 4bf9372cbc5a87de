package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
)

func newAdditionalCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "additional",
		Short: "Manage non-catalogued items found in the field",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAdditionalAddCommand(a))
	cmd.AddCommand(newAdditionalListCommand(a))
	cmd.AddCommand(newAdditionalLinkCommand(a))
	cmd.AddCommand(newAdditionalRemoveCommand(a))
	return cmd
}

func newAdditionalAddCommand(a *app.App) *cobra.Command {
	var (
		brand    string
		model    string
		serial   string
		personal bool
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Declare an additional item under the active custodian",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			additional, err := session.Custody().DeclareAdditional(args[0], brand, model, serial, personal)
			if err != nil {
				return err
			}
			if _, err := session.Checkpoint(); err != nil {
				return err
			}

			fmt.Printf("Additional item declared [%s]\n", additional.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "brand")
	cmd.Flags().StringVar(&model, "model", "", "model")
	cmd.Flags().StringVar(&serial, "serial", "", "serial number")
	cmd.Flags().BoolVar(&personal, "personal", false, "mark as a personal (non-institutional) item")
	return cmd
}

func newAdditionalListCommand(a *app.App) *cobra.Command {
	var custodian string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List additional items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			items := session.Store().Additionals().List()
			if custodian != "" {
				items = session.Store().Additionals().ByCustodian(custodian)
			}
			if len(items) == 0 {
				fmt.Println("No additional items.")
				return nil
			}

			for _, item := range items {
				flags := ""
				if item.Personal {
					flags = " (personal)"
				}
				if item.AssignedKey != "" {
					flags += " -> " + item.AssignedKey
				}
				fmt.Printf("%s  %s  custodian=%s%s\n", item.ID, item.Description, item.Custodian, flags)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&custodian, "custodian", "", "only list items declared by this custodian")
	return cmd
}

func newAdditionalLinkCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "link <id> <key>",
		Short: "Associate an additional item with a catalogued key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			if err := session.Custody().LinkAdditional(args[0], args[1]); err != nil {
				return err
			}
			if _, err := session.Checkpoint(); err != nil {
				return err
			}
			fmt.Printf("Linked %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newAdditionalRemoveCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an additional item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}
			if err := session.Custody().RemoveAdditional(args[0]); err != nil {
				return err
			}
			if _, err := session.Checkpoint(); err != nil {
				return err
			}
			fmt.Println("Additional item removed.")
			return nil
		},
	}
}
