package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
	"github.com/kardexlabs/kardex/pkg/ingest"
	"github.com/kardexlabs/kardex/pkg/reconcile"
)

func newDiffCommand(a *app.App) *cobra.Command {
	var (
		apply           bool
		includeRemovals bool
		areaID          string
		bookType        string
	)

	cmd := &cobra.Command{
		Use:   "diff <records.csv>",
		Short: "Compare a corrected list against the session",
		Long: `Diff compares a freshly parsed list against every item in the
session, whichever file each item arrived from. Descriptive fields are
compared after normalization, so accents, casing and spacing differences
are not reported as changes.

Without --apply the change set is only printed. With --apply, additions
and modifications are executed; removals are excluded unless
--include-removals is also given, since a missing row is more often an
extraction defect than a real retirement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.Session()
			if err != nil {
				return err
			}

			records, err := loadRecords(args[0])
			if err != nil {
				return err
			}

			fileName := filepath.Base(args[0])
			cs := session.ComputeDiff(records, fileName)
			printChangeSet(cs)

			if !apply {
				return nil
			}

			if includeRemovals {
				for _, removal := range cs.Removals {
					removal.Include = true
				}
			}

			result, err := session.ApplyDiff(cmd.Context(), cs, ingest.SourceMeta{
				FileName: fileName,
				AreaID:   areaID,
				BookType: bookType,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Applied: %d added, %d modified, %d removed, %d skipped\n",
				result.Added, result.Modified, result.Removed, result.Skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "apply the change set after printing it")
	cmd.Flags().BoolVar(&includeRemovals, "include-removals", false, "also apply removals (excluded by default)")
	cmd.Flags().StringVar(&areaID, "area", "", "origin area id for added items")
	cmd.Flags().StringVar(&bookType, "book", "", "book type for added items")

	return cmd
}

func printChangeSet(cs *reconcile.ChangeSet) {
	if cs.Empty() {
		fmt.Println("No differences found.")
		if cs.Rejected > 0 {
			fmt.Printf("(%d records rejected)\n", cs.Rejected)
		}
		return
	}

	if len(cs.Additions) > 0 {
		fmt.Printf("Additions (%d):\n", len(cs.Additions))
		for _, addition := range cs.Additions {
			fmt.Printf("  + %s  %s\n", addition.Record.Key, addition.Record.Description)
		}
	}
	if len(cs.Modifications) > 0 {
		fmt.Printf("Modifications (%d):\n", len(cs.Modifications))
		for _, modification := range cs.Modifications {
			fmt.Printf("  ~ %s\n", modification.Key)
			for _, field := range modification.Fields {
				fmt.Printf("      %s: %q -> %q\n", field.Field, field.Old, field.New)
			}
		}
	}
	if len(cs.Removals) > 0 {
		fmt.Printf("Removals (%d, excluded by default):\n", len(cs.Removals))
		for _, removal := range cs.Removals {
			fmt.Printf("  - %s\n", removal.Key)
		}
	}
	if cs.Rejected > 0 {
		fmt.Printf("Rejected records: %d\n", cs.Rejected)
	}
}
