package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
	"github.com/kardexlabs/kardex/pkg/ingest"
	"github.com/kardexlabs/kardex/pkg/inventory"
)

func newImportCommand(a *app.App) *cobra.Command {
	var (
		areaID           string
		areaName         string
		bookType         string
		printDate        string
		responsibleName  string
		responsibleTitle string
		replace          bool
	)

	cmd := &cobra.Command{
		Use:   "import <records.csv>",
		Short: "Import an item list into the session",
		Long: `Import reads a CSV list (key,description,brand,model,serial) and adds
its items to the session under a new batch. Malformed keys and keys
already in the session are rejected individually.

With --replace, items previously imported from the same file name are
removed first, so a corrected list fully supersedes the original.`,
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

			meta := ingest.SourceMeta{
				FileName:  filepath.Base(args[0]),
				BookType:  bookType,
				AreaID:    areaID,
				AreaName:  areaName,
				PrintDate: printDate,
			}
			if responsibleName != "" {
				meta.Responsible = &inventory.Responsible{Name: responsibleName, Title: responsibleTitle}
			}

			var result ingest.Result
			if replace {
				result, err = session.ReplaceFile(cmd.Context(), records, meta)
			} else {
				result, err = session.ImportBatch(cmd.Context(), records, meta, func(processed, total int) {
					if !a.Config().Quiet {
						fmt.Printf("\rImporting... %d/%d", processed, total)
					}
				})
				if !a.Config().Quiet && len(records) > 0 {
					fmt.Println()
				}
			}
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d items (%d rejected) from %s [batch %s]\n",
				result.Inserted, result.Rejected, meta.FileName, result.BatchID)
			return nil
		},
	}

	cmd.Flags().StringVar(&areaID, "area", "", "origin area id for the imported items (required)")
	cmd.Flags().StringVar(&areaName, "area-name", "", "display name of the origin area")
	cmd.Flags().StringVar(&bookType, "book", "", "book type of the list (e.g. furniture, vehicles)")
	cmd.Flags().StringVar(&printDate, "print-date", "", "print date shown on the list")
	cmd.Flags().StringVar(&responsibleName, "responsible", "", "responsible party named on the list")
	cmd.Flags().StringVar(&responsibleTitle, "responsible-title", "", "responsible party's title")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace items previously imported from this file")
	_ = cmd.MarkFlagRequired("area")

	return cmd
}
