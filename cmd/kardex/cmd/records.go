package cmd

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/ingest"
)

// loadRecords reads item records from a CSV file with columns
// key,description,brand,model,serial. A header row is detected by its
// invalid key and skipped. Short rows are padded; blank lines ignored.
func loadRecords(path string) ([]ingest.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}

	records := make([]ingest.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		for len(row) < 5 {
			row = append(row, "")
		}

		key := strings.TrimSpace(row[0])
		if i == 0 && !ingest.ValidKey(key) {
			continue // header row
		}

		records = append(records, ingest.Record{
			Key:         key,
			Description: row[1],
			Brand:       row[2],
			Model:       row[3],
			Serial:      row[4],
		})
	}
	return records, nil
}
