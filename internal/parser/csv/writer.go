package csv

import (
	"encoding/csv"
	"fmt"
	"os"

	"normalizer/internal/relation"
)

// WriteFile writes a dataset as UTF-8 CSV with a header row. Null cells
// become empty fields.
func WriteFile(path string, ds *relation.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(ds.ColumnNames()); err != nil {
		_ = f.Close()
		return err
	}
	rec := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, v := range row {
			rec[i] = relation.FormatValue(v)
		}
		if err := w.Write(rec); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
