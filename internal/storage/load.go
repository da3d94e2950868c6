package storage

import (
	"context"
	"fmt"

	"normalizer/internal/normalize"
	"normalizer/internal/relation"
)

// Load materializes a plan into the repository: it creates every table the
// plan names and inserts the projected rows parent-first, so foreign key
// checks never see a missing parent.
//
// tables maps relation name to its projected dataset; relations absent from
// the map (skipped during transform) are created but not populated. Returns
// the total number of rows written.
func Load(ctx context.Context, repo Repository, plan *normalize.Plan, tables map[string]*relation.Dataset, source *relation.Dataset) (int64, error) {
	specs, err := PlanTables(plan, source)
	if err != nil {
		return 0, err
	}
	specs, err = LoadOrder(specs)
	if err != nil {
		return 0, err
	}

	if err := repo.EnsureTables(ctx, specs); err != nil {
		return 0, err
	}

	var written int64
	for _, spec := range specs {
		ds, ok := tables[spec.Name]
		if !ok {
			continue
		}
		n, err := repo.InsertRows(ctx, spec.Name, ds.ColumnNames(), ds.Rows)
		if err != nil {
			return written, fmt.Errorf("load table %s: %w", spec.Name, err)
		}
		written += n
	}
	return written, nil
}
