// Package transform replays a decomposition plan against new data: it
// projects the dataset onto every planned relation, deduplicates rows, and
// enforces the plan's referential integrity before anything is handed to a
// sink.
package transform

import (
	"fmt"
	"sort"
	"strings"

	"normalizer/internal/normalize"
	"normalizer/internal/relation"
)

// Result holds the materialized relations of one plan application.
type Result struct {
	// Tables maps relation name to its projected, deduplicated dataset.
	Tables map[string]*relation.Dataset

	// Skipped lists relations left out in non-strict mode because the
	// dataset lacked their columns. Only optional relations (never the
	// parent of a foreign key) can be skipped.
	Skipped []string

	// Warnings describe what was skipped or left unverified.
	Warnings []string
}

// Apply materializes plan against ds.
//
// Column checks run before any projection. In strict mode a single missing
// plan column aborts with a SchemaMismatchError listing every missing
// column and no relations are produced. In non-strict mode a relation whose
// missing columns are confined to it may be skipped with a warning,
// provided no other relation references it; a missing column in a required
// relation still fails.
//
// Every output relation is deduplicated and sorted by its primary key, so
// applying the same plan to the same dataset twice yields identical tables.
// Foreign keys are validated after projection: a child value with no parent
// row aborts with an OrphanForeignKeyError naming the offending values
// rather than silently dropping rows.
func Apply(plan *normalize.Plan, ds *relation.Dataset, strict bool) (*Result, error) {
	if missing := missingColumns(plan, ds); len(missing) > 0 && strict {
		return nil, &relation.SchemaMismatchError{Missing: missing}
	}

	res := &Result{Tables: make(map[string]*relation.Dataset, len(plan.Relations))}
	parents := plan.ReferencedParents()

	for _, rel := range plan.Relations {
		missing := relationMissing(rel, ds)
		if len(missing) == 0 {
			res.Tables[rel.Name] = project(rel, ds)
			continue
		}
		if parents[rel.Name] {
			// A referenced parent cannot be skipped without orphaning its
			// children; this is a mismatch even in non-strict mode.
			return nil, &relation.SchemaMismatchError{Missing: missing}
		}
		res.Skipped = append(res.Skipped, rel.Name)
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"skipped optional relation %s: missing columns %s",
			rel.Name, strings.Join(missing, ", "),
		))
	}

	for _, rel := range plan.Relations {
		child, ok := res.Tables[rel.Name]
		if !ok {
			continue
		}
		for _, fk := range rel.ForeignKeys {
			parent, ok := res.Tables[fk.ParentRelation]
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"foreign key %s(%s) unverified: parent %s not materialized",
					rel.Name, strings.Join(fk.Columns, ","), fk.ParentRelation,
				))
				continue
			}
			if err := validateForeignKey(rel.Name, child, fk, parent); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// missingColumns collects every plan-referenced column absent from ds.
func missingColumns(plan *normalize.Plan, ds *relation.Dataset) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rel := range plan.Relations {
		for _, c := range rel.Attrs {
			if ds.ColumnIndex(c) >= 0 {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func relationMissing(rel normalize.RelationSchema, ds *relation.Dataset) []string {
	var out []string
	for _, c := range rel.Attrs {
		if ds.ColumnIndex(c) < 0 {
			out = append(out, c)
		}
	}
	return out
}

// project builds the relation's dataset: the plan's columns in canonical
// order, rows deduplicated on their full canonical form and sorted by
// primary key so repeated applications produce identical output.
func project(rel normalize.RelationSchema, ds *relation.Dataset) *relation.Dataset {
	idx := make([]int, len(rel.Attrs))
	cols := make([]relation.Column, len(rel.Attrs))
	for i, name := range rel.Attrs {
		j := ds.ColumnIndex(name)
		idx[i] = j
		cols[i] = ds.Columns[j]
	}

	keyIdx := make([]int, 0, len(rel.PrimaryKey))
	for i, name := range rel.Attrs {
		if rel.PrimaryKey.Contains(name) {
			keyIdx = append(keyIdx, i)
		}
	}

	type projected struct {
		row  []any
		key  string
		full string
	}
	var rows []projected
	seen := make(map[string]struct{}, len(ds.Rows))
	for _, src := range ds.Rows {
		row := make([]any, len(idx))
		fullParts := make([]string, len(idx))
		for i, j := range idx {
			if j < len(src) {
				row[i] = src[j]
			}
			fullParts[i] = relation.FormatValue(row[i])
		}
		full := strings.Join(fullParts, "\x1f")
		if _, ok := seen[full]; ok {
			continue
		}
		seen[full] = struct{}{}

		keyParts := make([]string, len(keyIdx))
		for i, j := range keyIdx {
			keyParts[i] = fullParts[j]
		}
		rows = append(rows, projected{row: row, key: strings.Join(keyParts, "\x1f"), full: full})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].key != rows[j].key {
			return rows[i].key < rows[j].key
		}
		return rows[i].full < rows[j].full
	})

	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return relation.NewDataset(cols, out)
}

// validateForeignKey checks that every non-null child key tuple exists in
// the parent's primary key. Orphans are reported as distinct canonical
// tuples in sorted order.
func validateForeignKey(childName string, child *relation.Dataset, fk normalize.ForeignKey, parent *relation.Dataset) error {
	parentIdx := make([]int, len(fk.ParentColumns))
	for i, c := range fk.ParentColumns {
		parentIdx[i] = parent.ColumnIndex(c)
	}
	childIdx := make([]int, len(fk.Columns))
	for i, c := range fk.Columns {
		childIdx[i] = child.ColumnIndex(c)
	}
	for _, j := range append(append([]int(nil), parentIdx...), childIdx...) {
		if j < 0 {
			return &relation.InternalInvariantError{
				Reason: fmt.Sprintf("foreign key %s(%s) references a column missing after projection",
					childName, strings.Join(fk.Columns, ",")),
			}
		}
	}

	known := make(map[string]struct{}, len(parent.Rows))
	for _, row := range parent.Rows {
		known[joinValues(row, parentIdx)] = struct{}{}
	}

	orphanSet := make(map[string]struct{})
	for _, row := range child.Rows {
		key, hasNull := joinValuesChecked(row, childIdx)
		if hasNull {
			// A null reference points at nothing; there is no parent to miss.
			continue
		}
		if _, ok := known[key]; !ok {
			orphanSet[key] = struct{}{}
		}
	}
	if len(orphanSet) == 0 {
		return nil
	}

	orphans := make([]string, 0, len(orphanSet))
	for v := range orphanSet {
		orphans = append(orphans, strings.ReplaceAll(v, "\x1f", ","))
	}
	sort.Strings(orphans)
	return &relation.OrphanForeignKeyError{
		Relation: childName,
		Parent:   fk.ParentRelation,
		Columns:  fk.Columns,
		Values:   orphans,
	}
}

func joinValues(row []any, idx []int) string {
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = relation.FormatValue(row[j])
	}
	return strings.Join(parts, "\x1f")
}

func joinValuesChecked(row []any, idx []int) (string, bool) {
	parts := make([]string, len(idx))
	for i, j := range idx {
		v := relation.FormatValue(row[j])
		if v == "" {
			return "", true
		}
		parts[i] = v
	}
	return strings.Join(parts, "\x1f"), false
}
