package storage

import (
	"fmt"

	"github.com/yourbasic/graph"

	"normalizer/internal/normalize"
	"normalizer/internal/relation"
)

// TableSpec is a backend-neutral table definition derived from one plan
// relation. Backends translate Type into their own dialect.
type TableSpec struct {
	Name        string
	Columns     []ColumnSpec
	PrimaryKey  []string
	ForeignKeys []ForeignKeySpec
}

// ColumnSpec carries the inferred scalar type plus, for text columns, a
// capacity hint measured from the source data.
type ColumnSpec struct {
	Name     string
	Type     string // one of the relation.Type* constants
	Length   int    // meaningful for text columns only
	Nullable bool
}

// ForeignKeySpec references a parent table's primary key.
type ForeignKeySpec struct {
	Columns       []string
	ParentTable   string
	ParentColumns []string
}

// textHeadroom is added to the longest observed text value when sizing
// varchar columns, so slightly longer future values still fit.
const textHeadroom = 50

// PlanTables derives one TableSpec per plan relation. Column types and
// nullability come from the source dataset the plan was built from; text
// column capacities are measured from its values.
func PlanTables(plan *normalize.Plan, source *relation.Dataset) ([]TableSpec, error) {
	lengths := textLengths(source)

	specs := make([]TableSpec, 0, len(plan.Relations))
	for _, rel := range plan.Relations {
		spec := TableSpec{
			Name:       rel.Name,
			PrimaryKey: append([]string(nil), rel.PrimaryKey...),
		}
		for _, name := range rel.Attrs {
			col, ok := source.ColumnByName(name)
			if !ok {
				return nil, fmt.Errorf("storage: relation %s column %s not in source dataset", rel.Name, name)
			}
			spec.Columns = append(spec.Columns, ColumnSpec{
				Name:     col.Name,
				Type:     col.Type,
				Length:   lengths[col.Name] + textHeadroom,
				Nullable: col.Nullable && !rel.PrimaryKey.Contains(col.Name),
			})
		}
		for _, fk := range rel.ForeignKeys {
			spec.ForeignKeys = append(spec.ForeignKeys, ForeignKeySpec{
				Columns:       append([]string(nil), fk.Columns...),
				ParentTable:   fk.ParentRelation,
				ParentColumns: append([]string(nil), fk.ParentColumns...),
			})
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// textLengths measures the longest formatted value per column.
func textLengths(ds *relation.Dataset) map[string]int {
	out := make(map[string]int, len(ds.Columns))
	for i, col := range ds.Columns {
		max := 0
		for _, row := range ds.Rows {
			if n := len(relation.FormatValue(row[i])); n > max {
				max = n
			}
		}
		out[col.Name] = max
	}
	return out
}

// LoadOrder sorts specs so every table precedes the tables that reference
// it. Foreign keys among plan relations are acyclic by construction, so a
// cycle here means the specs were assembled by hand and are invalid.
func LoadOrder(specs []TableSpec) ([]TableSpec, error) {
	index := make(map[string]int, len(specs))
	for i, s := range specs {
		index[s.Name] = i
	}

	g := graph.New(len(specs))
	for i, s := range specs {
		for _, fk := range s.ForeignKeys {
			parent, ok := index[fk.ParentTable]
			if !ok {
				return nil, fmt.Errorf("storage: table %s references unknown table %s", s.Name, fk.ParentTable)
			}
			g.Add(parent, i)
		}
	}

	order, ok := graph.TopSort(g)
	if !ok {
		return nil, fmt.Errorf("storage: foreign key cycle among tables")
	}

	sorted := make([]TableSpec, 0, len(specs))
	for _, i := range order {
		sorted = append(sorted, specs[i])
	}
	return sorted, nil
}
