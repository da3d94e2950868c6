// Package render turns plans and analyses into their file outputs: SQL DDL,
// a Mermaid entity-relationship diagram, a plan README, and a plain-text
// analysis report.
package render

import (
	"fmt"
	"strings"

	"normalizer/internal/normalize"
	"normalizer/internal/relation"
)

// SQLDDL renders one CREATE TABLE statement per plan relation, with column
// types inferred from the source dataset the plan was built from.
func SQLDDL(plan *normalize.Plan, source *relation.Dataset) (string, error) {
	stmts := make([]string, 0, len(plan.Relations))

	for _, rel := range plan.Relations {
		var parts []string
		for _, name := range rel.Attrs {
			idx := source.ColumnIndex(name)
			if idx < 0 {
				return "", fmt.Errorf("render: relation %s column %s not in source dataset", rel.Name, name)
			}
			sqlType := inferSQLType(source, idx)
			nullable := " NULL"
			if rel.PrimaryKey.Contains(name) {
				nullable = ""
			}
			parts = append(parts, fmt.Sprintf("    %s %s%s", name, sqlType, nullable))
		}

		parts = append(parts, fmt.Sprintf("    PRIMARY KEY (%s)", strings.Join(rel.PrimaryKey, ", ")))

		for _, fk := range rel.ForeignKeys {
			parts = append(parts, fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)",
				strings.Join(fk.Columns, ", "), fk.ParentRelation, strings.Join(fk.ParentColumns, ", ")))
		}

		stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s (\n%s\n);", rel.Name, strings.Join(parts, ",\n")))
	}

	return strings.Join(stmts, "\n\n"), nil
}

// inferSQLType maps an inferred column type to a portable SQL type.
// Integer columns that fit in 32 bits become INTEGER, larger ones BIGINT;
// text capacity is the longest observed value plus headroom.
func inferSQLType(ds *relation.Dataset, idx int) string {
	switch ds.Columns[idx].Type {
	case relation.TypeInteger:
		for _, row := range ds.Rows {
			if v, ok := row[idx].(int64); ok && (v > 2147483647 || v < -2147483648) {
				return "BIGINT"
			}
		}
		return "INTEGER"
	case relation.TypeFloat:
		return "DECIMAL(18,6)"
	case relation.TypeBool:
		return "BOOLEAN"
	case relation.TypeDate:
		return "TIMESTAMP"
	default:
		maxLen := 0
		for _, row := range ds.Rows {
			if n := len(relation.FormatValue(row[idx])); n > maxLen {
				maxLen = n
			}
		}
		if maxLen == 0 {
			maxLen = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", maxLen+50)
	}
}
