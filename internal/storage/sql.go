package storage

import (
	"strings"
)

// Dialect captures the per-backend differences in SQL generation so the
// statement builders can be shared. Placeholder numbering is 1-based.
type Dialect interface {
	// Ident quotes an identifier.
	Ident(name string) string

	// ColumnType maps a backend-neutral column spec to a dialect type.
	ColumnType(col ColumnSpec) string

	// Placeholder renders the n-th bind parameter ($1, ?, @p1, ...).
	Placeholder(n int) string

	// CreateClause opens a create-if-absent statement for the table.
	CreateClause(table string) string

	// InsertClause opens an insert statement; dialects that express
	// idempotency up front (INSERT OR IGNORE) do it here.
	InsertClause(table string) string

	// InsertSuffix closes an insert statement; dialects that express
	// idempotency at the end (ON CONFLICT DO NOTHING) do it here.
	InsertSuffix() string
}

// CreateTableSQL renders the full table definition: columns with
// nullability, the primary key, and foreign keys to parent tables.
func CreateTableSQL(d Dialect, t TableSpec) string {
	var parts []string

	for _, c := range t.Columns {
		col := d.Ident(c.Name) + " " + d.ColumnType(c)
		if !c.Nullable {
			col += " NOT NULL"
		}
		parts = append(parts, col)
	}

	if len(t.PrimaryKey) > 0 {
		parts = append(parts, "PRIMARY KEY ("+identList(d, t.PrimaryKey)+")")
	}

	for _, fk := range t.ForeignKeys {
		parts = append(parts, "FOREIGN KEY ("+identList(d, fk.Columns)+") REFERENCES "+
			d.Ident(fk.ParentTable)+" ("+identList(d, fk.ParentColumns)+")")
	}

	return d.CreateClause(t.Name) + " (\n  " + strings.Join(parts, ",\n  ") + "\n);"
}

// InsertSQL renders one multi-row insert and the flattened bind arguments.
// Callers must not pass empty rows.
func InsertSQL(d Dialect, table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString(d.InsertClause(table))
	b.WriteString(" (")
	b.WriteString(identList(d, columns))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(p))
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}

	b.WriteString(d.InsertSuffix())
	b.WriteString(";")
	return b.String(), args
}

func identList(d Dialect, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Ident(n)
	}
	return strings.Join(quoted, ", ")
}

// QuoteIdent double-quotes an identifier, escaping embedded quotes. The
// standard-conforming dialects share it.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BatchRows splits rows into chunks that stay under a driver's bind
// parameter limit. perRow must be at least 1.
func BatchRows(rows [][]any, perRow, maxArgs int) [][][]any {
	perBatch := maxArgs / perRow
	if perBatch < 1 {
		perBatch = 1
	}
	var out [][][]any
	for start := 0; start < len(rows); start += perBatch {
		end := start + perBatch
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}
