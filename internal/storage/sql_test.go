package storage

import (
	"fmt"
	"reflect"
	"testing"
)

// plainDialect exercises the shared builders without any backend quirks.
type plainDialect struct{}

func (plainDialect) Ident(name string) string         { return QuoteIdent(name) }
func (plainDialect) ColumnType(col ColumnSpec) string { return col.Type }
func (plainDialect) Placeholder(n int) string         { return fmt.Sprintf("$%d", n) }
func (plainDialect) InsertSuffix() string             { return " ON CONFLICT DO NOTHING" }

func (plainDialect) CreateClause(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + QuoteIdent(table)
}

func (plainDialect) InsertClause(table string) string {
	return "INSERT INTO " + QuoteIdent(table)
}

// TestCreateTableSQL verifies column, primary key, and foreign key clauses.
func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	spec := TableSpec{
		Name: "emps",
		Columns: []ColumnSpec{
			{Name: "sid", Type: "integer"},
			{Name: "dept", Type: "text", Nullable: true},
		},
		PrimaryKey: []string{"sid"},
		ForeignKeys: []ForeignKeySpec{
			{Columns: []string{"dept"}, ParentTable: "depts", ParentColumns: []string{"dept"}},
		},
	}

	want := `CREATE TABLE IF NOT EXISTS "emps" (
  "sid" integer NOT NULL,
  "dept" text,
  PRIMARY KEY ("sid"),
  FOREIGN KEY ("dept") REFERENCES "depts" ("dept")
);`
	if got := CreateTableSQL(plainDialect{}, spec); got != want {
		t.Errorf("CreateTableSQL =\n%s\nwant\n%s", got, want)
	}
}

// TestInsertSQL verifies placeholder numbering and argument flattening.
func TestInsertSQL(t *testing.T) {
	t.Parallel()

	rows := [][]any{{int64(1), "a"}, {int64(2), nil}}
	got, args := InsertSQL(plainDialect{}, "emps", []string{"sid", "dept"}, rows)

	want := `INSERT INTO "emps" ("sid", "dept") VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING;`
	if got != want {
		t.Errorf("InsertSQL = %s, want %s", got, want)
	}
	if !reflect.DeepEqual(args, []any{int64(1), "a", int64(2), nil}) {
		t.Errorf("args = %v", args)
	}
}

// TestBatchRows verifies the bind-limit chunking math.
func TestBatchRows(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 10)
	for i := range rows {
		rows[i] = []any{i, i}
	}

	cases := []struct {
		name    string
		maxArgs int
		want    []int
	}{
		{"single batch", 100, []int{10}},
		{"even split", 8, []int{4, 4, 2}},
		{"limit below row width", 1, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var got []int
			for _, b := range BatchRows(rows, 2, tc.maxArgs) {
				got = append(got, len(b))
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("batch sizes = %v, want %v", got, tc.want)
			}
		})
	}
}
