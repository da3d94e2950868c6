package relation

// Scalar column types inferred at load time. The analysis itself only cares
// about value identity, but the types drive DDL generation and rendering.
const (
	TypeText    = "text"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeBool    = "boolean"
	TypeDate    = "date"
)

// Column describes one column of a loaded dataset.
// Columns are immutable once the dataset is built.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Dataset is a rectangular, in-memory dataset.
//
// Rows are value slices aligned to Columns order (no per-row maps; same
// indexed representation the load engine uses for its hot path). A nil cell
// is a null. Datasets are never mutated after construction; every
// transformation produces a new derived Dataset.
type Dataset struct {
	Columns []Column
	Rows    [][]any
}

// NewDataset builds a dataset and its column index.
// Rows shorter than the column list are rejected by the parsers, not here.
func NewDataset(columns []Column, rows [][]any) *Dataset {
	return &Dataset{Columns: columns, Rows: rows}
}

// ColumnIndex returns the positional index of a column name, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns column names in dataset order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// AttrSet returns all column names as a canonical attribute set.
func (d *Dataset) AttrSet() AttrSet {
	return NewAttrSet(d.ColumnNames()...)
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// ColumnByName returns the column definition for name.
func (d *Dataset) ColumnByName(name string) (Column, bool) {
	if i := d.ColumnIndex(name); i >= 0 {
		return d.Columns[i], true
	}
	return Column{}, false
}
