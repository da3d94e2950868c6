package htmltable

import (
	"reflect"
	"strings"
	"testing"

	"normalizer/internal/relation"
)

const page = `<html><body>
<table id="summary">
  <tr><th>Region</th><th>Total</th></tr>
  <tr><td>north</td><td>10</td></tr>
</table>
<table id="orders">
  <thead><tr><th>Order ID</th><th>Amount</th></tr></thead>
  <tbody>
    <tr><td>1</td><td>9.5</td></tr>
    <tr><td>2</td><td> 12 </td></tr>
  </tbody>
</table>
</body></html>`

// TestReadDataset verifies extraction, header normalization, and typing on
// the default first table.
func TestReadDataset(t *testing.T) {
	t.Parallel()

	ds, err := ReadDataset(strings.NewReader(page), Options{})
	if err != nil {
		t.Fatalf("ReadDataset: %v", err)
	}
	if got := ds.ColumnNames(); !reflect.DeepEqual(got, []string{"region", "total"}) {
		t.Errorf("columns = %v, want [region total]", got)
	}
	if ds.Rows[0][1] != int64(10) {
		t.Errorf("total = %v, want int64(10)", ds.Rows[0][1])
	}
}

// TestReadDatasetSelector verifies selector and index targeting.
func TestReadDatasetSelector(t *testing.T) {
	t.Parallel()

	ds, err := ReadDataset(strings.NewReader(page), Options{Selector: "#orders"})
	if err != nil {
		t.Fatalf("ReadDataset: %v", err)
	}
	if got := ds.ColumnNames(); !reflect.DeepEqual(got, []string{"order_id", "amount"}) {
		t.Errorf("columns = %v, want [order_id amount]", got)
	}
	amount, _ := ds.ColumnByName("amount")
	if amount.Type != relation.TypeFloat {
		t.Errorf("amount type = %q, want float", amount.Type)
	}

	byIndex, err := ReadDataset(strings.NewReader(page), Options{Index: 1})
	if err != nil {
		t.Fatalf("ReadDataset by index: %v", err)
	}
	if !reflect.DeepEqual(byIndex.ColumnNames(), ds.ColumnNames()) {
		t.Errorf("index 1 columns = %v, want same as #orders", byIndex.ColumnNames())
	}
}

// TestReadDatasetErrors covers the failure modes a caller must see.
func TestReadDatasetErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		html string
		opt  Options
	}{
		{"no table", "<p>nothing</p>", Options{}},
		{"index out of range", page, Options{Index: 5}},
		{"misaligned row", `<table><tr><th>a</th><th>b</th></tr><tr><td>1</td></tr></table>`, Options{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadDataset(strings.NewReader(tc.html), tc.opt); err == nil {
				t.Error("error expected")
			}
		})
	}
}
