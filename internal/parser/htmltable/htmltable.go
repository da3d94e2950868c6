// Package htmltable extracts a dataset from an HTML <table>. The first
// matching table's header cells become columns and its body rows become
// records, which then go through the same typing pipeline as CSV input.
package htmltable

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	csvparser "normalizer/internal/parser/csv"
	"normalizer/internal/relation"
)

// Options select and interpret the table.
type Options struct {
	// Selector narrows the table search. Empty means "table".
	Selector string

	// Index picks among multiple matches, zero-based.
	Index int
}

// LoadFile reads an HTML file and extracts the selected table.
func LoadFile(path string, opt Options) (*relation.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open html: %w", err)
	}
	defer f.Close()

	ds, err := ReadDataset(f, opt)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// ReadDataset parses HTML from r and converts the selected table into a
// typed dataset.
//
// Header cells come from the table's first <tr> with <th> children, or its
// first row when the table has no header markup. Rows with a different cell
// count than the header are an error; a colspan cell would silently
// misalign every column after it.
func ReadDataset(r io.Reader, opt Options) (*relation.Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	selector := opt.Selector
	if selector == "" {
		selector = "table"
	}
	tables := doc.Find(selector)
	if tables.Length() == 0 {
		return nil, fmt.Errorf("no table matches %q", selector)
	}
	if opt.Index < 0 || opt.Index >= tables.Length() {
		return nil, fmt.Errorf("table index %d out of range: %d matches", opt.Index, tables.Length())
	}
	table := tables.Eq(opt.Index)

	var headers []string
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := rowCells(tr)
		if len(cells) == 0 {
			return
		}
		if headers == nil {
			headers = cells
			return
		}
		rows = append(rows, cells)
	})
	if headers == nil {
		return nil, fmt.Errorf("selected table has no rows")
	}

	for i, rec := range rows {
		if len(rec) != len(headers) {
			return nil, fmt.Errorf("table row %d has %d cells, header has %d", i+1, len(rec), len(headers))
		}
	}
	return csvparser.FromStrings(headers, rows)
}

// rowCells collects the trimmed text of a row's th/td cells.
func rowCells(tr *goquery.Selection) []string {
	var out []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}
