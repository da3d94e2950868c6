// Package csv loads delimiter-separated files into typed datasets.
//
// Loading is deliberately strict about shape (a ragged record is an error,
// not a skip) and lenient about content: cell typing is inferred from the
// data, empty cells become nulls, and header names are normalized into safe
// lowercase identifiers.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"normalizer/internal/relation"
)

// Options control parsing. The zero value reads comma-separated UTF-8 with
// a header row.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// NoHeader synthesizes column names col_1..col_n and treats the first
	// record as data.
	NoHeader bool

	// LazyQuotes is passed through to the underlying reader.
	LazyQuotes bool

	// Encoding names the source encoding: "", "utf-8", "latin1",
	// "windows-1252", or "utf-16". UTF-8 input may carry a BOM.
	Encoding string

	// HeaderMap renames source headers before normalization.
	HeaderMap map[string]string
}

func (o Options) withDefaults() Options {
	if o.Comma == 0 {
		o.Comma = ','
	}
	return o
}

// LoadFile reads path into a typed dataset, decoding per opt.Encoding.
func LoadFile(path string, opt Options) (*relation.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	dec, err := decoderFor(opt.Encoding)
	if err != nil {
		return nil, err
	}
	ds, err := ReadDataset(transform.NewReader(f, dec), opt)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		// BOMOverride also catches UTF-16 files mislabeled as UTF-8.
		return unicode.BOMOverride(encoding.Nop.NewDecoder()), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ReadDataset parses CSV from r into a typed dataset.
func ReadDataset(r io.Reader, opt Options) (*relation.Dataset, error) {
	opt = opt.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = opt.Comma
	cr.LazyQuotes = opt.LazyQuotes
	cr.ReuseRecord = false

	var headers []string
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}
		if headers == nil {
			if opt.NoHeader {
				headers = make([]string, len(rec))
				for i := range headers {
					headers[i] = fmt.Sprintf("col_%d", i+1)
				}
				rows = append(rows, rec)
			} else {
				headers = make([]string, len(rec))
				for i, h := range rec {
					if i == 0 {
						h = strings.TrimPrefix(h, "\uFEFF")
					}
					headers[i] = strings.TrimSpace(h)
				}
			}
			continue
		}
		rows = append(rows, rec)
	}
	if headers == nil {
		return nil, fmt.Errorf("csv read: empty input")
	}

	if len(opt.HeaderMap) > 0 {
		for i, h := range headers {
			if mapped, ok := opt.HeaderMap[h]; ok {
				headers[i] = mapped
			}
		}
	}
	return FromStrings(headers, rows)
}

// FromStrings builds a typed dataset from pre-split string cells: headers
// are normalized and deduplicated, column types inferred from the values,
// and cells converted with empty strings becoming nulls.
func FromStrings(headers []string, rows [][]string) (*relation.Dataset, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("no columns")
	}
	names := columnNames(headers)
	for i, rec := range rows {
		if len(rec) != len(headers) {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", i+1, len(headers), len(rec))
		}
	}

	types := inferTypes(rows, len(headers))

	cols := make([]relation.Column, len(headers))
	typed := make([][]any, len(rows))
	for r := range typed {
		typed[r] = make([]any, len(headers))
	}
	for c := range headers {
		nullable := false
		for r, rec := range rows {
			v, ok := convertCell(rec[c], types[c])
			if !ok {
				nullable = true
			}
			typed[r][c] = v
		}
		cols[c] = relation.Column{Name: names[c], Type: types[c], Nullable: nullable}
	}
	return relation.NewDataset(cols, typed), nil
}

// columnNames normalizes headers into identifiers, inventing names for
// blanks and suffixing duplicates.
func columnNames(headers []string) []string {
	out := make([]string, len(headers))
	used := make(map[string]int, len(headers))
	for i, h := range headers {
		name := NormalizeName(h)
		if name == "" {
			name = fmt.Sprintf("col_%d", i+1)
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		out[i] = name
	}
	return out
}

// NormalizeName converts an arbitrary header into a safe lowercase
// identifier: whitespace and separators become underscores, anything
// outside [a-z0-9_] is dropped.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '-' || r == '.' || r == '/' || r == '\\' || r == ':' || r == ';':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			lastUnderscore = r == '_'
		}
	}
	return strings.Trim(b.String(), "_")
}

// inferTypes infers a coarse type per column from the non-empty values.
// More specific types win; a column with no values at all stays text.
func inferTypes(rows [][]string, cols int) []string {
	out := make([]string, cols)
	for c := range out {
		seen := false
		allInt, allFloat, allBool, allDate := true, true, true, true

		for _, rec := range rows {
			v := strings.TrimSpace(rec[c])
			if v == "" {
				continue
			}
			seen = true
			if allInt {
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					allInt = false
				}
			}
			if allFloat {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					allFloat = false
				}
			}
			if allBool {
				if _, ok := parseBoolLoose(v); !ok {
					allBool = false
				}
			}
			if allDate {
				if _, ok := parseDateLoose(v); !ok {
					allDate = false
				}
			}
		}

		switch {
		case !seen:
			out[c] = relation.TypeText
		case allInt:
			out[c] = relation.TypeInteger
		case allBool:
			out[c] = relation.TypeBool
		case allDate:
			out[c] = relation.TypeDate
		case allFloat:
			out[c] = relation.TypeFloat
		default:
			out[c] = relation.TypeText
		}
	}
	return out
}

// convertCell turns a raw cell into its typed value. The second return is
// false for a null (empty) cell.
func convertCell(v, typ string) (any, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, false
	}
	switch typ {
	case relation.TypeInteger:
		n, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return n, true
		}
	case relation.TypeFloat:
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f, true
		}
	case relation.TypeBool:
		if b, ok := parseBoolLoose(v); ok {
			return b, true
		}
	}
	return v, true
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "y":
		return true, true
	case "0", "f", "false", "no", "n":
		return false, true
	default:
		return false, false
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

func parseDateLoose(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, lay := range dateLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
