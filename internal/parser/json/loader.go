// Package json loads JSON documents into typed datasets. Accepted shapes:
// a root array of objects, an envelope object whose first array-of-objects
// field holds the records, or a single object treated as one record.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	csvparser "normalizer/internal/parser/csv"
	"normalizer/internal/relation"
)

// LoadFile reads path into a typed dataset.
func LoadFile(path string) (*relation.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()

	ds, err := ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// ReadDataset decodes records from r into a dataset. Column order follows
// first appearance across the records; keys are normalized the same way as
// CSV headers so the two loaders agree on names.
func ReadDataset(r io.Reader) (*relation.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	records, err := extractRecords(root)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("json: no records")
	}

	// Stable column order: first appearance wins, merged across records.
	var names []string
	index := make(map[string]int)
	for _, rec := range records {
		for _, k := range rec.keys {
			n := csvparser.NormalizeName(k)
			if n == "" {
				continue
			}
			if _, ok := index[n]; !ok {
				index[n] = len(names)
				names = append(names, n)
			}
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("json: records have no usable keys")
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(names))
		for _, k := range rec.keys {
			n := csvparser.NormalizeName(k)
			if j, ok := index[n]; ok {
				row[j] = scalarValue(rec.values[k])
			}
		}
		rows[i] = row
	}

	cols := make([]relation.Column, len(names))
	for c, name := range names {
		typ, nullable := columnType(rows, c)
		cols[c] = relation.Column{Name: name, Type: typ, Nullable: nullable}
	}
	return relation.NewDataset(cols, rows), nil
}

// object is a decoded JSON object with its key order preserved, which a
// plain map would lose.
type object struct {
	keys   []string
	values map[string]any
}

// MarshalJSON re-encodes the object in source key order, so nested objects
// stored as text cells keep their original shape.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeValue reads one JSON value token by token. Objects come back as
// *object, arrays as []any, scalars as string/bool/json.Number/nil.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := &object{values: make(map[string]any)}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key := keyTok.(string)
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			if _, seen := obj.values[key]; !seen {
				obj.keys = append(obj.keys, key)
			}
			obj.values[key] = val
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			el, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, el)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// extractRecords finds the record objects in a decoded document.
func extractRecords(root any) ([]*object, error) {
	switch t := root.(type) {
	case []any:
		return objectSlice(t)
	case *object:
		// Envelope: the first array-of-objects field in document order
		// carries the records.
		for _, k := range t.keys {
			if arr, ok := t.values[k].([]any); ok {
				if recs, err := objectSlice(arr); err == nil && len(recs) > 0 {
					return recs, nil
				}
			}
		}
		return []*object{t}, nil
	default:
		return nil, fmt.Errorf("json: unsupported root %T (want object or array)", root)
	}
}

func objectSlice(arr []any) ([]*object, error) {
	out := make([]*object, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(*object)
		if !ok {
			return nil, fmt.Errorf("json: element %d is %T, want object", i, el)
		}
		out = append(out, obj)
	}
	return out, nil
}

// scalarValue converts a decoded JSON value to a dataset cell. Nested
// structures are re-encoded as text so no information is dropped.
func scalarValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return t
	case bool:
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// columnType derives a column's type from its converted cells. Mixed
// integer and float cells widen to float; any other mixture is text.
func columnType(rows [][]any, col int) (string, bool) {
	typ := ""
	nullable := false
	for _, row := range rows {
		var cell string
		switch row[col].(type) {
		case nil:
			nullable = true
			continue
		case int64:
			cell = relation.TypeInteger
		case float64:
			cell = relation.TypeFloat
		case bool:
			cell = relation.TypeBool
		default:
			cell = relation.TypeText
		}
		switch {
		case typ == "" || typ == cell:
			typ = cell
		case (typ == relation.TypeInteger && cell == relation.TypeFloat) ||
			(typ == relation.TypeFloat && cell == relation.TypeInteger):
			typ = relation.TypeFloat
		default:
			typ = relation.TypeText
		}
	}
	if typ == "" {
		typ = relation.TypeText
	}
	return typ, nullable
}
