package relation

import (
	"sort"
	"strings"
)

// AttrSet is a set of column names held in canonical sorted order.
//
// The canonical form makes AttrSets directly comparable and usable as map
// keys (via Key), which the closure and cover algorithms rely on heavily.
// All operations return new sets; an AttrSet is never mutated in place.
type AttrSet []string

// NewAttrSet builds a canonical AttrSet from the given names.
// Duplicates are collapsed and empty names dropped.
func NewAttrSet(names ...string) AttrSet {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make(AttrSet, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Key returns a stable string form usable as a map key.
// The unit separator cannot appear in normalized column names.
func (s AttrSet) Key() string { return strings.Join(s, "\x1f") }

// String renders the set for error messages and logs.
func (s AttrSet) String() string { return strings.Join(s, ",") }

func (s AttrSet) Contains(name string) bool {
	i := sort.SearchStrings(s, name)
	return i < len(s) && s[i] == name
}

// ContainsAll reports whether other is a subset of s.
func (s AttrSet) ContainsAll(other AttrSet) bool {
	for _, n := range other {
		if !s.Contains(n) {
			return false
		}
	}
	return true
}

func (s AttrSet) Equal(other AttrSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// ProperSubsetOf reports whether s is a strict subset of other.
func (s AttrSet) ProperSubsetOf(other AttrSet) bool {
	return len(s) < len(other) && other.ContainsAll(s)
}

func (s AttrSet) Union(other AttrSet) AttrSet {
	return NewAttrSet(append(append([]string(nil), s...), other...)...)
}

// Diff returns the members of s not present in other.
func (s AttrSet) Diff(other AttrSet) AttrSet {
	out := make(AttrSet, 0, len(s))
	for _, n := range s {
		if !other.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

func (s AttrSet) Intersect(other AttrSet) AttrSet {
	out := make(AttrSet, 0, len(s))
	for _, n := range s {
		if other.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// Without returns s minus a single attribute.
func (s AttrSet) Without(name string) AttrSet {
	out := make(AttrSet, 0, len(s))
	for _, n := range s {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func (s AttrSet) Clone() AttrSet {
	return append(AttrSet(nil), s...)
}
