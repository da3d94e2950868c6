package relation

import (
	"reflect"
	"testing"
)

// TestNewAttrSet verifies canonicalization: sorted order, deduplication, and
// empty-name dropping. Everything downstream (map keys, equality, closure
// determinism) depends on this invariant.
func TestNewAttrSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want AttrSet
	}{
		{"empty", nil, nil},
		{"sorted", []string{"c", "a", "b"}, AttrSet{"a", "b", "c"}},
		{"dedup", []string{"a", "a", "b"}, AttrSet{"a", "b"}},
		{"drops empty names", []string{"", "x"}, AttrSet{"x"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewAttrSet(tt.in...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NewAttrSet(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAttrSetOps(t *testing.T) {
	t.Parallel()

	s := NewAttrSet("a", "b", "c")
	other := NewAttrSet("b", "c", "d")

	if !s.Contains("b") || s.Contains("z") {
		t.Fatalf("Contains misbehaves: %v", s)
	}
	if !s.ContainsAll(NewAttrSet("a", "c")) {
		t.Fatalf("ContainsAll subset failed")
	}
	if s.ContainsAll(other) {
		t.Fatalf("ContainsAll should reject %v for %v", other, s)
	}
	if got := s.Union(other); !got.Equal(NewAttrSet("a", "b", "c", "d")) {
		t.Fatalf("Union = %v", got)
	}
	if got := s.Diff(other); !got.Equal(NewAttrSet("a")) {
		t.Fatalf("Diff = %v", got)
	}
	if got := s.Intersect(other); !got.Equal(NewAttrSet("b", "c")) {
		t.Fatalf("Intersect = %v", got)
	}
	if got := s.Without("b"); !got.Equal(NewAttrSet("a", "c")) {
		t.Fatalf("Without = %v", got)
	}
	if !NewAttrSet("a", "b").ProperSubsetOf(s) {
		t.Fatalf("ProperSubsetOf should hold")
	}
	if s.ProperSubsetOf(s) {
		t.Fatalf("a set is not a proper subset of itself")
	}
}

// TestAttrSetKey ensures Key is injective over typical column names so it can
// safely index maps of determinants.
func TestAttrSetKey(t *testing.T) {
	t.Parallel()

	a := NewAttrSet("ab", "c")
	b := NewAttrSet("a", "bc")
	if a.Key() == b.Key() {
		t.Fatalf("Key collision between %v and %v", a, b)
	}
	if a.Key() != NewAttrSet("c", "ab").Key() {
		t.Fatalf("Key must be order independent")
	}
}
