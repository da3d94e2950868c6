package normalize

import (
	"errors"
	"reflect"
	"testing"

	"normalizer/internal/relation"
)

func confirmed(det, dep relation.AttrSet) relation.FD {
	return relation.FD{
		Determinant: det,
		Dependent:   dep,
		Confidence:  1,
		Status:      relation.StatusConfirmed,
	}
}

func attrs(names ...string) relation.AttrSet { return relation.NewAttrSet(names...) }

// TestInferKeys covers seeding from never-dependent attributes, extension,
// multiple keys, and the empty-FD fallback contract.
func TestInferKeys(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		all  relation.AttrSet
		fds  []relation.FD
		want []relation.AttrSet
	}{
		{
			name: "single key from seed",
			all:  attrs("sid", "sname", "did", "dname"),
			fds: []relation.FD{
				confirmed(attrs("sid"), attrs("sname")),
				confirmed(attrs("sid"), attrs("did")),
				confirmed(attrs("did"), attrs("dname")),
			},
			want: []relation.AttrSet{attrs("sid")},
		},
		{
			name: "composite key",
			all:  attrs("a", "b", "c"),
			fds:  []relation.FD{confirmed(attrs("a", "b"), attrs("c"))},
			want: []relation.AttrSet{attrs("a", "b")},
		},
		{
			name: "two keys from mutual dependency",
			all:  attrs("a", "b"),
			fds: []relation.FD{
				confirmed(attrs("a"), attrs("b")),
				confirmed(attrs("b"), attrs("a")),
			},
			want: []relation.AttrSet{attrs("a"), attrs("b")},
		},
		{
			name: "seed attribute outside every dependency stays in the key",
			all:  attrs("a", "b", "c", "d"),
			fds: []relation.FD{
				confirmed(attrs("a"), attrs("b")),
				confirmed(attrs("a"), attrs("c")),
			},
			want: []relation.AttrSet{attrs("a", "d")},
		},
		{
			name: "no confirmed dependencies",
			all:  attrs("a", "b"),
			fds:  nil,
			want: nil,
		},
		{
			name: "unconfirmed candidates ignored",
			all:  attrs("a", "b"),
			fds: []relation.FD{{
				Determinant: attrs("a"),
				Dependent:   attrs("b"),
				Status:      relation.StatusNeedsReview,
			}},
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := InferKeys(tc.all, tc.fds)
			if err != nil {
				t.Fatalf("InferKeys: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("keys = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestInferKeysMinimality verifies that no returned key has a proper subset
// that is also a superkey.
func TestInferKeysMinimality(t *testing.T) {
	t.Parallel()

	all := attrs("a", "b", "c", "d")
	fds := []relation.FD{
		confirmed(attrs("a"), attrs("b")),
		confirmed(attrs("b"), attrs("c")),
		confirmed(attrs("c"), attrs("a")),
	}
	keys, err := InferKeys(all, fds)
	if err != nil {
		t.Fatalf("InferKeys: %v", err)
	}
	if len(keys) == 0 {
		t.Fatal("no keys inferred")
	}
	for _, k := range keys {
		for _, a := range k {
			if relation.IsSuperkey(k.Without(a), all, fds) {
				t.Errorf("key %v is not minimal: %v is already a superkey", k, k.Without(a))
			}
		}
	}
	// a, b and c each close over the cycle; with d they form the three keys.
	want := []relation.AttrSet{attrs("a", "d"), attrs("b", "d"), attrs("c", "d")}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

// TestInferKeysInvalidSet verifies fail-fast validation.
func TestInferKeysInvalidSet(t *testing.T) {
	t.Parallel()

	_, err := InferKeys(attrs("a", "b"), []relation.FD{
		confirmed(attrs("a"), attrs("nope")),
	})
	var invalid *relation.InvalidDependencySetError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidDependencySetError", err)
	}
}
