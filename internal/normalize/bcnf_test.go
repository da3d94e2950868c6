package normalize

import (
	"reflect"
	"testing"

	"normalizer/internal/relation"
)

// TestDecomposeBCNF verifies the student/department split: the transitive
// dependency is carved out and both sides end in BCNF with nothing lost.
func TestDecomposeBCNF(t *testing.T) {
	t.Parallel()

	all := attrs("sid", "sname", "did", "dname")
	cover := []relation.FD{
		confirmed(attrs("sid"), attrs("sname")),
		confirmed(attrs("sid"), attrs("did")),
		confirmed(attrs("did"), attrs("dname")),
	}

	plan, err := DecomposeBCNF(all, cover)
	if err != nil {
		t.Fatalf("DecomposeBCNF: %v", err)
	}

	want := []relation.AttrSet{attrs("did", "dname"), attrs("did", "sid", "sname")}
	if got := relationAttrs(plan); !reflect.DeepEqual(got, want) {
		t.Fatalf("relations = %v, want %v", got, want)
	}
	if !plan.Relations[0].PrimaryKey.Equal(attrs("did")) {
		t.Errorf("department key = %v, want did", plan.Relations[0].PrimaryKey)
	}
	if !plan.Relations[1].PrimaryKey.Equal(attrs("sid")) {
		t.Errorf("student key = %v, want sid", plan.Relations[1].PrimaryKey)
	}
	if len(plan.UnenforcedFDs) != 0 {
		t.Errorf("unenforced = %v, want none", plan.UnenforcedFDs)
	}
	if plan.TargetForm != TargetBCNF {
		t.Errorf("target = %q, want BCNF", plan.TargetForm)
	}
}

// TestDecomposeBCNFTerminalProperty verifies that every relation in a
// finished plan has only superkey determinants among its applicable
// dependencies.
func TestDecomposeBCNFTerminalProperty(t *testing.T) {
	t.Parallel()

	all := attrs("a", "b", "c", "d", "e")
	cover := []relation.FD{
		confirmed(attrs("a"), attrs("b")),
		confirmed(attrs("b"), attrs("c")),
		confirmed(attrs("c", "d"), attrs("e")),
	}

	plan, err := DecomposeBCNF(all, cover)
	if err != nil {
		t.Fatalf("DecomposeBCNF: %v", err)
	}
	for _, r := range plan.Relations {
		for _, fd := range applicableFDs(r.Attrs, cover) {
			if !relation.IsSuperkey(fd.Determinant, r.Attrs, applicableFDs(r.Attrs, cover)) {
				t.Errorf("relation %s retains violating dependency %v", r.Name, fd)
			}
		}
	}
}

// TestDecomposeBCNFReportsUnenforced verifies the classic street/city/zip
// case: BCNF removes the anomaly but can no longer enforce the composite
// dependency, and says so.
func TestDecomposeBCNFReportsUnenforced(t *testing.T) {
	t.Parallel()

	all := attrs("street", "city", "zip")
	cover := []relation.FD{
		confirmed(attrs("city", "street"), attrs("zip")),
		confirmed(attrs("zip"), attrs("city")),
	}

	plan, err := DecomposeBCNF(all, cover)
	if err != nil {
		t.Fatalf("DecomposeBCNF: %v", err)
	}

	want := []relation.AttrSet{attrs("city", "zip"), attrs("street", "zip")}
	if got := relationAttrs(plan); !reflect.DeepEqual(got, want) {
		t.Fatalf("relations = %v, want %v", got, want)
	}
	if len(plan.UnenforcedFDs) != 1 || plan.UnenforcedFDs[0].String() != "city,street -> zip" {
		t.Errorf("unenforced = %v, want the composite dependency", plan.UnenforcedFDs)
	}
}

// TestDecomposeBCNFDeterministic verifies that repeated runs produce
// identical plans.
func TestDecomposeBCNFDeterministic(t *testing.T) {
	t.Parallel()

	all := attrs("a", "b", "c", "d")
	cover := []relation.FD{
		confirmed(attrs("a"), attrs("b")),
		confirmed(attrs("c"), attrs("d")),
	}

	first, err := DecomposeBCNF(all, cover)
	if err != nil {
		t.Fatalf("DecomposeBCNF: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := DecomposeBCNF(all, cover)
		if err != nil {
			t.Fatalf("DecomposeBCNF: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

// TestLosslessSplit pins the verifier on a passing and a failing split.
func TestLosslessSplit(t *testing.T) {
	t.Parallel()

	fds := []relation.FD{confirmed(attrs("did"), attrs("dname"))}

	if !LosslessSplit(attrs("did", "dname"), attrs("did", "sid", "sname"), fds) {
		t.Error("split sharing the determinant reported lossy")
	}
	// Sharing nothing that determines either side loses information.
	if LosslessSplit(attrs("sid", "sname"), attrs("did", "dname"), fds) {
		t.Error("disjoint split reported lossless")
	}
}

// TestDecomposeBCNFInvalidSet verifies fail-fast validation.
func TestDecomposeBCNFInvalidSet(t *testing.T) {
	t.Parallel()

	_, err := DecomposeBCNF(attrs("a", "b"), []relation.FD{
		confirmed(attrs("a"), attrs("missing")),
	})
	if err == nil {
		t.Fatal("invalid dependency set accepted")
	}
}
