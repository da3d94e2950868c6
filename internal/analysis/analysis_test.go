package analysis

import (
	"testing"

	"normalizer/internal/discover"
	"normalizer/internal/relation"
)

func textColumns(names ...string) []relation.Column {
	cols := make([]relation.Column, len(names))
	for i, n := range names {
		cols[i] = relation.Column{Name: n, Type: relation.TypeText}
	}
	return cols
}

func attrs(names ...string) relation.AttrSet { return relation.NewAttrSet(names...) }

func deptDataset() *relation.Dataset {
	return relation.NewDataset(textColumns("sid", "dept", "dname"), [][]any{
		{"1", "d1", "Eng"},
		{"2", "d1", "Eng"},
		{"3", "d2", "Ops"},
		{"4", "d2", "Ops"},
	})
}

// TestAnalyze runs the full pipeline over a small dataset: the unique
// column becomes the only candidate key, the detected dependencies place
// the relation in second normal form.
func TestAnalyze(t *testing.T) {
	t.Parallel()

	res, err := Analyze(deptDataset(), discover.Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Rows != 4 {
		t.Errorf("rows = %d, want 4", res.Rows)
	}
	if len(res.KeyColumns) != 1 || res.KeyColumns[0] != "sid" {
		t.Errorf("key columns = %v, want [sid]", res.KeyColumns)
	}
	if len(res.CandidateKeys) != 1 || !res.CandidateKeys[0].Equal(attrs("sid")) {
		t.Errorf("candidate keys = %v, want [[sid]]", res.CandidateKeys)
	}
	if res.NormalForm != "2NF" {
		t.Errorf("normal form = %s, want 2NF", res.NormalForm)
	}
	if len(res.Dependencies) != 2 {
		t.Errorf("dependencies = %v, want dept<->dname both directions", res.Dependencies)
	}
	if len(res.Questions) != 0 {
		t.Errorf("questions = %v, want none", res.Questions)
	}
}

// TestCandidateKeysPruneSupersets verifies that a unique column displaces
// the composite keys inference builds around it.
func TestCandidateKeysPruneSupersets(t *testing.T) {
	t.Parallel()

	res, err := Analyze(deptDataset(), discover.Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, k := range res.CandidateKeys {
		if len(k) > 1 && k.Contains("sid") {
			t.Errorf("superset key %v not pruned", k)
		}
	}
}

// TestAnalyzeQuestions verifies that near-perfect dependencies become
// confirmation questions.
func TestAnalyzeQuestions(t *testing.T) {
	t.Parallel()

	// zip -> city holds for 39 of 40 zip groups.
	rows := make([][]any, 0, 80)
	for i := 0; i < 40; i++ {
		zip := string(rune('a'+i/26)) + string(rune('a'+i%26))
		rows = append(rows, []any{zip, "city" + zip})
		city := "city" + zip
		if i == 0 {
			city = "other"
		}
		rows = append(rows, []any{zip, city})
	}
	ds := relation.NewDataset(textColumns("zip_code", "city"), rows)

	res, err := Analyze(ds, discover.Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var confirmations int
	for _, q := range res.Questions {
		if q.Type == QuestionFDConfirmation {
			confirmations++
			if q.FD == nil || q.FD.Status != relation.StatusNeedsReview {
				t.Errorf("confirmation question without a needs_review dependency: %+v", q)
			}
		}
	}
	if confirmations == 0 {
		t.Errorf("no confirmation question for near-perfect dependency; questions = %+v", res.Questions)
	}
}

// TestApplyDecisions covers confirm, reject, and the unknown-target error.
func TestApplyDecisions(t *testing.T) {
	t.Parallel()

	fds := []relation.FD{
		{Determinant: attrs("zip"), Dependent: attrs("city"), Confidence: 0.97, Violations: 3, Status: relation.StatusNeedsReview},
		{Determinant: attrs("sid"), Dependent: attrs("name"), Confidence: 0.96, Violations: 2, Status: relation.StatusNeedsReview},
	}

	got, err := ApplyDecisions(fds, []Decision{
		{Determinant: attrs("zip"), Dependent: attrs("city"), Confirm: true},
		{Determinant: attrs("sid"), Dependent: attrs("name"), Confirm: false},
	})
	if err != nil {
		t.Fatalf("ApplyDecisions: %v", err)
	}
	if got[0].Status != relation.StatusConfirmed {
		t.Errorf("zip -> city status = %s, want confirmed", got[0].Status)
	}
	if got[1].Status != relation.StatusRejected {
		t.Errorf("sid -> name status = %s, want rejected", got[1].Status)
	}
	if fds[0].Status != relation.StatusNeedsReview {
		t.Error("input slice mutated")
	}

	_, err = ApplyDecisions(fds, []Decision{
		{Determinant: attrs("ghost"), Dependent: attrs("city"), Confirm: true},
	})
	if err == nil {
		t.Error("error expected for unknown dependency")
	}
}
