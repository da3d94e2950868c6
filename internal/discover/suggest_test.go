package discover

import (
	"strings"
	"testing"

	"normalizer/internal/relation"
)

// TestNonAtomicSuggestion verifies that a text column with mostly
// delimiter-bearing values is flagged while ordinary text is not.
func TestNonAtomicSuggestion(t *testing.T) {
	t.Parallel()

	ds := relation.NewDataset(textColumns("tags", "plain"), [][]any{
		{"red,green", "alpha"},
		{"blue", "beta"},
		{"green;yellow", "gamma"},
		{"red|blue", "delta"},
	})

	got := suggest(ds, nil)

	var tagged []string
	for _, s := range got {
		if s.Kind == SuggestNonAtomic {
			tagged = append(tagged, s.Column)
		}
	}
	if len(tagged) != 1 || tagged[0] != "tags" {
		t.Errorf("non-atomic columns = %v, want [tags]", tagged)
	}
}

// TestNonAtomicIgnoresTypedColumns verifies that only text columns are
// considered; an integer column can never be flagged.
func TestNonAtomicIgnoresTypedColumns(t *testing.T) {
	t.Parallel()

	ds := relation.NewDataset([]relation.Column{
		{Name: "n", Type: relation.TypeInteger},
	}, [][]any{
		{int64(1)}, {int64(2)},
	})

	if got := nonAtomicSuggestions(ds); len(got) != 0 {
		t.Errorf("suggestions = %v, want none", got)
	}
}

// TestSemanticSuggestion verifies the naming-pattern questions: zip/city
// style pairs surface as needs_review questions, and a unique key column is
// never proposed as a determinant.
func TestSemanticSuggestion(t *testing.T) {
	t.Parallel()

	ds := relation.NewDataset(textColumns("zip_code", "city", "amount"), nil)

	got := semanticSuggestions(ds, nil)
	if len(got) != 1 {
		t.Fatalf("suggestions = %v, want exactly one", got)
	}
	s := got[0]
	if s.Kind != SuggestSemanticFD || s.FD == nil {
		t.Fatalf("suggestion = %+v, want semantic FD", s)
	}
	if !s.FD.Determinant.Equal(relation.NewAttrSet("zip_code")) ||
		!s.FD.Dependent.Equal(relation.NewAttrSet("city")) {
		t.Errorf("fd = %v, want zip_code -> city", s.FD)
	}
	if s.FD.Status != relation.StatusNeedsReview {
		t.Errorf("status = %q, want %q", s.FD.Status, relation.StatusNeedsReview)
	}
	if !strings.Contains(s.Question, "zip_code") {
		t.Errorf("question %q does not name the determinant", s.Question)
	}

	// A key column already determines everything; no question needed.
	if got := semanticSuggestions(ds, []string{"zip_code"}); len(got) != 0 {
		t.Errorf("suggestions with zip_code as key = %v, want none", got)
	}
}

// TestFilterSuggestedFDs verifies that semantic suggestions duplicating a
// detected candidate are removed while atomicity warnings pass through.
func TestFilterSuggestedFDs(t *testing.T) {
	t.Parallel()

	dup := relation.FD{
		Determinant: relation.NewAttrSet("zip_code"),
		Dependent:   relation.NewAttrSet("city"),
		Status:      relation.StatusNeedsReview,
	}
	novel := relation.FD{
		Determinant: relation.NewAttrSet("country"),
		Dependent:   relation.NewAttrSet("currency"),
		Status:      relation.StatusNeedsReview,
	}
	in := []Suggestion{
		{Kind: SuggestNonAtomic, Column: "tags"},
		{Kind: SuggestSemanticFD, FD: &dup},
		{Kind: SuggestSemanticFD, FD: &novel},
	}
	candidates := []relation.FD{{
		Determinant: relation.NewAttrSet("zip_code"),
		Dependent:   relation.NewAttrSet("city"),
		Confidence:  1,
		Status:      relation.StatusAutoConfirmed,
	}}

	got := FilterSuggestedFDs(in, candidates)
	if len(got) != 2 {
		t.Fatalf("filtered = %v, want 2 suggestions", got)
	}
	if got[0].Kind != SuggestNonAtomic || got[0].Column != "tags" {
		t.Errorf("first = %+v, want the tags warning", got[0])
	}
	if got[1].FD == nil || !got[1].FD.Determinant.Equal(relation.NewAttrSet("country")) {
		t.Errorf("second = %+v, want country -> currency", got[1])
	}
}
