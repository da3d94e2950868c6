package discover

import (
	"fmt"
	"sort"
	"strings"

	"normalizer/internal/relation"
)

// Suggestion kinds.
const (
	SuggestSemanticFD = "semantic_fd"
	SuggestNonAtomic  = "non_atomic"
)

// Suggestion is a judgment call the detector cannot settle from data alone.
// Suggestions are questions for the user, never auto-confirmed facts.
type Suggestion struct {
	Kind     string       `json:"kind"`
	Column   string       `json:"column,omitempty"`
	FD       *relation.FD `json:"fd,omitempty"`
	Question string       `json:"question"`
}

// semanticPairs maps well-known determinant name fragments to the dependent
// name fragments they conventionally determine. Matching is substring-based
// on lowercased column names; a match only yields a question, since real
// semantics need human confirmation.
var semanticPairs = []struct {
	det []string
	dep []string
}{
	{[]string{"zip_code", "zipcode", "postal"}, []string{"city", "state"}},
	{[]string{"department_id", "dept_id"}, []string{"department_name", "dept_name", "manager"}},
	{[]string{"country"}, []string{"currency", "country_code"}},
}

const (
	atomicitySampleCap = 100
	atomicityRatio     = 0.3
)

// suggest builds the atomicity and semantic-pattern questions for a dataset.
// Output order is deterministic: non-atomic warnings by column name, then
// semantic dependencies by (determinant, dependent).
func suggest(ds *relation.Dataset, keyColumns []string) []Suggestion {
	var out []Suggestion
	out = append(out, nonAtomicSuggestions(ds)...)
	out = append(out, semanticSuggestions(ds, keyColumns)...)
	return out
}

// nonAtomicSuggestions flags text columns whose values frequently embed list
// delimiters. Such columns usually violate first normal form and should be
// split before decomposition, but only the user can tell a delimiter from
// ordinary punctuation.
func nonAtomicSuggestions(ds *relation.Dataset) []Suggestion {
	var out []Suggestion
	for c, col := range ds.Columns {
		if col.Type != relation.TypeText {
			continue
		}
		sampled, withDelims := 0, 0
		for _, row := range ds.Rows {
			if sampled >= atomicitySampleCap {
				break
			}
			s, ok := row[c].(string)
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			sampled++
			if strings.ContainsAny(s, ",;|") {
				withDelims++
			}
		}
		if sampled == 0 {
			continue
		}
		if float64(withDelims)/float64(sampled) > atomicityRatio {
			out = append(out, Suggestion{
				Kind:   SuggestNonAtomic,
				Column: col.Name,
				Question: fmt.Sprintf(
					"Column %q looks non-atomic (%d of %d sampled values contain a delimiter). Split it before normalizing?",
					col.Name, withDelims, sampled,
				),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// semanticSuggestions proposes dependencies implied by column naming
// conventions that the data itself did not surface. A unique key column
// needs no suggestion; it already determines everything.
func semanticSuggestions(ds *relation.Dataset, keyColumns []string) []Suggestion {
	isKey := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		isKey[k] = true
	}

	var out []Suggestion
	for _, pair := range semanticPairs {
		for _, det := range ds.Columns {
			if isKey[det.Name] || !matchesAny(det.Name, pair.det) {
				continue
			}
			for _, dep := range ds.Columns {
				if dep.Name == det.Name || !matchesAny(dep.Name, pair.dep) {
					continue
				}
				fd := relation.FD{
					Determinant: relation.NewAttrSet(det.Name),
					Dependent:   relation.NewAttrSet(dep.Name),
					Status:      relation.StatusNeedsReview,
				}
				out = append(out, Suggestion{
					Kind: SuggestSemanticFD,
					FD:   &fd,
					Question: fmt.Sprintf(
						"Does %s determine %s? (semantic naming pattern)",
						det.Name, dep.Name,
					),
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].FD.Determinant.Key(), out[j].FD.Determinant.Key(); a != b {
			return a < b
		}
		return out[i].FD.Dependent.Key() < out[j].FD.Dependent.Key()
	})
	return out
}

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// FilterSuggestedFDs drops semantic suggestions already covered by a
// detected candidate, keeping the report free of duplicates.
func FilterSuggestedFDs(suggestions []Suggestion, candidates []relation.FD) []Suggestion {
	existing := make(map[string]struct{}, len(candidates))
	for _, fd := range candidates {
		existing[fd.Determinant.Key()+"\x1e"+fd.Dependent.Key()] = struct{}{}
	}
	out := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Kind == SuggestSemanticFD {
			k := s.FD.Determinant.Key() + "\x1e" + s.FD.Dependent.Key()
			if _, ok := existing[k]; ok {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
