package normalize

import (
	"fmt"

	"normalizer/internal/relation"
)

// Normal-form levels, weakest to strictest.
const (
	Form1NF  = "1NF"
	Form2NF  = "2NF"
	Form3NF  = "3NF"
	FormBCNF = "BCNF"
)

// Violation explains one normal-form breach with the offending dependency
// attached, so decomposition knows exactly what to split on.
type Violation struct {
	Level  string      `json:"level"`
	FD     relation.FD `json:"fd"`
	Reason string      `json:"reason"`
}

// Report classifies a relation and lists every violation above the level it
// currently satisfies.
type Report struct {
	Classification string      `json:"classification"`
	Violations     []Violation `json:"violations,omitempty"`
}

// Assess classifies the relation's current normal form under the accepted
// dependencies and candidate keys. First normal form is assumed: atomicity
// is judged at load time, not here.
//
// Assessment never fails. With no accepted dependencies the report is
// vacuously BCNF; an empty key list falls back to the full row as the key,
// making every attribute prime.
func Assess(all relation.AttrSet, fds []relation.FD, keys []relation.AttrSet) Report {
	accepted := relation.Accepted(fds)
	if len(keys) == 0 {
		keys = []relation.AttrSet{all.Clone()}
	}

	prime := make(map[string]bool)
	for _, k := range keys {
		for _, a := range k {
			prime[a] = true
		}
	}

	var violations []Violation

	// 2NF: partial dependency of a non-prime attribute on part of a key.
	for _, fd := range accepted {
		for _, k := range keys {
			if !fd.Determinant.ProperSubsetOf(k) {
				continue
			}
			for _, a := range fd.Dependent {
				if prime[a] {
					continue
				}
				violations = append(violations, Violation{
					Level: Form2NF,
					FD:    fd,
					Reason: fmt.Sprintf(
						"partial dependency: %s is a proper subset of candidate key %s and determines non-prime %s",
						fd.Determinant, k, a,
					),
				})
			}
			break
		}
	}

	// 3NF: non-superkey determinant reaching a non-prime attribute. A key
	// dependency listing the same attribute grants no exemption; otherwise
	// the classification would change between equivalent dependency sets.
	for _, fd := range accepted {
		if relation.IsSuperkey(fd.Determinant, all, accepted) {
			continue
		}
		for _, a := range fd.Dependent {
			if prime[a] {
				continue
			}
			violations = append(violations, Violation{
				Level: Form3NF,
				FD:    fd,
				Reason: fmt.Sprintf(
					"transitive dependency: %s is not a superkey and determines non-prime %s",
					fd.Determinant, a,
				),
			})
		}
	}

	// BCNF: any non-superkey determinant at all.
	for _, fd := range accepted {
		if relation.IsSuperkey(fd.Determinant, all, accepted) {
			continue
		}
		violations = append(violations, Violation{
			Level: FormBCNF,
			FD:    fd,
			Reason: fmt.Sprintf("determinant %s is not a superkey", fd.Determinant),
		})
	}

	return Report{
		Classification: classify(violations),
		Violations:     violations,
	}
}

// classify returns the highest level with zero violations.
func classify(violations []Violation) string {
	levels := make(map[string]bool, len(violations))
	for _, v := range violations {
		levels[v.Level] = true
	}
	switch {
	case levels[Form2NF]:
		return Form1NF
	case levels[Form3NF]:
		return Form2NF
	case levels[FormBCNF]:
		return Form3NF
	default:
		return FormBCNF
	}
}
