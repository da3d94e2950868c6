package analysis

import (
	"fmt"

	"normalizer/internal/relation"
)

// Decision is one user verdict on a detected dependency.
type Decision struct {
	Determinant relation.AttrSet `json:"determinant"`
	Dependent   relation.AttrSet `json:"dependent"`
	Confirm     bool             `json:"confirm"`
}

// ApplyDecisions returns a copy of fds with each verdict applied: confirm
// moves a dependency to confirmed, anything else to rejected. Rejected
// dependencies stay in the list so the caller can show them; the
// normalization algorithms ignore them via the Accepted filter.
//
// A decision that names no detected dependency is an error: silently
// dropping a verdict would let a user believe a dependency was rejected
// while decomposition still uses it.
func ApplyDecisions(fds []relation.FD, decisions []Decision) ([]relation.FD, error) {
	out := append([]relation.FD(nil), fds...)

	for _, d := range decisions {
		found := false
		for i := range out {
			if !out[i].Determinant.Equal(d.Determinant) || !out[i].Dependent.Equal(d.Dependent) {
				continue
			}
			if d.Confirm {
				out[i].Status = relation.StatusConfirmed
			} else {
				out[i].Status = relation.StatusRejected
			}
			found = true
			break
		}
		if !found {
			return nil, fmt.Errorf("analysis: decision for unknown dependency %s -> %s",
				d.Determinant, d.Dependent)
		}
	}
	return out, nil
}
