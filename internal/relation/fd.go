package relation

import (
	"fmt"
	"sort"
)

// Status tracks the confirmation lifecycle of a detected dependency.
//
// Detection only ever produces auto_confirmed or needs_review. The
// confirmed/rejected states are explicit caller transitions; the detector
// never silently alters a dependency it has already reported.
type Status string

const (
	StatusAutoConfirmed Status = "auto_confirmed"
	StatusNeedsReview   Status = "needs_review"
	StatusConfirmed     Status = "confirmed"
	StatusRejected      Status = "rejected"
)

// FD is a functional dependency Determinant -> Dependent with the
// statistical evidence gathered at detection time.
//
// Invariant: Determinant and Dependent are disjoint. Confidence 1.0 and
// Violations 0 are the same state and imply StatusAutoConfirmed at
// detection time.
type FD struct {
	Determinant AttrSet `json:"determinant"`
	Dependent   AttrSet `json:"dependent"`
	Confidence  float64 `json:"confidence"`
	Violations  int     `json:"violation_count"`
	Status      Status  `json:"status"`
}

// String renders "a,b -> c" for reports and errors.
func (fd FD) String() string {
	return fmt.Sprintf("%s -> %s", fd.Determinant, fd.Dependent)
}

// Accepted reports whether the dependency may feed the normalization
// algorithms: either perfect in the data or explicitly confirmed by the user.
func (fd FD) Accepted() bool {
	return fd.Status == StatusAutoConfirmed || fd.Status == StatusConfirmed
}

// sortKey orders FDs by determinant then dependent, the canonical order used
// everywhere output determinism matters.
func (fd FD) sortKey() string {
	return fd.Determinant.Key() + "\x1e" + fd.Dependent.Key()
}

// SortFDs sorts in place by (determinant, dependent).
func SortFDs(fds []FD) {
	sort.SliceStable(fds, func(i, j int) bool {
		return fds[i].sortKey() < fds[j].sortKey()
	})
}

// Accepted filters a dependency list down to usable members, in canonical
// order. The input is not modified.
func Accepted(fds []FD) []FD {
	out := make([]FD, 0, len(fds))
	for _, fd := range fds {
		if fd.Accepted() {
			out = append(out, fd)
		}
	}
	SortFDs(out)
	return out
}

// ValidateFDs rejects dependency sets that reference unknown columns or
// whose determinant and dependent overlap. Algorithms call this before
// doing any work so a bad set can never produce a partial result.
func ValidateFDs(all AttrSet, fds []FD) error {
	for _, fd := range fds {
		if len(fd.Determinant) == 0 || len(fd.Dependent) == 0 {
			return &InvalidDependencySetError{
				FD:     fd.String(),
				Reason: "determinant and dependent must be non-empty",
			}
		}
		for _, a := range fd.Determinant {
			if !all.Contains(a) {
				return &InvalidDependencySetError{
					FD:     fd.String(),
					Reason: fmt.Sprintf("unknown column %q in determinant", a),
				}
			}
		}
		for _, a := range fd.Dependent {
			if !all.Contains(a) {
				return &InvalidDependencySetError{
					FD:     fd.String(),
					Reason: fmt.Sprintf("unknown column %q in dependent", a),
				}
			}
			if fd.Determinant.Contains(a) {
				return &InvalidDependencySetError{
					FD:     fd.String(),
					Reason: fmt.Sprintf("column %q appears on both sides", a),
				}
			}
		}
	}
	return nil
}
