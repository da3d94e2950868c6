package normalize

import (
	"normalizer/internal/relation"
)

// MinimalCover reduces the accepted dependencies to an equivalent canonical
// cover. The three steps run strictly in order:
//
//  1. Rewrite every dependency to a single-attribute dependent.
//  2. Left-reduce: drop determinant attributes whose removal still lets the
//     reduced determinant derive the dependent under the current set.
//  3. Drop dependencies entailed by the remaining set's closure.
//
// The result has the same closure behavior as the input for every attribute
// set, which the synthesis algorithm depends on for its lossless guarantee.
func MinimalCover(fds []relation.FD) ([]relation.FD, error) {
	universe := attrUniverse(fds)
	if err := relation.ValidateFDs(universe, fds); err != nil {
		return nil, err
	}

	// Step 1: right-hand-side singletons, deduplicated.
	var work []relation.FD
	seen := make(map[string]struct{})
	for _, fd := range relation.Accepted(fds) {
		for _, dep := range fd.Dependent {
			single := relation.FD{
				Determinant: fd.Determinant.Clone(),
				Dependent:   relation.NewAttrSet(dep),
				Confidence:  fd.Confidence,
				Violations:  fd.Violations,
				Status:      fd.Status,
			}
			k := single.Determinant.Key() + "\x1e" + dep
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			work = append(work, single)
		}
	}

	// Step 2: left-reduction. The test runs against the evolving set so a
	// reduction made earlier can enable another one later.
	for i := range work {
		det := work[i].Determinant
		for changed := true; changed && len(det) > 1; {
			changed = false
			for _, a := range det {
				reduced := det.Without(a)
				if relation.Closure(reduced, work).ContainsAll(work[i].Dependent) {
					det = reduced
					work[i].Determinant = det
					changed = true
					break
				}
			}
		}
	}

	// Step 3: redundancy elimination against the surviving set.
	kept := make([]bool, len(work))
	for i := range kept {
		kept[i] = true
	}
	for i := range work {
		kept[i] = false
		others := make([]relation.FD, 0, len(work)-1)
		for j, fd := range work {
			if kept[j] {
				others = append(others, fd)
			}
		}
		if !relation.Closure(work[i].Determinant, others).ContainsAll(work[i].Dependent) {
			kept[i] = true
		}
	}

	out := make([]relation.FD, 0, len(work))
	for i, fd := range work {
		if kept[i] {
			out = append(out, fd)
		}
	}
	relation.SortFDs(out)
	return out, nil
}

// attrUniverse collects every attribute mentioned by the dependency set so
// validation can reject overlaps and empty sides without a dataset in hand.
func attrUniverse(fds []relation.FD) relation.AttrSet {
	var names []string
	for _, fd := range fds {
		names = append(names, fd.Determinant...)
		names = append(names, fd.Dependent...)
	}
	return relation.NewAttrSet(names...)
}
