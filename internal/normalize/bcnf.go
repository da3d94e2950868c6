package normalize

import (
	"fmt"

	"normalizer/internal/relation"
)

// DecomposeBCNF splits the attribute set until no relation retains a
// dependency with a non-superkey determinant.
//
// The worklist is processed in insertion order and the violating dependency
// is always the first in canonical (determinant, dependent) order, so the
// output is identical across runs. Each split is checked with LosslessSplit;
// a failure there is an algorithm defect and aborts with an
// InternalInvariantError rather than returning a lossy plan.
//
// Unlike 3NF synthesis, BCNF decomposition may strand dependencies that no
// single output relation contains; those are returned on the plan's
// UnenforcedFDs so the caller can decide whether the trade is acceptable.
func DecomposeBCNF(all relation.AttrSet, cover []relation.FD) (*Plan, error) {
	if err := relation.ValidateFDs(all, cover); err != nil {
		return nil, err
	}
	accepted := relation.Accepted(cover)
	relation.SortFDs(accepted)

	var terminal []relation.AttrSet
	worklist := []relation.AttrSet{all.Clone()}
	for len(worklist) > 0 {
		attrs := worklist[0]
		worklist = worklist[1:]

		applicable := applicableFDs(attrs, accepted)
		fd, ok := firstViolation(attrs, applicable)
		if !ok {
			terminal = append(terminal, attrs)
			continue
		}

		r1 := fd.Determinant.Union(fd.Dependent)
		r2 := attrs.Diff(fd.Dependent).Union(fd.Determinant)
		if !LosslessSplit(r1, r2, applicable) {
			return nil, &relation.InternalInvariantError{
				Reason: fmt.Sprintf("split of {%s} on %s is not lossless", attrs, fd),
			}
		}
		worklist = append(worklist, r1, r2)
	}

	var relations []RelationSchema
	for _, attrs := range terminal {
		applicable := applicableFDs(attrs, accepted)
		relations = append(relations, RelationSchema{
			Attrs:      attrs,
			PrimaryKey: relationKey(attrs, applicable),
			FDs:        applicable,
		})
	}
	relations = mergeIdentical(relations)
	nameRelations(relations)
	computeForeignKeys(relations)

	// A dependency is unenforced when no output relation contains all of
	// its attributes.
	var unenforced []relation.FD
	for _, fd := range accepted {
		span := fd.Determinant.Union(fd.Dependent)
		contained := false
		for _, r := range relations {
			if r.Attrs.ContainsAll(span) {
				contained = true
				break
			}
		}
		if !contained {
			unenforced = append(unenforced, fd)
		}
	}

	return &Plan{
		Version:         PlanVersion,
		TargetForm:      TargetBCNF,
		OriginalColumns: all.Clone(),
		Relations:       relations,
		UnenforcedFDs:   unenforced,
	}, nil
}

// LosslessSplit reports whether splitting a relation into r1 and r2 is
// lossless under fds: the shared attributes must determine one side
// entirely.
func LosslessSplit(r1, r2 relation.AttrSet, fds []relation.FD) bool {
	shared := r1.Intersect(r2)
	closure := relation.Closure(shared, fds)
	return closure.ContainsAll(r1) || closure.ContainsAll(r2)
}

// applicableFDs returns the dependencies fully contained in attrs, in
// canonical order.
func applicableFDs(attrs relation.AttrSet, fds []relation.FD) []relation.FD {
	var out []relation.FD
	for _, fd := range fds {
		if attrs.ContainsAll(fd.Determinant) && attrs.ContainsAll(fd.Dependent) {
			out = append(out, fd)
		}
	}
	return out
}

// firstViolation returns the first applicable dependency whose determinant
// is not a superkey of attrs.
func firstViolation(attrs relation.AttrSet, applicable []relation.FD) (relation.FD, bool) {
	for _, fd := range applicable {
		if fd.Dependent.ProperSubsetOf(fd.Determinant) || fd.Dependent.Equal(fd.Determinant) {
			continue
		}
		if !relation.IsSuperkey(fd.Determinant, attrs, applicable) {
			return fd, true
		}
	}
	return relation.FD{}, false
}

// relationKey picks a primary key for a terminal relation: the smallest
// inferred candidate key, or every column when nothing narrower is known.
func relationKey(attrs relation.AttrSet, applicable []relation.FD) relation.AttrSet {
	keys, err := InferKeys(attrs, applicable)
	if err != nil || len(keys) == 0 {
		return attrs.Clone()
	}
	return keys[0].Clone()
}
