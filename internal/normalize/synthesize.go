package normalize

import (
	"sort"

	"normalizer/internal/relation"
)

// Synthesize3NF builds a dependency-preserving, lossless decomposition from
// a minimal cover: one relation per distinct determinant holding the
// determinant and everything it determines, relations with identical
// attribute sets merged, plus a key relation when no synthesized relation
// is a superkey of the original attribute set.
//
// keys come from InferKeys; an empty list falls back to the full row.
// Every original column appears in at least one relation, so no data can be
// lost at transform time.
func Synthesize3NF(cover []relation.FD, keys []relation.AttrSet, all relation.AttrSet) (*Plan, error) {
	if err := relation.ValidateFDs(all, cover); err != nil {
		return nil, err
	}
	accepted := relation.Accepted(cover)

	primaryKey := all.Clone()
	if len(keys) > 0 {
		primaryKey = keys[0].Clone()
	}

	// Group the cover by determinant, in canonical determinant order.
	groups := make(map[string][]relation.FD)
	var order []string
	for _, fd := range accepted {
		k := fd.Determinant.Key()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], fd)
	}
	sort.Strings(order)

	var relations []RelationSchema
	for _, k := range order {
		fds := groups[k]
		attrs := fds[0].Determinant.Clone()
		for _, fd := range fds {
			attrs = attrs.Union(fd.Dependent)
		}
		relation.SortFDs(fds)
		relations = append(relations, RelationSchema{
			Attrs:      attrs,
			PrimaryKey: fds[0].Determinant.Clone(),
			FDs:        fds,
		})
	}

	relations = mergeIdentical(relations)

	// The synthesis theorem needs one relation whose attributes form a
	// superkey of the whole; add a bare key relation when none qualifies.
	hasSuperkey := false
	for _, r := range relations {
		if relation.IsSuperkey(r.Attrs, all, accepted) {
			hasSuperkey = true
			break
		}
	}
	keyRelIdx := -1
	if !hasSuperkey {
		relations = append(relations, RelationSchema{
			Name:       "main_keys",
			Attrs:      primaryKey.Clone(),
			PrimaryKey: primaryKey.Clone(),
		})
		keyRelIdx = len(relations) - 1
	}

	// Columns no dependency mentions still need a home next to the key.
	covered := relation.AttrSet{}
	for _, r := range relations {
		covered = covered.Union(r.Attrs)
	}
	if uncovered := all.Diff(covered); len(uncovered) > 0 {
		if keyRelIdx < 0 {
			relations = append(relations, RelationSchema{
				Name:       "main",
				Attrs:      primaryKey.Union(uncovered),
				PrimaryKey: primaryKey.Clone(),
			})
		} else {
			relations[keyRelIdx].Attrs = relations[keyRelIdx].Attrs.Union(uncovered)
		}
	}

	nameRelations(relations)
	computeForeignKeys(relations)

	return &Plan{
		Version:         PlanVersion,
		TargetForm:      Target3NF,
		OriginalColumns: all.Clone(),
		Relations:       relations,
	}, nil
}

// mergeIdentical folds relations with equal attribute sets into one,
// keeping the first relation's primary key and the union of expressed
// dependencies.
func mergeIdentical(relations []RelationSchema) []RelationSchema {
	var out []RelationSchema
	index := make(map[string]int)
	for _, r := range relations {
		k := r.Attrs.Key()
		if i, ok := index[k]; ok {
			out[i].FDs = append(out[i].FDs, r.FDs...)
			relation.SortFDs(out[i].FDs)
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}
