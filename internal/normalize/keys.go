package normalize

import (
	"sort"

	"normalizer/internal/relation"
)

// InferKeys returns every minimal candidate key of the attribute set under
// the accepted dependencies.
//
// The search seeds from attributes that never appear on a dependent side
// (those must be part of every key), then extends with attributes outside
// the seed's closure, smallest extension first. Supersets of an already
// found key are pruned, so only minimal keys survive.
//
// An empty key list (with a nil error) means no dependency is accepted;
// callers must fall back to the full row as the default key.
func InferKeys(all relation.AttrSet, fds []relation.FD) ([]relation.AttrSet, error) {
	if err := relation.ValidateFDs(all, fds); err != nil {
		return nil, err
	}
	accepted := relation.Accepted(fds)
	if len(accepted) == 0 {
		return nil, nil
	}

	inDependent := make(map[string]bool)
	for _, fd := range accepted {
		for _, a := range fd.Dependent {
			inDependent[a] = true
		}
	}
	seed := make(relation.AttrSet, 0, len(all))
	for _, a := range all {
		if !inDependent[a] {
			seed = append(seed, a)
		}
	}

	if relation.IsSuperkey(seed, all, accepted) {
		return []relation.AttrSet{minimizeKey(seed, all, accepted)}, nil
	}

	// Anything already derivable from the seed cannot shrink a key.
	pool := all.Diff(relation.Closure(seed, accepted))

	var keys []relation.AttrSet
	for size := 1; size <= len(pool); size++ {
		eachCombination(pool, size, func(ext relation.AttrSet) {
			cand := seed.Union(ext)
			for _, k := range keys {
				if cand.ContainsAll(k) {
					return
				}
			}
			if !relation.IsSuperkey(cand, all, accepted) {
				return
			}
			key := minimizeKey(cand, all, accepted)
			for _, k := range keys {
				if k.Equal(key) {
					return
				}
			}
			keys = append(keys, key)
		})
	}

	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i].Key() < keys[j].Key()
	})
	return keys, nil
}

// minimizeKey strips attributes whose removal keeps the set a superkey,
// repeating until no single removal succeeds.
func minimizeKey(key, all relation.AttrSet, fds []relation.FD) relation.AttrSet {
	out := key.Clone()
	for changed := true; changed; {
		changed = false
		for _, a := range out {
			reduced := out.Without(a)
			if relation.IsSuperkey(reduced, all, fds) {
				out = reduced
				changed = true
				break
			}
		}
	}
	return out
}

// eachCombination calls f with every size-k subset of pool, in the order
// induced by pool's canonical attribute order.
func eachCombination(pool relation.AttrSet, k int, f func(relation.AttrSet)) {
	combo := make([]string, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(combo) == k {
			f(relation.NewAttrSet(combo...))
			return
		}
		for i := start; i <= len(pool)-(k-len(combo)); i++ {
			combo = append(combo, pool[i])
			rec(i + 1)
			combo = combo[:len(combo)-1]
		}
	}
	rec(0)
}
