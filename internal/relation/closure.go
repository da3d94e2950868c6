package relation

// Closure computes the set of attributes functionally determined by attrs
// under fds, by fixed-point expansion: start from attrs and union in the
// dependent of every dependency whose determinant is already covered, until
// nothing changes.
//
// The result is independent of dependency iteration order and the function
// has no side effects; fds is read-only within a call. Termination is
// bounded by the total number of distinct attributes in play.
//
// Only Accepted dependencies participate; needs_review and rejected entries
// are ignored so an unconfirmed candidate can never leak into key inference
// or decomposition.
func Closure(attrs AttrSet, fds []FD) AttrSet {
	have := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		have[a] = struct{}{}
	}

	contains := func(s AttrSet) bool {
		for _, a := range s {
			if _, ok := have[a]; !ok {
				return false
			}
		}
		return true
	}

	used := make([]bool, len(fds))
	for changed := true; changed; {
		changed = false
		for i, fd := range fds {
			if used[i] || !fd.Accepted() {
				continue
			}
			if !contains(fd.Determinant) {
				continue
			}
			used[i] = true
			for _, a := range fd.Dependent {
				if _, ok := have[a]; !ok {
					have[a] = struct{}{}
					changed = true
				}
			}
		}
	}

	out := make([]string, 0, len(have))
	for a := range have {
		out = append(out, a)
	}
	return NewAttrSet(out...)
}

// IsSuperkey reports whether attrs determines every attribute of all.
func IsSuperkey(attrs, all AttrSet, fds []FD) bool {
	return Closure(attrs, fds).ContainsAll(all)
}
