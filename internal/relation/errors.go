package relation

import (
	"fmt"
	"strings"
)

// The four externally meaningful failure kinds. Detection and assessment
// never return these; they always produce a (possibly empty) report. The
// algorithmic components fail fast with one of them and no partial output.

// SchemaMismatchError reports that a dataset lacks columns a decomposition
// plan requires.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: missing columns: %s", strings.Join(e.Missing, ", "))
}

// OrphanForeignKeyError reports child foreign-key values with no matching
// parent key during a transform. Rows are never silently dropped; the
// offending values are surfaced to the caller.
type OrphanForeignKeyError struct {
	Relation string
	Parent   string
	Columns  []string
	Values   []string
}

func (e *OrphanForeignKeyError) Error() string {
	vals := e.Values
	const maxShown = 20
	suffix := ""
	if len(vals) > maxShown {
		suffix = fmt.Sprintf(" (and %d more)", len(vals)-maxShown)
		vals = vals[:maxShown]
	}
	return fmt.Sprintf(
		"orphan foreign key: %s(%s) -> %s: values %s%s",
		e.Relation, strings.Join(e.Columns, ","), e.Parent,
		strings.Join(vals, ", "), suffix,
	)
}

// InvalidDependencySetError reports a dependency set rejected before any
// algorithm ran: unknown columns or overlapping sides.
type InvalidDependencySetError struct {
	FD     string
	Reason string
}

func (e *InvalidDependencySetError) Error() string {
	if e.FD == "" {
		return "invalid dependency set: " + e.Reason
	}
	return fmt.Sprintf("invalid dependency set: %s: %s", e.FD, e.Reason)
}

// InternalInvariantError indicates an algorithm defect, such as a BCNF split
// that fails the lossless-join check. It is fatal: callers must abort rather
// than accept a silently lossy decomposition.
type InternalInvariantError struct {
	Reason string
}

func (e *InternalInvariantError) Error() string {
	return "internal invariant violation: " + e.Reason
}
