// Package normalize turns a confirmed dependency set into a normalized
// schema: candidate keys, normal-form assessment, minimal cover, and the
// 3NF-synthesis and BCNF-decomposition algorithms that produce a
// decomposition plan.
//
// The two decomposition targets trade off differently:
//   - Synthesize3NF is dependency-preserving and lossless by construction;
//     it is the default/safe target.
//   - DecomposeBCNF removes every redundancy anomaly but may leave some
//     dependencies unenforceable by any single relation; those are reported
//     on the plan rather than silently lost.
//
// All algorithms consume only Accepted dependencies, fail fast with a typed
// error on an invalid dependency set, and never return a partial plan.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"normalizer/internal/relation"
)

// PlanVersion is written into every serialized plan.
const PlanVersion = "1.0"

// Target forms accepted by the decomposition entry points.
const (
	Target3NF  = "3NF"
	TargetBCNF = "BCNF"
)

// ForeignKey links child columns to a parent relation's primary key.
type ForeignKey struct {
	Columns        []string `json:"columns"`
	ParentRelation string   `json:"parent_relation"`
	ParentColumns  []string `json:"parent_columns"`
}

// RelationSchema is one output relation of a decomposition plan.
type RelationSchema struct {
	Name        string           `json:"name"`
	Attrs       relation.AttrSet `json:"columns"`
	PrimaryKey  relation.AttrSet `json:"primary_key"`
	ForeignKeys []ForeignKey     `json:"foreign_keys,omitempty"`

	// FDs are the confirmed dependencies this relation expresses: every
	// attribute of each listed dependency is contained in Attrs.
	FDs []relation.FD `json:"fds,omitempty"`
}

// Plan is a complete decomposition: the output relations, their linkage,
// and any dependencies the decomposition could not keep enforceable.
//
// A plan is created once per normalization run and is immutable thereafter;
// the transform layer replays it against new datasets.
type Plan struct {
	Version         string           `json:"version"`
	TargetForm      string           `json:"target_form"`
	OriginalColumns []string         `json:"original_columns"`
	Relations       []RelationSchema `json:"relations"`

	// UnenforcedFDs lists input dependencies no single output relation
	// contains. Only BCNF decomposition can populate this.
	UnenforcedFDs []relation.FD `json:"unenforced_fds,omitempty"`
}

// Relation returns the named relation schema.
func (p *Plan) Relation(name string) (RelationSchema, bool) {
	for _, r := range p.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return RelationSchema{}, false
}

// ReferencedParents returns the names of relations some other relation
// points at through a foreign key. A relation absent from this set is
// "optional" at transform time: skipping it cannot orphan anyone.
func (p *Plan) ReferencedParents() map[string]bool {
	out := make(map[string]bool)
	for _, r := range p.Relations {
		for _, fk := range r.ForeignKeys {
			out[fk.ParentRelation] = true
		}
	}
	return out
}

// Marshal serializes the plan for persistence.
func (p *Plan) Marshal() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalPlan restores a persisted plan and checks the envelope. A
// round-tripped plan is behaviorally identical to the original: same
// attribute sets, same keys, same linkage.
func UnmarshalPlan(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if p.Version == "" {
		return nil, fmt.Errorf("decode plan: missing version")
	}
	if len(p.Relations) == 0 {
		return nil, fmt.Errorf("decode plan: no relations")
	}
	return &p, nil
}

// computeForeignKeys links every relation whose attributes contain another
// relation's full primary key to that parent. Single-column parent keys are
// matched through non-key columns; multi-column parent keys are matched by
// containment, which covers the shared determinant a BCNF split leaves on
// both sides.
func computeForeignKeys(relations []RelationSchema) {
	for i := range relations {
		child := &relations[i]
		child.ForeignKeys = nil

		for j := range relations {
			parent := &relations[j]
			if i == j || len(parent.PrimaryKey) == 0 {
				continue
			}
			if !child.Attrs.ContainsAll(parent.PrimaryKey) {
				continue
			}
			if child.PrimaryKey.Equal(parent.PrimaryKey) {
				// Identical keys mean the relations share an identity, not
				// a parent/child reference.
				continue
			}
			child.ForeignKeys = append(child.ForeignKeys, ForeignKey{
				Columns:        append([]string(nil), parent.PrimaryKey...),
				ParentRelation: parent.Name,
				ParentColumns:  append([]string(nil), parent.PrimaryKey...),
			})
		}

		sort.Slice(child.ForeignKeys, func(a, b int) bool {
			x, y := child.ForeignKeys[a], child.ForeignKeys[b]
			if x.ParentRelation != y.ParentRelation {
				return x.ParentRelation < y.ParentRelation
			}
			return strings.Join(x.Columns, ",") < strings.Join(y.Columns, ",")
		})
	}
}

// relationName builds a readable name from a relation's key and dependent
// columns: a single dependent pluralizes the dependent, a single key column
// pluralizes the key with any _id suffix stripped, anything else joins the
// first two key columns.
func relationName(key, attrs relation.AttrSet) string {
	deps := attrs.Diff(key)
	switch {
	case len(deps) == 1:
		return deps[0] + "s"
	case len(key) == 1:
		return strings.ReplaceAll(key[0], "_id", "") + "s"
	case len(key) >= 2:
		return key[0] + "_" + key[1]
	default:
		return "main"
	}
}

// nameRelations assigns unique names in plan order, suffixing collisions.
func nameRelations(relations []RelationSchema) {
	used := make(map[string]int, len(relations))
	for i := range relations {
		name := relations[i].Name
		if name == "" {
			name = relationName(relations[i].PrimaryKey, relations[i].Attrs)
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		relations[i].Name = name
	}
}
