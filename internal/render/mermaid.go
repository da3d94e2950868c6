package render

import (
	"fmt"
	"strings"

	"normalizer/internal/normalize"
	"normalizer/internal/relation"
)

// MermaidERD renders the plan as a Mermaid erDiagram: one "has" edge per
// foreign key, then one block per relation with PK/FK marks.
func MermaidERD(plan *normalize.Plan, source *relation.Dataset) string {
	lines := []string{"erDiagram"}

	for _, rel := range plan.Relations {
		for _, fk := range rel.ForeignKeys {
			lines = append(lines, fmt.Sprintf("    %s ||--o{ %s : has", fk.ParentRelation, rel.Name))
		}
	}

	for _, rel := range plan.Relations {
		lines = append(lines, fmt.Sprintf("    %s {", rel.Name))
		for _, name := range rel.Attrs {
			var marks []string
			if rel.PrimaryKey.Contains(name) {
				marks = append(marks, "PK")
			}
			if isForeignKeyColumn(rel, name) {
				marks = append(marks, "FK")
			}
			suffix := ""
			if len(marks) > 0 {
				suffix = " " + strings.Join(marks, ",")
			}
			lines = append(lines, fmt.Sprintf("        %s %s%s", mermaidType(source, name), name, suffix))
		}
		lines = append(lines, "    }")
	}

	return strings.Join(lines, "\n")
}

// WrapMermaid embeds a diagram in a standalone markdown document.
func WrapMermaid(diagram string) string {
	return "# Entity Relationship Diagram\n\n```mermaid\n" + diagram + "\n```\n"
}

func isForeignKeyColumn(rel normalize.RelationSchema, name string) bool {
	for _, fk := range rel.ForeignKeys {
		for _, c := range fk.Columns {
			if c == name {
				return true
			}
		}
	}
	return false
}

func mermaidType(source *relation.Dataset, name string) string {
	col, ok := source.ColumnByName(name)
	if !ok {
		return "string"
	}
	switch col.Type {
	case relation.TypeInteger:
		return "int"
	case relation.TypeFloat:
		return "float"
	case relation.TypeBool:
		return "boolean"
	case relation.TypeDate:
		return "date"
	default:
		return "string"
	}
}
