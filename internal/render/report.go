package render

import (
	"fmt"
	"strings"

	"normalizer/internal/analysis"
	"normalizer/internal/normalize"
)

// Report renders an analysis as a plain-text summary for terminals and
// log files.
func Report(res *analysis.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", res.Rows, len(res.Columns))

	b.WriteString("Columns:\n")
	for _, c := range res.Columns {
		null := ""
		if c.Nullable {
			null = ", nullable"
		}
		fmt.Fprintf(&b, "  %s (%s%s)\n", c.Name, c.Type, null)
	}

	if len(res.Dependencies) == 0 {
		b.WriteString("Functional dependencies: none\n")
	} else {
		fmt.Fprintf(&b, "Functional dependencies (%d):\n", len(res.Dependencies))
		for _, fd := range res.Dependencies {
			fmt.Fprintf(&b, "  %s  (%.1f%%, %s)\n", fd, fd.Confidence*100, fd.Status)
		}
	}

	if len(res.CandidateKeys) == 0 {
		b.WriteString("Candidate keys: none\n")
	} else {
		b.WriteString("Candidate keys:\n")
		for _, k := range res.CandidateKeys {
			fmt.Fprintf(&b, "  (%s)\n", k)
		}
	}

	fmt.Fprintf(&b, "Current normal form: %s\n", res.NormalForm)
	for _, v := range res.Report.Violations {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", v.Level, v.FD, v.Reason)
	}

	if len(res.Questions) > 0 {
		fmt.Fprintf(&b, "Open questions (%d):\n", len(res.Questions))
		for _, q := range res.Questions {
			fmt.Fprintf(&b, "  - %s\n", q.Question)
		}
	}
	if res.Sampled {
		b.WriteString("Note: detection ran on a sample and was re-validated on the full data.\n")
	}

	return b.String()
}

// PlanReadme renders the README written next to a plan's output files.
func PlanReadme(plan *normalize.Plan, sourceFile string) string {
	var tables []string
	for _, rel := range plan.Relations {
		tables = append(tables, fmt.Sprintf("- `%s.csv`: %s", rel.Name, strings.Join(rel.Attrs, ", ")))
	}

	var fks []string
	for _, rel := range plan.Relations {
		for _, fk := range rel.ForeignKeys {
			fks = append(fks, fmt.Sprintf("- `%s.%s` -> `%s.%s`",
				rel.Name, strings.Join(fk.Columns, ","),
				fk.ParentRelation, strings.Join(fk.ParentColumns, ",")))
		}
	}
	fkList := "None"
	if len(fks) > 0 {
		fkList = strings.Join(fks, "\n")
	}

	var unenforced string
	if len(plan.UnenforcedFDs) > 0 {
		var lines []string
		for _, fd := range plan.UnenforcedFDs {
			lines = append(lines, fmt.Sprintf("- `%s`", fd))
		}
		unenforced = "\n## Unenforced Dependencies\n\nNo single table contains these; enforce them in application code:\n\n" +
			strings.Join(lines, "\n") + "\n"
	}

	return fmt.Sprintf(`# Normalized Database Schema

## Source

- Original file: `+"`%s`"+`
- Target normal form: %s

## Tables

%s

## Relationships

%s
%s
## Files

- `+"`tables/`"+` - Normalized CSV files
- `+"`schema.sql`"+` - SQL DDL statements
- `+"`erd.md`"+` - Entity-relationship diagram (Mermaid)
- `+"`plan.json`"+` - Reusable decomposition plan

## Re-running Transformation

To apply this decomposition to new data with the same structure:

    normalizer transform new_data.csv --plan plan.json --output ./output
`, sourceFile, plan.TargetForm, strings.Join(tables, "\n"), fkList, unenforced)
}
