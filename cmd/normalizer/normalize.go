package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"normalizer/internal/analysis"
	"normalizer/internal/discover"
	"normalizer/internal/metrics"
	"normalizer/internal/normalize"
	csvparser "normalizer/internal/parser/csv"
	"normalizer/internal/relation"
	"normalizer/internal/render"
	"normalizer/internal/transform"
)

func newNormalizeCmd() *cobra.Command {
	var (
		in           inputFlags
		analysisPath string
		target       string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "normalize <input>",
		Short: "Synthesize a 3NF or BCNF schema and split the data into tables",
		Long: `normalize reads an input file and a reviewed analysis, computes a minimal
cover of the confirmed dependencies and synthesizes the target schema. The
output directory receives plan.json, schema.sql, erd.md, README.md and one
CSV per relation under tables/.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shutdown := setupMetrics(cmd.Context(), log)
			defer shutdown()

			ds, err := loadDataset(args[0], in)
			if err != nil {
				return err
			}

			var fds []relation.FD
			if analysisPath != "" {
				res, err := readAnalysis(analysisPath)
				if err != nil {
					return err
				}
				fds = res.Dependencies
			} else {
				log.Info("no --analysis given, detecting dependencies now")
				res, err := analysis.Analyze(ds, discover.Options{})
				if err != nil {
					return err
				}
				if n := len(res.Questions); n > 0 {
					log.Warningf("%d dependencies need review; only auto-confirmed ones will be enforced", n)
				}
				fds = res.Dependencies
			}

			start := time.Now()
			plan, err := buildPlan(ds, fds, target)
			metrics.RecordStage("normalize", err, time.Since(start))
			if err != nil {
				return err
			}
			log.Infof("synthesized %d relations in %s", len(plan.Relations), plan.TargetForm)
			for _, fd := range plan.UnenforcedFDs {
				log.Warningf("dependency %s is not enforced by the %s schema", fd, plan.TargetForm)
			}

			result, err := transform.Apply(plan, ds, false)
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				log.Warning(w)
			}

			if err := writePlanDir(outputDir, plan, ds, result, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s schema to %s\n", plan.TargetForm, outputDir)
			return nil
		},
	}

	registerInputFlags(cmd, &in)
	cmd.Flags().StringVarP(&analysisPath, "analysis", "c", "", "Reviewed analysis JSON from 'normalizer analyze'")
	cmd.Flags().StringVarP(&target, "target", "t", normalize.Target3NF, "Target normal form: 3NF or BCNF")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./normalized", "Output directory")
	return cmd
}

func readAnalysis(path string) (*analysis.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var res analysis.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	return &res, nil
}

// buildPlan runs the accepted dependencies through minimal cover and the
// target decomposition.
func buildPlan(ds *relation.Dataset, fds []relation.FD, target string) (*normalize.Plan, error) {
	all := ds.AttrSet()
	accepted := relation.Accepted(fds)
	if err := relation.ValidateFDs(all, accepted); err != nil {
		return nil, err
	}
	cover, err := normalize.MinimalCover(accepted)
	if err != nil {
		return nil, err
	}

	switch target {
	case normalize.Target3NF:
		keys, err := normalize.InferKeys(all, cover)
		if err != nil {
			return nil, err
		}
		return normalize.Synthesize3NF(cover, keys, all)
	case normalize.TargetBCNF:
		return normalize.DecomposeBCNF(all, cover)
	default:
		return nil, fmt.Errorf("unknown target form %q (want 3NF or BCNF)", target)
	}
}

// writePlanDir lays out a plan directory: plan.json, schema.sql, erd.md,
// README.md and tables/<relation>.csv.
func writePlanDir(dir string, plan *normalize.Plan, source *relation.Dataset, result *transform.Result, sourceFile string) error {
	tablesDir := filepath.Join(dir, "tables")
	if err := os.MkdirAll(tablesDir, 0o755); err != nil {
		return err
	}

	planJSON, err := plan.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "plan.json"), append(planJSON, '\n'), 0o644); err != nil {
		return err
	}

	ddl, err := render.SQLDDL(plan, source)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "schema.sql"), []byte(ddl+"\n"), 0o644); err != nil {
		return err
	}

	erd := render.WrapMermaid(render.MermaidERD(plan, source))
	if err := os.WriteFile(filepath.Join(dir, "erd.md"), []byte(erd), 0o644); err != nil {
		return err
	}

	readme := render.PlanReadme(plan, filepath.Base(sourceFile))
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme), 0o644); err != nil {
		return err
	}

	for name, table := range result.Tables {
		path := filepath.Join(tablesDir, name+".csv")
		if err := csvparser.WriteFile(path, table); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.Infof("table %s: %d rows", name, table.NumRows())
	}
	return nil
}
