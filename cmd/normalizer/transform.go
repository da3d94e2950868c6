package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"normalizer/internal/metrics"
	"normalizer/internal/normalize"
	csvparser "normalizer/internal/parser/csv"
	"normalizer/internal/storage"
	"normalizer/internal/transform"

	// Register the database backends for --db-kind.
	_ "normalizer/internal/storage/mssql"
	_ "normalizer/internal/storage/mysql"
	_ "normalizer/internal/storage/postgres"
	_ "normalizer/internal/storage/sqlite"
)

func newTransformCmd() *cobra.Command {
	var (
		in        inputFlags
		planPath  string
		outputDir string
		strict    bool
		dbKind    string
		dsn       string
	)

	cmd := &cobra.Command{
		Use:   "transform <input>",
		Short: "Apply a saved normalization plan to new data",
		Long: `transform splits a new data file into the tables of a previously saved
plan. Columns the plan does not know are reported and skipped; in strict
mode any schema drift is an error instead. With --dsn the tables are also
created and loaded into a database, parents before children.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			shutdown := setupMetrics(ctx, log)
			defer shutdown()

			plan, err := readPlan(planPath)
			if err != nil {
				return err
			}
			ds, err := loadDataset(args[0], in)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := transform.Apply(plan, ds, strict)
			metrics.RecordStage("transform", err, time.Since(start))
			if err != nil {
				return err
			}
			for _, table := range result.Tables {
				metrics.RecordRows("transformed", table.NumRows())
			}
			for _, w := range result.Warnings {
				log.Warning(w)
			}
			for _, name := range result.Skipped {
				log.Infof("skipped relation %s (source lacks its columns)", name)
			}

			tablesDir := filepath.Join(outputDir, "tables")
			if err := os.MkdirAll(tablesDir, 0o755); err != nil {
				return err
			}
			for name, table := range result.Tables {
				path := filepath.Join(tablesDir, name+".csv")
				if err := csvparser.WriteFile(path, table); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				log.Infof("table %s: %d rows", name, table.NumRows())
			}

			if dsn != "" {
				repo, err := storage.New(ctx, storage.Config{Kind: dbKind, DSN: os.ExpandEnv(dsn)})
				if err != nil {
					return err
				}
				defer repo.Close()

				written, err := storage.Load(ctx, repo, plan, result.Tables, ds)
				if err != nil {
					return err
				}
				log.Infof("loaded %d rows into %s", written, dbKind)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tables to %s\n", len(result.Tables), tablesDir)
			return nil
		},
	}

	registerInputFlags(cmd, &in)
	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "plan.json produced by 'normalizer normalize'")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "./output", "Output directory")
	cmd.Flags().BoolVarP(&strict, "strict", "s", false, "Fail on schema drift instead of skipping")
	cmd.Flags().StringVar(&dbKind, "db-kind", "sqlite", "Database backend: sqlite, postgres, mysql or mssql")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN; when set, tables are also loaded into the database")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func readPlan(path string) (*normalize.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	plan, err := normalize.UnmarshalPlan(data)
	if err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return plan, nil
}
