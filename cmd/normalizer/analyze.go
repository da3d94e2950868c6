package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"normalizer/internal/analysis"
	"normalizer/internal/discover"
	"normalizer/internal/render"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		in       inputFlags
		output   string
		sample   int
		maxArity int
		workers  int
		asText   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <input>",
		Short: "Detect functional dependencies and assess the current normal form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shutdown := setupMetrics(cmd.Context(), log)
			defer shutdown()

			ds, err := loadDataset(args[0], in)
			if err != nil {
				return err
			}
			log.Infof("loaded %d rows, %d columns from %s", ds.NumRows(), len(ds.Columns), args[0])

			opt := discover.Options{MaxArity: maxArity, Workers: workers}
			if sample > 0 {
				opt.SampleThreshold = sample
				opt.SampleSize = sample
			}
			res, err := analysis.Analyze(ds, opt)
			if err != nil {
				return err
			}

			if output != "" {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
					return err
				}
				log.Infof("wrote analysis to %s", output)
			}

			if asText || output == "" {
				fmt.Fprint(cmd.OutOrStdout(), render.Report(res))
			}
			if n := len(res.Questions); n > 0 {
				log.Infof("%d open questions need review before normalizing", n)
			}
			return nil
		},
	}

	registerInputFlags(cmd, &in)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the analysis JSON to this file")
	cmd.Flags().IntVarP(&sample, "sample", "s", 0, "Sample N rows for large files")
	cmd.Flags().IntVar(&maxArity, "max-arity", 0, "Maximum determinant size (default 2)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel detection workers (default serial)")
	cmd.Flags().BoolVar(&asText, "text", false, "Print the text report even when --output is set")
	return cmd
}
