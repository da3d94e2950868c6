// Command normalizer discovers functional dependencies in tabular data,
// plans a normalized relational schema, and applies that plan to new data.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"normalizer/internal/metrics"
	"normalizer/internal/metrics/datadog"
	csvparser "normalizer/internal/parser/csv"
	"normalizer/internal/parser/htmltable"
	jsonparser "normalizer/internal/parser/json"
	"normalizer/internal/relation"
)

var log *logrus.Logger

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		envFile  string
	)

	root := &cobra.Command{
		Use:   "normalizer",
		Short: "Functional dependency discovery and relational normalization",
		Long: `normalizer analyzes tabular data (CSV, JSON, HTML tables) for functional
dependencies, assesses the current normal form, synthesizes a 3NF or BCNF
schema, and splits the data into the resulting tables.

Typical flow:

  normalizer analyze data.csv -o analysis.json
  # review analysis.json, confirm or reject the open questions
  normalizer normalize data.csv --analysis analysis.json -o ./normalized
  normalizer transform new_data.csv --plan ./normalized/plan.json -o ./output`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = setupLogging(logLevel)
			loadEnvFile(envFile, log)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file with credentials")

	root.AddCommand(
		newAnalyzeCmd(),
		newNormalizeCmd(),
		newTransformCmd(),
		newServeCmd(),
		newMkdataCmd(),
	)
	return root
}

func setupLogging(level string) *logrus.Logger {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)
	return logger
}

func loadEnvFile(path string, logger *logrus.Logger) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warningf("could not load %s: %v", path, err)
	}
}

// setupMetrics wires the Datadog backend when DD_API_KEY is present and
// returns a shutdown func that flushes whatever is buffered.
func setupMetrics(ctx context.Context, logger *logrus.Logger) func() {
	if os.Getenv("DD_API_KEY") == "" {
		return func() {}
	}
	backend, err := datadog.NewBackend(ctx, datadog.Options{
		Tags: datadog.ParseTagsCSV(os.Getenv("DD_TAGS")),
	})
	if err != nil {
		logger.Warningf("datadog metrics disabled: %v", err)
		return func() {}
	}
	metrics.SetBackend(backend)
	logger.Debug("datadog metrics enabled")
	return func() {
		if err := backend.Close(); err != nil {
			logger.Warningf("metrics flush: %v", err)
		}
	}
}

// inputFlags are the shared source-file options of analyze, normalize and
// transform.
type inputFlags struct {
	format    string
	encoding  string
	delimiter string
	noHeader  bool
	selector  string
	tableIdx  int
}

func registerInputFlags(cmd *cobra.Command, f *inputFlags) {
	cmd.Flags().StringVar(&f.format, "format", "", "Input format: csv, json or html (default: by file extension)")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "CSV encoding: utf-8, latin1, windows-1252 or utf-16")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV field delimiter (default ',')")
	cmd.Flags().BoolVar(&f.noHeader, "no-header", false, "Treat the first CSV record as data")
	cmd.Flags().StringVar(&f.selector, "selector", "", "CSS selector for the HTML table to read")
	cmd.Flags().IntVar(&f.tableIdx, "table-index", 0, "Index among the tables matching the selector")
}

func loadDataset(path string, f inputFlags) (*relation.Dataset, error) {
	format := f.format
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = "json"
		case ".html", ".htm":
			format = "html"
		default:
			format = "csv"
		}
	}

	switch format {
	case "csv":
		opt := csvparser.Options{Encoding: f.encoding, NoHeader: f.noHeader}
		if f.delimiter != "" {
			opt.Comma, _ = utf8.DecodeRuneInString(f.delimiter)
		}
		return csvparser.LoadFile(path, opt)
	case "json":
		return jsonparser.LoadFile(path)
	case "html":
		return htmltable.LoadFile(path, htmltable.Options{Selector: f.selector, Index: f.tableIdx})
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}
