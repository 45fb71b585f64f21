package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-finder/internal/batch"
	"github.com/sells-group/contact-finder/internal/monitoring"
	"github.com/sells-group/contact-finder/internal/sheet"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resolve contact emails for every company in a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		limit, _ := cmd.Flags().GetInt("limit")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		if limit > 0 {
			cfg.Batch.MaxCompanies = limit
		}
		if concurrency > 0 {
			cfg.Batch.Concurrency = concurrency
		}
		if err := cfg.Validate("run"); err != nil {
			return err
		}
		if output == "" {
			output = defaultOutputPath(input)
		}

		env, err := initPipeline(ctx, strategy)
		if err != nil {
			return eris.Wrap(err, "init pipeline")
		}

		report, err := runFile(ctx, batch.NewRunner(env.Resolver, batchConfig()), input, output)
		if err != nil {
			return err
		}

		monitoring.NewAlerter(cfg.Monitoring).Check(ctx, report)

		fmt.Printf("Found %d/%d (%.1f%%) -> %s\n", report.Found, report.Attempted, report.FoundPercent(), output)
		if err := report.Err(); err != nil {
			zap.L().Warn("run: partial results", zap.Error(err), zap.Int("unprocessed", report.Unprocessed))
		}
		return nil
	},
}

// runFile reads companies from in, resolves them and writes one row per
// attempted company to out.
func runFile(ctx context.Context, runner *batch.Runner, in, out string) (*batch.Report, error) {
	if _, err := sheet.FormatFromPath(out); err != nil {
		return nil, err
	}

	table, err := sheet.ReadFile(in)
	if err != nil {
		return nil, eris.Wrap(err, "read input")
	}
	records, err := sheet.Records(table)
	if err != nil {
		return nil, eris.Wrap(err, "read input")
	}

	log := zap.L().With(zap.String("input", in))
	log.Info("run: starting", zap.Int("rows", len(records)))

	report := runner.Run(ctx, records)

	if err := sheet.WriteFile(out, report.Results); err != nil {
		return report, eris.Wrap(err, "write output")
	}

	log.Info("run: complete",
		zap.String("run_id", report.RunID),
		zap.String("output", out),
		zap.Int("attempted", report.Attempted),
		zap.Int("found", report.Found),
		zap.Duration("duration", report.Duration()),
	)
	return report, nil
}

// defaultOutputPath puts results next to the input as <name>_contacts.csv.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_contacts.csv"
}

func init() {
	runCmd.Flags().String("input", "", "CSV or XLSX file with a company column (required)")
	runCmd.Flags().String("output", "", "output file; .csv, .xlsx or .json (default <input>_contacts.csv)")
	runCmd.Flags().Int("limit", 0, "maximum companies to attempt (default from config)")
	runCmd.Flags().Int("concurrency", 0, "companies resolved in parallel (default from config)")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}
