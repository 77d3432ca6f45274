// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Result reporting command

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sony-level/pybench/internal/report"
)

var (
	reportTargetFilter    string
	reportBenchmarkFilter string
	reportContextFilter   string
)

var reportCmd = &cobra.Command{
	Use:   "report <run> [<ref>...]",
	Short: "Report the results of a benchmark run",
	Long: `Render the timings recorded for the given run. The run can be a
numeric identifier, "latest", or "latest^{n}" for the n-th most recent
run. Without refs, every ref present in the run is reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		run, err := a.store.ResolveRun(args[0])
		if err != nil {
			return err
		}

		refs := args[1:]
		if len(refs) == 0 {
			if refs, err = a.store.Refs(run); err != nil {
				return err
			}
		}

		reporter := report.New(a.store, a.cfg.TimeUnit, a.cfg.SignificantDigits)
		filters := report.Filters{
			Target:    reportTargetFilter,
			Benchmark: reportBenchmarkFilter,
			Context:   reportContextFilter,
		}

		for _, ref := range refs {
			rendered, err := reporter.Report(run, ref, filters)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
		}

		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportTargetFilter, "target-filter", "",
		"Only report results from benchmark files matching this regular expression")
	reportCmd.Flags().StringVar(&reportBenchmarkFilter, "benchmark-filter", "",
		"Only report benchmarks whose name matches this regular expression")
	reportCmd.Flags().StringVar(&reportContextFilter, "context-filter", "",
		"Show context values whose key matches this regular expression as extra columns")
	rootCmd.AddCommand(reportCmd)
}
