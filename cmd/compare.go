// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Cross-ref comparison command

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sony-level/pybench/internal/report"
)

var (
	compareTargetFilter    string
	compareBenchmarkFilter string
	compareContextFilter   string
	compareAbsolute        bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <run> <anchor-ref> <ref>...",
	Short: "Compare benchmark results between refs of one run",
	Long: `Compare the timings of one or more refs against an anchor ref within a
single run. Every row shows the relative wall time difference and the
speedup factor against the anchor; benchmarks missing from the anchor's
results are omitted. The run can be a numeric identifier, "latest", or
"latest^{n}" for the n-th most recent run.`,
	Args: cobra.MinimumNArgs(3),
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

		reporter := report.New(a.store, a.cfg.TimeUnit, a.cfg.SignificantDigits)
		filters := report.Filters{
			Target:    compareTargetFilter,
			Benchmark: compareBenchmarkFilter,
			Context:   compareContextFilter,
		}

		rendered, err := reporter.Compare(run, args[1], args[2:], filters, compareAbsolute)
		if err != nil {
			return err
		}

		fmt.Println(rendered)
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareTargetFilter, "target-filter", "",
		"Only compare results from benchmark files matching this regular expression")
	compareCmd.Flags().StringVar(&compareBenchmarkFilter, "benchmark-filter", "",
		"Only compare benchmarks whose name matches this regular expression")
	compareCmd.Flags().StringVar(&compareContextFilter, "context-filter", "",
		"Show context values whose key matches this regular expression as extra columns")
	compareCmd.Flags().BoolVar(&compareAbsolute, "absolute", false,
		"Report absolute timings only, without delta and speedup columns")
	rootCmd.AddCommand(compareCmd)
}
