// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Benchmark run command

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sony-level/pybench/internal/dispatch"
	"github.com/sony-level/pybench/internal/registry"
)

var (
	runAll         bool
	runCheckout    bool
	runSourceRef   string
	runAsModule    bool
	runRepetitions int
	runFilter      string
	runContext     []string
)

var runCmd = &cobra.Command{
	Use:   "run <target> [<workspace>...]",
	Short: "Run a benchmark suite in one or more workspaces",
	Long: `Run the benchmark files matching the target - a file, a directory, or
a glob relative to each workspace root - as subprocesses of the
workspace's Python interpreter, and persist the timings as a new run.

With --checkout, the positional arguments after the target are git refs
instead of workspace identifiers. Each ref is checked out inside the
main worktree in turn, benchmarked there, and the original checkout is
restored afterwards. Only one checkout-mode run may use the main
worktree at a time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		// an explicit value travels as given, even an invalid one, so the
		// dispatcher can reject it instead of silently using the default
		repetitions := effectiveRepetitions(
			cmd.Flags().Changed("repetitions"), runRepetitions, a.cfg.Repetitions,
		)

		opts := dispatch.RunOptions{
			Target:      args[0],
			Repetitions: repetitions,
			Filter:      runFilter,
			Context:     runContext,
			AsModule:    runAsModule,
		}

		d := dispatch.New(a.store, os.Stdout, verbose)

		var summary *dispatch.Summary
		if runCheckout {
			summary, err = runWithCheckout(a, d, args[1:], opts)
		} else {
			summary, err = runInWorkspaces(a, d, args[1:], opts)
		}
		if err != nil {
			return err
		}

		for _, failure := range summary.Failures {
			log.Error(failure.Error())
		}
		fmt.Printf("Run %d finished: %d benchmarks dispatched, %d failed\n",
			summary.Run, summary.Dispatched, len(summary.Failures))

		if summary.Failed() {
			return fmt.Errorf("%d benchmark dispatches failed", len(summary.Failures))
		}
		return nil
	},
}

// runInWorkspaces dispatches into registered workspaces named by their
// identifiers, or all of them with --all.
func runInWorkspaces(a *app, d *dispatch.Dispatcher, identifiers []string, opts dispatch.RunOptions) (*dispatch.Summary, error) {
	records, err := a.registry.List()
	if err != nil {
		return nil, err
	}

	var selected []*registry.Workspace
	switch {
	case runAll:
		selected = records
	case len(identifiers) > 0:
		for _, identifier := range identifiers {
			ws, err := a.registry.Resolve(identifier)
			if err != nil {
				return nil, err
			}
			selected = append(selected, ws)
		}
	case len(records) == 1:
		selected = records
	default:
		return nil, fmt.Errorf(
			"%d workspaces are registered: name the ones to benchmark, or pass --all",
			len(records),
		)
	}

	return d.Run(selected, opts)
}

// effectiveRepetitions falls back to the configured repetition count only
// when the flag was not set at all
func effectiveRepetitions(changed bool, flagValue, configured int) int {
	if changed {
		return flagValue
	}
	return configured
}

// runWithCheckout benchmarks refs inside the main worktree, holding the
// registry lock so no concurrent run or mutation touches it meanwhile.
func runWithCheckout(a *app, d *dispatch.Dispatcher, refs []string, opts dispatch.RunOptions) (*dispatch.Summary, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("checkout mode requires at least one ref to benchmark")
	}

	release, ok, err := a.registry.Store().TryAcquire()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("another pybench process is using the main worktree; try again later")
	}
	defer release()

	main, err := a.registry.Resolve(registry.MainName)
	if err != nil {
		return nil, err
	}

	return d.CheckoutRun(a.repo, main, dispatch.CheckoutOptions{
		RunOptions: opts,
		Refs:       refs,
		SourceRef:  runSourceRef,
	})
}

func init() {
	runCmd.Flags().BoolVarP(&runAll, "all", "A", false,
		"Run in every registered workspace")
	runCmd.Flags().BoolVar(&runCheckout, "checkout", false,
		"Benchmark git refs by checking them out in the main worktree")
	runCmd.Flags().StringVar(&runSourceRef, "source-ref", "",
		"Checkout mode: take the benchmark files from this ref instead of the measured one")
	runCmd.Flags().BoolVarP(&runAsModule, "as-module", "m", false,
		"Run benchmark files as modules (python -m) instead of scripts")
	runCmd.Flags().IntVar(&runRepetitions, "repetitions", 0,
		"Repetitions per benchmark (defaults to the configured value)")
	runCmd.Flags().StringVar(&runFilter, "filter", "",
		"Only run benchmarks whose name matches this regular expression")
	runCmd.Flags().StringArrayVar(&runContext, "context", nil,
		"Global context value as key=value, recorded with every result (repeatable)")
	rootCmd.AddCommand(runCmd)
}
