// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Checkout-mode execution strategy

package dispatch

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/sony-level/pybench/internal/gitx"
	"github.com/sony-level/pybench/internal/registry"
)

// CheckoutOptions extends RunOptions for the checkout strategy
type CheckoutOptions struct {
	RunOptions
	// Refs are the refs to benchmark inside the main worktree
	Refs []string
	// SourceRef optionally supplies the benchmark files from a different
	// ref than the one being measured.
	SourceRef string
}

// CheckoutRun benchmarks each requested ref inside the main workspace by
// checking it out in place. The ref checked out before the run is restored
// unconditionally, even when dispatches fail. Only one checkout-mode run
// may operate on the main worktree at a time; callers hold the registry
// lock for the duration.
func (d *Dispatcher) CheckoutRun(repo *gitx.Repository, main *registry.Workspace, opts CheckoutOptions) (*Summary, error) {
	if !main.IsMain() {
		return nil, fmt.Errorf("checkout mode operates on the main workspace, got %q", main.Name)
	}
	if main.Python == nil || main.Python.Executable == "" {
		return nil, fmt.Errorf("the main workspace has no Python environment attached")
	}

	context, err := opts.validate()
	if err != nil {
		return nil, err
	}

	// fail on unknown refs before touching the worktree
	for _, ref := range opts.Refs {
		if _, _, err := repo.Resolve(ref); err != nil {
			return nil, err
		}
	}
	if opts.SourceRef != "" {
		if _, _, err := repo.Resolve(opts.SourceRef); err != nil {
			return nil, err
		}
	}

	previous, _, err := repo.Head()
	if err != nil {
		return nil, err
	}

	run, err := d.store.NewRun()
	if err != nil {
		return nil, err
	}

	defer func() {
		if restoreErr := gitx.Checkout(main.Root, previous); restoreErr != nil {
			log.Error("failed to restore original checkout", "ref", previous, "err", restoreErr)
		}
	}()

	summary := &Summary{Run: run}

	for _, ref := range opts.Refs {
		if err := d.runRef(summary, repo, main, ref, opts, context); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// runRef benchmarks a single ref in the main worktree, materializing and
// restoring sourced benchmark files around the dispatch.
func (d *Dispatcher) runRef(summary *Summary, repo *gitx.Repository, main *registry.Workspace, ref string, opts CheckoutOptions, context map[string]string) error {
	if err := gitx.Checkout(main.Root, ref); err != nil {
		return err
	}

	if opts.SourceRef != "" && opts.SourceRef != ref {
		untracked, err := gitx.HasUntracked(main.Root)
		if err != nil {
			return err
		}
		if untracked {
			return fmt.Errorf(
				"sourcing benchmarks from ref %q requires a clean worktree, but %s has untracked files",
				opts.SourceRef, main.Root,
			)
		}

		if err := gitx.CheckoutPaths(main.Root, opts.SourceRef, opts.Target); err != nil {
			return err
		}

		// the sourced files are restored even when the dispatch fails
		defer func() {
			if err := gitx.CheckoutPaths(main.Root, ref, opts.Target); err != nil {
				log.Error("failed to restore benchmark files", "ref", ref, "err", err)
			}
			if err := gitx.Clean(main.Root); err != nil {
				log.Error("failed to clean worktree after sourced run", "root", main.Root, "err", err)
			}
		}()
	}

	d.runWorkspace(summary, main, ref, opts.RunOptions, context)
	return nil
}
