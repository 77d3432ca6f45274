// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Benchmark dispatch across workspaces

package dispatch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/sony-level/pybench/internal/registry"
	"github.com/sony-level/pybench/internal/results"
)

// RunOptions controls one dispatch across one or more workspaces
type RunOptions struct {
	// Target is a file, directory, or glob relative to each workspace root
	Target string
	// Repetitions per benchmark, at least 1
	Repetitions int
	// Filter restricts benchmarks within target files by name regex
	Filter string
	// Context holds raw global key=value pairs, keys unique
	Context []string
	// AsModule runs targets with -m and dotted module names
	AsModule bool
}

// ExecutionError is one failed (workspace, file) dispatch. Failures are
// collected and reported once the whole run completes.
type ExecutionError struct {
	Workspace string
	File      string
	ExitCode  int
	Stderr    string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf(
		"benchmark %s failed in workspace %q with exit code %d",
		e.File, e.Workspace, e.ExitCode,
	)
	if e.Stderr != "" {
		msg += "\n" + strings.TrimSpace(e.Stderr)
	}
	return msg
}

// Summary aggregates the outcome of one run
type Summary struct {
	Run        int
	Dispatched int
	Failures   []*ExecutionError
}

// Failed reports whether any dispatch in the run failed
func (s *Summary) Failed() bool {
	return len(s.Failures) > 0
}

// Dispatcher runs a benchmark suite inside workspaces as isolated
// subprocesses, one child per (workspace, file) pair, sequentially.
type Dispatcher struct {
	store   *results.Store
	out     io.Writer
	verbose bool
}

// New creates a dispatcher writing results into store
func New(store *results.Store, out io.Writer, verbose bool) *Dispatcher {
	if out == nil {
		out = os.Stdout
	}
	return &Dispatcher{store: store, out: out, verbose: verbose}
}

// Run executes the suite in each workspace's own checkout and environment,
// in the given order. Execution errors do not abort sibling dispatches.
func (d *Dispatcher) Run(workspaces []*registry.Workspace, opts RunOptions) (*Summary, error) {
	context, err := opts.validate()
	if err != nil {
		return nil, err
	}

	run, err := d.store.NewRun()
	if err != nil {
		return nil, err
	}

	summary := &Summary{Run: run}

	for _, ws := range workspaces {
		if ws.Python == nil || ws.Python.Executable == "" {
			summary.Failures = append(summary.Failures, &ExecutionError{
				Workspace: ws.Name,
				Stderr:    "workspace has no Python environment attached",
				ExitCode:  -1,
			})
			continue
		}

		d.runWorkspace(summary, ws, ws.Ref, opts, context)
	}

	return summary, nil
}

// runWorkspace dispatches all matching files of one workspace, labelling
// results with the given ref.
func (d *Dispatcher) runWorkspace(summary *Summary, ws *registry.Workspace, ref string, opts RunOptions, context map[string]string) {
	files, err := Discover(ws.Root, opts.Target)
	if err != nil {
		summary.Failures = append(summary.Failures, &ExecutionError{
			Workspace: ws.Name,
			ExitCode:  -1,
			Stderr:    err.Error(),
		})
		return
	}

	if len(files) == 0 {
		log.Warn("benchmark selector matched no files", "workspace", ws.Name, "target", opts.Target)
		return
	}

	for i, file := range files {
		fmt.Fprintf(d.out, "Running benchmark %s in workspace %q [%d/%d]\n", file, ws.Name, i+1, len(files))

		resultPath, err := d.store.ResultPath(summary.Run, ref, file)
		if err != nil {
			summary.Failures = append(summary.Failures, &ExecutionError{
				Workspace: ws.Name,
				File:      file,
				ExitCode:  -1,
				Stderr:    err.Error(),
			})
			continue
		}

		argv := buildArgv(file, opts.AsModule, resultPath, ref, opts, context)

		if execErr := d.spawn(ws, argv); execErr != nil {
			execErr.File = file
			summary.Failures = append(summary.Failures, execErr)
			continue
		}

		summary.Dispatched++
	}
}

// spawn runs the workspace's interpreter with the given argument vector,
// capturing output. A nonzero exit surfaces as *ExecutionError carrying
// the child's stderr.
func (d *Dispatcher) spawn(ws *registry.Workspace, argv []string) *ExecutionError {
	cmd := exec.Command(ws.Python.Executable, argv...)
	cmd.Dir = ws.Root

	if len(ws.Python.Locations) > 0 {
		pythonPath := strings.Join(ws.Python.Locations, string(os.PathListSeparator))
		cmd.Env = append(os.Environ(), "PYTHONPATH="+pythonPath)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ExecutionError{Workspace: ws.Name, ExitCode: -1, Stderr: err.Error()}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &ExecutionError{Workspace: ws.Name, ExitCode: -1, Stderr: err.Error()}
	}

	if err := cmd.Start(); err != nil {
		return &ExecutionError{Workspace: ws.Name, ExitCode: -1, Stderr: err.Error()}
	}

	var stdoutBuf, stderrBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		d.drain(stdout, &stdoutBuf)
	}()
	go func() {
		defer wg.Done()
		d.drain(stderr, &stderrBuf)
	}()

	wg.Wait()
	err = cmd.Wait()

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &ExecutionError{
			Workspace: ws.Name,
			ExitCode:  exitCode,
			Stderr:    stderrBuf.String(),
		}
	}

	return nil
}

// drain reads a child pipe into a buffer, echoing lines when verbose
func (d *Dispatcher) drain(pipe io.ReadCloser, buf *strings.Builder) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteString("\n")

		if d.verbose {
			fmt.Fprintln(d.out, line)
		}
	}
}
