// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Result reporting and cross-ref comparison

package report

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sony-level/pybench/internal/results"
)

// Filters restricts which results enter a report. All three are optional
// regular expressions, combined with logical AND.
type Filters struct {
	// Target matches the originating benchmark file path
	Target string
	// Benchmark matches the benchmark function name
	Benchmark string
	// Context matches context keys to include as extra columns
	Context string
}

type compiledFilters struct {
	target    *regexp.Regexp
	benchmark *regexp.Regexp
	context   *regexp.Regexp
}

func (f Filters) compile() (*compiledFilters, error) {
	compiled := &compiledFilters{}

	var err error
	if f.Target != "" {
		if compiled.target, err = regexp.Compile(f.Target); err != nil {
			return nil, fmt.Errorf("invalid target filter %q: %w", f.Target, err)
		}
	}
	if f.Benchmark != "" {
		if compiled.benchmark, err = regexp.Compile(f.Benchmark); err != nil {
			return nil, fmt.Errorf("invalid benchmark filter %q: %w", f.Benchmark, err)
		}
	}
	if f.Context != "" {
		if compiled.context, err = regexp.Compile(f.Context); err != nil {
			return nil, fmt.Errorf("invalid context filter %q: %w", f.Context, err)
		}
	}

	return compiled, nil
}

// keep applies the target and benchmark filters to one result
func (c *compiledFilters) keep(r *results.Result) bool {
	if c.target != nil && !c.target.MatchString(r.File) {
		return false
	}
	if c.benchmark != nil && !c.benchmark.MatchString(r.Name) {
		return false
	}
	return true
}

// Reporter renders benchmark results and cross-ref comparisons as tables.
// Time unit and digit count come in as explicit configuration.
type Reporter struct {
	store  *results.Store
	unit   string
	digits int
}

// New creates a reporter over the given result store
func New(store *results.Store, timeUnit string, significantDigits int) *Reporter {
	return &Reporter{store: store, unit: timeUnit, digits: significantDigits}
}

// Report renders one ref's results of one run, filtered
func (r *Reporter) Report(run int, ref string, filters Filters) (string, error) {
	compiled, err := filters.compile()
	if err != nil {
		return "", err
	}

	loaded, err := r.store.Load(run, ref)
	if err != nil {
		return "", err
	}

	kept := make([]results.Result, 0, len(loaded))
	for _, res := range loaded {
		if compiled.keep(&res) {
			kept = append(kept, res)
		}
	}

	contextKeys := collectContextKeys(kept, compiled.context)

	headers := []string{
		"Benchmark",
		"Reference",
		"Wall Time (" + r.unit + ")",
		"CPU Time (" + r.unit + ")",
		"Iterations",
	}
	headers = append(headers, contextKeys...)

	tbl := newTable(headers)

	for _, res := range kept {
		wall, cpu, err := r.rescaled(&res)
		if err != nil {
			return "", err
		}

		row := []string{
			res.Target(),
			ref,
			formatTime(wall, r.unit, r.digits),
			formatTime(cpu, r.unit, r.digits),
			fmt.Sprint(res.Iterations),
		}
		for _, key := range contextKeys {
			row = append(row, res.Context[key])
		}

		tbl.Row(row...)
	}

	return tbl.Render(), nil
}

// Compare renders relative performance of one or more refs against an
// anchor ref. The comparison is anchor-driven: targets absent from the
// anchor's results are omitted.
func (r *Reporter) Compare(run int, anchorRef string, compareRefs []string, filters Filters, absolute bool) (string, error) {
	compiled, err := filters.compile()
	if err != nil {
		return "", err
	}

	anchor, err := r.loadFiltered(run, anchorRef, compiled)
	if err != nil {
		return "", err
	}

	perRef := make(map[string]map[string]*results.Result, len(compareRefs))
	for _, ref := range compareRefs {
		loaded, err := r.loadFiltered(run, ref, compiled)
		if err != nil {
			return "", err
		}

		byTarget := make(map[string]*results.Result, len(loaded))
		for i := range loaded {
			byTarget[loaded[i].Target()] = &loaded[i]
		}
		perRef[ref] = byTarget
	}

	headers := []string{
		"Benchmark",
		"Reference",
		"Wall Time (" + r.unit + ")",
		"CPU Time (" + r.unit + ")",
		"Iterations",
	}
	if !absolute {
		headers = append(headers,
			fmt.Sprintf("Δ Wall Time (%s)", anchorRef),
			"Speedup",
		)
	}

	tbl := newTable(headers)

	for i := range anchor {
		anchorRes := &anchor[i]
		anchorWall, anchorCPU, err := r.rescaled(anchorRes)
		if err != nil {
			return "", err
		}

		r.compareRow(tbl, anchorRes.Target(), anchorRef, anchorWall, anchorCPU, anchorRes.Iterations, anchorWall, absolute)

		for _, ref := range compareRefs {
			res, ok := perRef[ref][anchorRes.Target()]
			if !ok {
				continue
			}

			wall, cpu, err := r.rescaled(res)
			if err != nil {
				return "", err
			}

			r.compareRow(tbl, anchorRes.Target(), ref, wall, cpu, res.Iterations, anchorWall, absolute)
		}
	}

	return tbl.Render(), nil
}

// compareRow appends one (target, ref) row, with delta and speedup
// relative to the anchor wall time unless absolute reporting is on.
// A zero anchor has no meaningful relative columns and renders n/a.
func (r *Reporter) compareRow(tbl *table.Table, target, ref string, wall, cpu float64, iterations int, anchorWall float64, absolute bool) {
	row := []string{
		target,
		ref,
		formatTime(wall, r.unit, r.digits),
		formatTime(cpu, r.unit, r.digits),
		fmt.Sprint(iterations),
	}

	if !absolute {
		if anchorWall == 0 {
			row = append(row, "n/a", "n/a")
		} else {
			row = append(row,
				formatDelta(Delta(anchorWall, wall), r.digits),
				formatSpeedup(Speedup(anchorWall, wall), r.digits),
			)
		}
	}

	tbl.Row(row...)
}

// Delta computes the signed relative wall time difference of a compare
// value against an anchor value.
func Delta(anchorWall, compareWall float64) float64 {
	return (compareWall - anchorWall) / anchorWall
}

// Speedup computes the speedup factor of a compare value against an
// anchor value.
func Speedup(anchorWall, compareWall float64) float64 {
	return anchorWall / compareWall
}

func (r *Reporter) loadFiltered(run int, ref string, compiled *compiledFilters) ([]results.Result, error) {
	loaded, err := r.store.Load(run, ref)
	if err != nil {
		return nil, err
	}

	kept := make([]results.Result, 0, len(loaded))
	for _, res := range loaded {
		if compiled.keep(&res) {
			kept = append(kept, res)
		}
	}

	return kept, nil
}

func (r *Reporter) rescaled(res *results.Result) (wall, cpu float64, err error) {
	wall, err = Rescale(res.WallTime, res.TimeUnit, r.unit)
	if err != nil {
		return 0, 0, err
	}
	cpu, err = Rescale(res.CPUTime, res.TimeUnit, r.unit)
	if err != nil {
		return 0, 0, err
	}
	return wall, cpu, nil
}

// collectContextKeys gathers the context keys matched by the context
// filter across all kept results, sorted for stable columns.
func collectContextKeys(kept []results.Result, filter *regexp.Regexp) []string {
	if filter == nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, res := range kept {
		for key := range res.Context {
			if filter.MatchString(key) {
				seen[key] = true
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

func newTable(headers []string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		BorderColumn(true).
		Headers(headers...)
}
