// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Reporting and comparison tests

package report_test

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sony-level/pybench/internal/report"
	"github.com/sony-level/pybench/internal/results"
)

func TestRescale(t *testing.T) {
	tests := []struct {
		value    float64
		from, to string
		want     float64
	}{
		{1, "s", "usec", 1e6},
		{1, "sec", "ms", 1e3},
		{1500, "usec", "msec", 1.5},
		{2, "ms", "ns", 2e6},
		{42, "usec", "usec", 42},
	}

	for _, tt := range tests {
		got, err := report.Rescale(tt.value, tt.from, tt.to)
		if err != nil {
			t.Errorf("Rescale(%v, %q, %q) error = %v", tt.value, tt.from, tt.to, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Rescale(%v, %q, %q) = %v, want %v", tt.value, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRescale_UnknownUnit(t *testing.T) {
	if _, err := report.Rescale(1, "fortnight", "usec"); err == nil {
		t.Error("Rescale() should reject unknown source units")
	}
	if _, err := report.Rescale(1, "usec", "parsec"); err == nil {
		t.Error("Rescale() should reject unknown target units")
	}
}

func TestDeltaAndSpeedup(t *testing.T) {
	tests := []struct {
		anchor, compare float64
		wantDelta       float64
		wantSpeedup     float64
	}{
		{1000, 500, -0.5, 2.0},  // compare twice as fast
		{1000, 2000, 1.0, 0.5},  // compare twice as slow
		{1000, 1000, 0.0, 1.0},  // anchor against itself
	}

	for _, tt := range tests {
		if got := report.Delta(tt.anchor, tt.compare); math.Abs(got-tt.wantDelta) > 1e-9 {
			t.Errorf("Delta(%v, %v) = %v, want %v", tt.anchor, tt.compare, got, tt.wantDelta)
		}
		if got := report.Speedup(tt.anchor, tt.compare); math.Abs(got-tt.wantSpeedup) > 1e-9 {
			t.Errorf("Speedup(%v, %v) = %v, want %v", tt.anchor, tt.compare, got, tt.wantSpeedup)
		}
	}
}

// seedRun writes one result file per ref into a fresh store and returns it
func seedRun(t *testing.T, refResults map[string]string) (*results.Store, int) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "report-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store := results.NewStore(filepath.Join(tmpDir, "results"))
	run, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}

	for ref, blob := range refResults {
		path, err := store.ResultPath(run, ref, "bench/sort.py")
		if err != nil {
			t.Fatalf("ResultPath() error = %v", err)
		}
		if err := os.WriteFile(path, []byte(blob), 0644); err != nil {
			t.Fatalf("Failed to write result file: %v", err)
		}
	}

	return store, run
}

func resultBlob(benchmarks ...string) string {
	return fmt.Sprintf(`{"context": {"python": "3.12"}, "benchmarks": [%s]}`,
		strings.Join(benchmarks, ","))
}

func benchmark(name string, wall float64) string {
	return fmt.Sprintf(
		`{"name": %q, "wall_time": %v, "cpu_time": %v, "time_unit": "usec", "iterations": 10}`,
		name, wall, wall*0.9,
	)
}

func TestReport(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main": resultBlob(benchmark("bench_sort", 1000), benchmark("bench_merge", 450)),
	})

	reporter := report.New(store, "usec", 2)

	rendered, err := reporter.Report(run, "main", report.Filters{})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	for _, want := range []string{"sort.py::bench_sort", "sort.py::bench_merge", "1000.00", "450.00", "Wall Time (usec)"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Report() output missing %q:\n%s", want, rendered)
		}
	}
}

func TestReport_BenchmarkFilter(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main": resultBlob(benchmark("bench_sort", 1000), benchmark("bench_merge", 450)),
	})

	reporter := report.New(store, "usec", 2)

	rendered, err := reporter.Report(run, "main", report.Filters{Benchmark: "sort"})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if !strings.Contains(rendered, "bench_sort") {
		t.Errorf("Report() should keep the matching benchmark:\n%s", rendered)
	}
	if strings.Contains(rendered, "bench_merge") {
		t.Errorf("Report() should drop the non-matching benchmark:\n%s", rendered)
	}
}

func TestReport_ContextColumns(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main": resultBlob(benchmark("bench_sort", 1000)),
	})

	reporter := report.New(store, "usec", 2)

	rendered, err := reporter.Report(run, "main", report.Filters{Context: "python"})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if !strings.Contains(rendered, "3.12") {
		t.Errorf("Report() should include the matched context value:\n%s", rendered)
	}
}

func TestCompare(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main":    resultBlob(benchmark("bench_sort", 1000)),
		"feature": resultBlob(benchmark("bench_sort", 500)),
	})

	reporter := report.New(store, "usec", 2)

	rendered, err := reporter.Compare(run, "main", []string{"feature"}, report.Filters{}, false)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	for _, want := range []string{
		"Δ Wall Time (main)",
		"Speedup",
		"+0.00%", // the anchor against itself
		"1.00x",
		"-50.00%", // feature halves the wall time
		"2.00x",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Compare() output missing %q:\n%s", want, rendered)
		}
	}
}

func TestCompare_AnchorDriven(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main": resultBlob(benchmark("bench_sort", 1000)),
		"feature": resultBlob(
			benchmark("bench_sort", 800),
			benchmark("bench_new_only", 100),
		),
	})

	reporter := report.New(store, "usec", 2)

	rendered, err := reporter.Compare(run, "main", []string{"feature"}, report.Filters{}, false)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	// benchmarks absent from the anchor never show up
	if strings.Contains(rendered, "bench_new_only") {
		t.Errorf("Compare() should omit compare-only benchmarks:\n%s", rendered)
	}
	if !strings.Contains(rendered, "bench_sort") {
		t.Errorf("Compare() should keep anchored benchmarks:\n%s", rendered)
	}
}

func TestCompare_Absolute(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main":    resultBlob(benchmark("bench_sort", 1000)),
		"feature": resultBlob(benchmark("bench_sort", 500)),
	})

	reporter := report.New(store, "usec", 2)

	rendered, err := reporter.Compare(run, "main", []string{"feature"}, report.Filters{}, true)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if strings.Contains(rendered, "Speedup") {
		t.Errorf("Compare() with absolute should not render relative columns:\n%s", rendered)
	}
	for _, want := range []string{"1000.00", "500.00"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Compare() output missing %q:\n%s", want, rendered)
		}
	}
}

func TestCompare_ZeroAnchor(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main":    resultBlob(benchmark("bench_noop", 0)),
		"feature": resultBlob(benchmark("bench_noop", 500)),
	})

	reporter := report.New(store, "usec", 2)

	rendered, err := reporter.Compare(run, "main", []string{"feature"}, report.Filters{}, false)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if !strings.Contains(rendered, "n/a") {
		t.Errorf("Compare() should render n/a for a zero anchor wall time:\n%s", rendered)
	}
	for _, forbidden := range []string{"NaN", "Inf"} {
		if strings.Contains(rendered, forbidden) {
			t.Errorf("Compare() output contains %q:\n%s", forbidden, rendered)
		}
	}
}

func TestCompare_UnitRescaling(t *testing.T) {
	store, run := seedRun(t, map[string]string{
		"main": resultBlob(benchmark("bench_sort", 1500)),
	})

	reporter := report.New(store, "msec", 2)

	rendered, err := reporter.Report(run, "main", report.Filters{})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if !strings.Contains(rendered, "1.50") {
		t.Errorf("Report() should rescale usec to msec:\n%s", rendered)
	}
}
