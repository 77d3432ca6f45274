// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Result store tests

package results_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sony-level/pybench/internal/results"
)

func newStore(t *testing.T) *results.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "results-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	return results.NewStore(filepath.Join(tmpDir, "results"))
}

func TestNewRun_Numbering(t *testing.T) {
	store := newStore(t)

	first, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	if first != 1 {
		t.Errorf("NewRun() = %d, want 1", first)
	}

	second, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	if second != 2 {
		t.Errorf("NewRun() = %d, want 2", second)
	}

	// numbering continues after the highest existing run
	if err := os.Mkdir(filepath.Join(store.Dir(), "7"), 0755); err != nil {
		t.Fatalf("Failed to create run dir: %v", err)
	}

	next, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	if next != 8 {
		t.Errorf("NewRun() = %d, want 8", next)
	}
}

func TestResolveRun(t *testing.T) {
	store := newStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.NewRun(); err != nil {
			t.Fatalf("NewRun() error = %v", err)
		}
	}

	tests := []struct {
		identifier string
		want       int
	}{
		{"latest", 3},
		{"latest^{1}", 2},
		{"latest^{2}", 1},
		{"2", 2},
	}

	for _, tt := range tests {
		got, err := store.ResolveRun(tt.identifier)
		if err != nil {
			t.Errorf("ResolveRun(%q) error = %v", tt.identifier, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveRun(%q) = %d, want %d", tt.identifier, got, tt.want)
		}
	}
}

func TestResolveRun_NotFound(t *testing.T) {
	store := newStore(t)

	if _, err := store.NewRun(); err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}

	for _, identifier := range []string{"latest^{1}", "5", "abc"} {
		_, err := store.ResolveRun(identifier)

		var notFoundErr *results.RunNotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Errorf("ResolveRun(%q) error = %T, want *RunNotFoundError", identifier, err)
		}
	}
}

func TestResultPath(t *testing.T) {
	store := newStore(t)

	run, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}

	path, err := store.ResultPath(run, "feature/x", "bench/sort.py")
	if err != nil {
		t.Fatalf("ResultPath() error = %v", err)
	}

	// ref slashes become directory-safe dashes
	want := filepath.Join(store.Dir(), "1", "feature-x", "sort_results.json")
	if path != want {
		t.Errorf("ResultPath() = %v, want %v", path, want)
	}

	info, err := os.Stat(filepath.Dir(path))
	if err != nil || !info.IsDir() {
		t.Errorf("ResultPath() should create the ref directory: %v", err)
	}
}

func TestLoad_MergesContext(t *testing.T) {
	store := newStore(t)

	run, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}

	path, err := store.ResultPath(run, "main", "bench/sort.py")
	if err != nil {
		t.Fatalf("ResultPath() error = %v", err)
	}

	blob := `{
  "context": {"python": "3.12", "machine": "ci"},
  "benchmarks": [
    {"name": "bench_sort", "wall_time": 1200.5, "cpu_time": 1100.0, "time_unit": "usec", "iterations": 10},
    {"name": "bench_merge", "wall_time": 900.0, "cpu_time": 850.0, "time_unit": "usec", "iterations": 10,
     "context": {"machine": "laptop"}}
  ]
}`
	if err := os.WriteFile(path, []byte(blob), 0644); err != nil {
		t.Fatalf("Failed to write result file: %v", err)
	}

	loaded, err := store.Load(run, "main")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load() returned %d results, want 2", len(loaded))
	}

	if loaded[0].Target() != "sort.py::bench_sort" {
		t.Errorf("Target() = %v, want sort.py::bench_sort", loaded[0].Target())
	}
	if loaded[0].Ref != "main" {
		t.Errorf("Ref = %v, want main", loaded[0].Ref)
	}

	wantGlobal := map[string]string{"python": "3.12", "machine": "ci"}
	if diff := cmp.Diff(wantGlobal, loaded[0].Context); diff != "" {
		t.Errorf("global context mismatch (-want +got):\n%s", diff)
	}

	// the per-benchmark value wins over the global one
	wantLocal := map[string]string{"python": "3.12", "machine": "laptop"}
	if diff := cmp.Diff(wantLocal, loaded[1].Context); diff != "" {
		t.Errorf("local context mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingRef(t *testing.T) {
	store := newStore(t)

	run, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}

	_, err = store.Load(run, "ghost")

	var refErr *results.RefNotInRunError
	if !errors.As(err, &refErr) {
		t.Fatalf("Load() error = %T, want *RefNotInRunError", err)
	}
	if refErr.Ref != "ghost" {
		t.Errorf("RefNotInRunError.Ref = %v, want ghost", refErr.Ref)
	}
}

func TestRefs(t *testing.T) {
	store := newStore(t)

	run, err := store.NewRun()
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}

	for _, ref := range []string{"main", "feature/x"} {
		if _, err := store.ResultPath(run, ref, "bench/a.py"); err != nil {
			t.Fatalf("ResultPath() error = %v", err)
		}
	}

	refs, err := store.Refs(run)
	if err != nil {
		t.Fatalf("Refs() error = %v", err)
	}

	want := []string{"feature-x", "main"}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("Refs() mismatch (-want +got):\n%s", diff)
	}
}
