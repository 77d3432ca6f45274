// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Flag vector and validation tests

package dispatch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseContext(t *testing.T) {
	context, err := ParseContext([]string{"python=3.12", "machine=ci-runner", "note=a=b"})
	if err != nil {
		t.Fatalf("ParseContext() error = %v", err)
	}

	want := map[string]string{
		"python":  "3.12",
		"machine": "ci-runner",
		"note":    "a=b", // only the first separator splits
	}
	if diff := cmp.Diff(want, context); diff != "" {
		t.Errorf("ParseContext() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseContext_DuplicateKey(t *testing.T) {
	_, err := ParseContext([]string{"python=3.12", "python=3.11"})
	if err == nil {
		t.Fatal("ParseContext() should reject duplicate keys")
	}

	var dupErr *DuplicateContextKeyError
	if !errors.As(err, &dupErr) {
		t.Fatalf("error should be *DuplicateContextKeyError, got %T", err)
	}
	if dupErr.Key != "python" {
		t.Errorf("DuplicateContextKeyError.Key = %v, want python", dupErr.Key)
	}
}

func TestParseContext_Malformed(t *testing.T) {
	for _, pair := range []string{"novalue", "=leadingsep"} {
		_, err := ParseContext([]string{pair})

		var argErr *InvalidArgumentError
		if !errors.As(err, &argErr) {
			t.Errorf("ParseContext(%q) error = %T, want *InvalidArgumentError", pair, err)
		}
	}
}

func TestRunOptionsValidate(t *testing.T) {
	opts := RunOptions{Repetitions: 5, Filter: "^bench_", Context: []string{"k=v"}}

	context, err := opts.validate()
	if err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	if context["k"] != "v" {
		t.Errorf("validate() context = %v", context)
	}
}

func TestRunOptionsValidate_BadRepetitions(t *testing.T) {
	opts := RunOptions{Repetitions: 0}

	_, err := opts.validate()
	var argErr *InvalidArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("error should be *InvalidArgumentError, got %T", err)
	}
	if argErr.Option != "repetitions" {
		t.Errorf("InvalidArgumentError.Option = %v, want repetitions", argErr.Option)
	}
}

func TestRunOptionsValidate_BadFilter(t *testing.T) {
	opts := RunOptions{Repetitions: 1, Filter: "bench_["}

	_, err := opts.validate()
	var filterErr *InvalidFilterError
	if !errors.As(err, &filterErr) {
		t.Fatalf("error should be *InvalidFilterError, got %T", err)
	}
}

func TestBuildArgv(t *testing.T) {
	opts := RunOptions{Repetitions: 10, Filter: "^bench_sort"}
	context := map[string]string{"python": "3.12", "machine": "ci"}

	argv := buildArgv("bench/sort.py", false, "/results/1/main/sort_results.json", "main", opts, context)

	want := []string{
		"bench/sort.py",
		"--benchmark_repetitions=10",
		"--benchmark_filter=^bench_sort",
		"--benchmark_out=/results/1/main/sort_results.json",
		"--benchmark_context=ref=main",
		"--benchmark_context=machine=ci",
		"--benchmark_context=python=3.12",
	}
	if diff := cmp.Diff(want, argv); diff != "" {
		t.Errorf("buildArgv() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildArgv_ModuleMode(t *testing.T) {
	opts := RunOptions{Repetitions: 1}

	argv := buildArgv("bench/sub/nested.py", true, "/out.json", "main", opts, nil)

	want := []string{
		"-m", "bench.sub.nested",
		"--benchmark_repetitions=1",
		"--benchmark_out=/out.json",
		"--benchmark_context=ref=main",
	}
	if diff := cmp.Diff(want, argv); diff != "" {
		t.Errorf("buildArgv() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildArgv_UserRefWins(t *testing.T) {
	opts := RunOptions{Repetitions: 1}
	context := map[string]string{"ref": "custom-label"}

	argv := buildArgv("bench/a.py", false, "/out.json", "main", opts, context)

	want := []string{
		"bench/a.py",
		"--benchmark_repetitions=1",
		"--benchmark_out=/out.json",
		"--benchmark_context=ref=custom-label",
	}
	if diff := cmp.Diff(want, argv); diff != "" {
		t.Errorf("buildArgv() mismatch (-want +got):\n%s", diff)
	}
}

func TestModuleName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"bench.py", "bench"},
		{"bench/sort.py", "bench.sort"},
		{"bench/sub/nested.py", "bench.sub.nested"},
	}

	for _, tt := range tests {
		if got := ModuleName(tt.file); got != tt.want {
			t.Errorf("ModuleName(%q) = %v, want %v", tt.file, got, tt.want)
		}
	}
}
