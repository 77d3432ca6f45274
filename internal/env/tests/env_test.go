// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Environment validation and pip output parsing tests

package env_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sony-level/pybench/internal/env"
)

// makeVenv lays out the minimal directory shape of a virtual environment
func makeVenv(t *testing.T, dir string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Join(dir, "bin"), 0755); err != nil {
		t.Fatalf("Failed to create bin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0644); err != nil {
		t.Fatalf("Failed to write pyvenv.cfg: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bin", "python"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("Failed to write interpreter stub: %v", err)
	}
}

func TestValidateEnvironment(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "env-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	venv := filepath.Join(tmpDir, "venv")
	makeVenv(t, venv)

	if err := env.ValidateEnvironment(venv); err != nil {
		t.Errorf("ValidateEnvironment() error = %v, want nil", err)
	}
}

func TestValidateEnvironment_Invalid(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "env-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name  string
		setup func(dir string)
	}{
		{
			name:  "missing directory",
			setup: func(dir string) {},
		},
		{
			name: "missing pyvenv.cfg",
			setup: func(dir string) {
				os.MkdirAll(filepath.Join(dir, "bin"), 0755)
				os.WriteFile(filepath.Join(dir, "bin", "python"), []byte{}, 0755)
			},
		},
		{
			name: "missing interpreter",
			setup: func(dir string) {
				os.MkdirAll(dir, 0755)
				os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte{}, 0644)
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(tmpDir, "case", string(rune('a'+i)))
			tt.setup(dir)

			err := env.ValidateEnvironment(dir)
			if err == nil {
				t.Fatal("ValidateEnvironment() should fail")
			}

			var invalidErr *env.InvalidEnvironmentError
			if !errors.As(err, &invalidErr) {
				t.Errorf("error should be *InvalidEnvironmentError, got %T", err)
			}
		})
	}
}

func TestParsePipList(t *testing.T) {
	out := `Package    Version
---------- -------
numpy      1.26.4
pip        24.0
setuptools 69.5.1
`

	got := env.ParsePipList(out)
	want := []string{"numpy==1.26.4", "pip==24.0", "setuptools==69.5.1"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParsePipList() mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePipList_Empty(t *testing.T) {
	if got := env.ParsePipList(""); got != nil {
		t.Errorf("ParsePipList(\"\") = %v, want nil", got)
	}

	headerOnly := "Package Version\n------- -------\n"
	if got := env.ParsePipList(headerOnly); got != nil {
		t.Errorf("ParsePipList(header only) = %v, want nil", got)
	}
}

func TestEnvRoot(t *testing.T) {
	tests := []struct {
		executable string
		want       string
	}{
		{"/home/user/repo/venv/bin/python", "/home/user/repo/venv"},
		{"/usr/local/python", ""},
	}

	for _, tt := range tests {
		if got := env.EnvRoot(tt.executable); got != tt.want {
			t.Errorf("EnvRoot(%q) = %v, want %v", tt.executable, got, tt.want)
		}
	}
}

func TestInterpreterRoundTrip(t *testing.T) {
	root := "/home/user/repo/venv"
	if got := env.EnvRoot(env.Interpreter(root)); got != root {
		t.Errorf("EnvRoot(Interpreter(%q)) = %v, want %v", root, got, root)
	}
}

func TestUpdatePackages(t *testing.T) {
	spec := &env.PythonSpec{Packages: []string{"old==1.0"}}

	spec.UpdatePackages([]string{"new==2.0", "other==3.0"})

	want := []string{"new==2.0", "other==3.0"}
	if diff := cmp.Diff(want, spec.Packages); diff != "" {
		t.Errorf("Packages mismatch (-want +got):\n%s", diff)
	}
}
