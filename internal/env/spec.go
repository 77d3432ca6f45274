// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Python environment specification

package env

import (
	"fmt"
	"os"
	"path/filepath"
)

// PythonSpec describes one Python execution environment
type PythonSpec struct {
	// Root is the environment directory, empty for bare interpreters
	Root string `yaml:"root"`
	// Executable is the interpreter binary path
	Executable string `yaml:"executable"`
	// Version is the interpreter version string, e.g. "3.12.1"
	Version string `yaml:"version"`
	// Packages holds installed package specifiers as name==version
	Packages []string `yaml:"packages"`
	// Locations are additional import search paths for linked environments
	Locations []string `yaml:"locations,omitempty"`
	// Linked marks externally owned environments that are never deleted
	Linked bool `yaml:"linked"`
}

// UpdatePackages replaces the installed package list in place
func (s *PythonSpec) UpdatePackages(packages []string) {
	s.Packages = append(s.Packages[:0], packages...)
}

// InvalidEnvironmentError signals that a path offered for linking is not
// a recognizable Python environment.
type InvalidEnvironmentError struct {
	Path   string
	Reason string
}

func (e *InvalidEnvironmentError) Error() string {
	return fmt.Sprintf("%s is not a valid Python environment: %s", e.Path, e.Reason)
}

// ValidateEnvironment checks that dir holds a virtual environment, i.e. a
// pyvenv.cfg marker and an interpreter binary under bin/.
func ValidateEnvironment(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return &InvalidEnvironmentError{Path: dir, Reason: "not a directory"}
	}

	if _, err := os.Stat(filepath.Join(dir, "pyvenv.cfg")); err != nil {
		return &InvalidEnvironmentError{Path: dir, Reason: "missing pyvenv.cfg"}
	}

	if _, err := os.Stat(Interpreter(dir)); err != nil {
		return &InvalidEnvironmentError{Path: dir, Reason: "missing python executable under bin/"}
	}

	return nil
}

// Interpreter returns the interpreter path inside an environment directory
func Interpreter(dir string) string {
	return filepath.Join(dir, "bin", "python")
}

// EnvRoot derives the environment directory from an interpreter path.
// Returns the empty string for interpreters outside an environment layout.
func EnvRoot(executable string) string {
	bin := filepath.Dir(executable)
	if filepath.Base(bin) != "bin" {
		return ""
	}
	return filepath.Dir(bin)
}
