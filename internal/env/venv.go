// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Virtual environment provider backed by venv and pip

package env

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// versionPattern extracts the numeric version from `python --version` output
var versionPattern = regexp.MustCompile(`[\d.]+`)

// VenvProvider manages environments through `python -m venv` and pip
type VenvProvider struct{}

// NewVenvProvider creates the default environment provider
func NewVenvProvider() *VenvProvider {
	return &VenvProvider{}
}

// Create builds a virtual environment named "venv" inside destination
func (p *VenvProvider) Create(executable, destination string, options []string) (*PythonSpec, error) {
	envRoot := filepath.Join(destination, "venv")

	args := append([]string{"-m", "venv"}, options...)
	args = append(args, envRoot)

	if _, stderr, err := runTool(executable, args...); err != nil {
		return nil, &ProviderError{Op: "create", Target: envRoot, Stderr: stderr, Err: err}
	}

	return p.describe(envRoot, false)
}

// Delete removes an environment directory
func (p *VenvProvider) Delete(envRoot string) error {
	if err := ValidateEnvironment(envRoot); err != nil {
		return &ProviderError{Op: "delete", Target: envRoot, Err: err}
	}
	if err := os.RemoveAll(envRoot); err != nil {
		return &ProviderError{Op: "delete", Target: envRoot, Err: err}
	}
	return nil
}

// Link describes an existing, externally owned environment without
// taking ownership of it.
func (p *VenvProvider) Link(envRoot string) (*PythonSpec, error) {
	if err := ValidateEnvironment(envRoot); err != nil {
		return nil, err
	}
	return p.describe(envRoot, true)
}

// Install adds packages or a requirements file to the environment
func (p *VenvProvider) Install(spec *PythonSpec, req InstallRequest) error {
	args := []string{"-m", "pip", "install"}

	switch {
	case len(req.Packages) > 0:
		args = append(args, req.Packages...)
	case req.RequirementsFile != "":
		args = append(args, "-r", req.RequirementsFile)
	default:
		return &ProviderError{
			Op:     "install",
			Target: spec.Executable,
			Err:    errors.New("no packages or requirements file given"),
		}
	}
	args = append(args, req.Options...)

	if _, stderr, err := runTool(spec.Executable, args...); err != nil {
		return &ProviderError{Op: "install", Target: spec.Executable, Stderr: stderr, Err: err}
	}

	return p.refresh(spec)
}

// Uninstall removes packages from the environment
func (p *VenvProvider) Uninstall(spec *PythonSpec, packages []string, options []string) error {
	args := append([]string{"-m", "pip", "uninstall", "-y"}, packages...)
	args = append(args, options...)

	if _, stderr, err := runTool(spec.Executable, args...); err != nil {
		return &ProviderError{Op: "uninstall", Target: spec.Executable, Stderr: stderr, Err: err}
	}

	return p.refresh(spec)
}

// List returns installed packages as name==version specifiers
func (p *VenvProvider) List(executable string) ([]string, error) {
	out, stderr, err := runTool(executable, "-m", "pip", "list")
	if err != nil {
		return nil, &ProviderError{Op: "list", Target: executable, Stderr: stderr, Err: err}
	}
	return ParsePipList(out), nil
}

// Version reports the interpreter version string
func (p *VenvProvider) Version(executable string) (string, error) {
	out, stderr, err := runTool(executable, "--version")
	if err != nil {
		return "", &ProviderError{Op: "version", Target: executable, Stderr: stderr, Err: err}
	}

	version := versionPattern.FindString(out)
	if version == "" {
		return "", &ProviderError{
			Op:     "version",
			Target: executable,
			Err:    fmt.Errorf("unparseable version output %q", strings.TrimSpace(out)),
		}
	}

	return version, nil
}

// describe assembles a PythonSpec for the environment at envRoot
func (p *VenvProvider) describe(envRoot string, linked bool) (*PythonSpec, error) {
	executable := Interpreter(envRoot)

	version, err := p.Version(executable)
	if err != nil {
		return nil, err
	}

	packages, err := p.List(executable)
	if err != nil {
		return nil, err
	}

	return &PythonSpec{
		Root:       envRoot,
		Executable: executable,
		Version:    version,
		Packages:   packages,
		Linked:     linked,
	}, nil
}

// refresh re-lists installed packages into the spec
func (p *VenvProvider) refresh(spec *PythonSpec) error {
	packages, err := p.List(spec.Executable)
	if err != nil {
		return err
	}
	spec.UpdatePackages(packages)
	return nil
}

// ParsePipList converts `pip list` table output into name==version specifiers.
// The first two lines are the table header and separator.
func ParsePipList(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 2 {
		return nil
	}

	specs := make([]string, 0, len(lines)-2)
	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		specs = append(specs, fields[0]+"=="+fields[1])
	}

	return specs
}

// runTool executes the interpreter with args and captures its output
func runTool(executable string, args ...string) (string, string, error) {
	cmd := exec.Command(executable, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
