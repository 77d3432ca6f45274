// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Environment provider contract

package env

import (
	"fmt"
	"strings"
)

// InstallRequest names the packages an Install call should add.
// Exactly one of Packages and RequirementsFile must be set.
type InstallRequest struct {
	Packages         []string
	RequirementsFile string
	Options          []string
}

// Provider is the capability contract the core needs from a Python
// environment management tool. The default implementation is VenvProvider;
// alternate backends are injected by configuration.
type Provider interface {
	// Create materializes a fresh environment at destination using the
	// given base interpreter.
	Create(executable, destination string, options []string) (*PythonSpec, error)

	// Delete removes an environment directory
	Delete(envRoot string) error

	// Install adds packages to the environment and mutates spec.Packages
	Install(spec *PythonSpec, req InstallRequest) error

	// Uninstall removes packages from the environment and mutates spec.Packages
	Uninstall(spec *PythonSpec, packages []string, options []string) error

	// List returns the installed package specifiers for an interpreter
	List(executable string) ([]string, error)
}

// ProviderError wraps a failed provider operation
type ProviderError struct {
	Op     string
	Target string
	Stderr string
	Err    error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s failed for %s", e.Op, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }
