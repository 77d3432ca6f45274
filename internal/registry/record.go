// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace records and registry errors

package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony-level/pybench/internal/env"
	"github.com/sony-level/pybench/internal/gitx"
)

// MainName is the reserved name of the workspace bound to the
// repository's primary checkout. It can never be deleted.
const MainName = "main"

// Workspace pairs a git checkout with a Python execution environment
type Workspace struct {
	Name         string          `yaml:"name"`
	Ref          string          `yaml:"ref"`
	RefType      gitx.RefType    `yaml:"ref_type"`
	Commit       string          `yaml:"commit"`
	Root         string          `yaml:"root"`
	Python       *env.PythonSpec `yaml:"python"`
	Created      time.Time       `yaml:"created"`
	LastModified time.Time       `yaml:"last_modified"`
}

// IsMain reports whether this is the protected primary workspace
func (w *Workspace) IsMain() bool {
	return w.Name == MainName
}

// ErrProtectedWorkspace is returned for any attempt to delete the
// main workspace.
var ErrProtectedWorkspace = errors.New("the main workspace cannot be removed")

// DuplicateWorkspaceError signals a second workspace for an already
// checked out ref without the force option.
type DuplicateWorkspaceError struct {
	Ref  string
	Name string // name of the existing workspace
}

func (e *DuplicateWorkspaceError) Error() string {
	return fmt.Sprintf(
		"workspace %q already tracks ref %q; pass --force to check out the same ref twice",
		e.Name, e.Ref,
	)
}

// AmbiguousIdentifierError signals an identifier matching more than
// one workspace.
type AmbiguousIdentifierError struct {
	Identifier string
	Names      []string
}

func (e *AmbiguousIdentifierError) Error() string {
	return fmt.Sprintf("identifier %q matches multiple workspaces: %v", e.Identifier, e.Names)
}

// NotFoundError signals an identifier matching no workspace
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no workspace matches identifier %q", e.Identifier)
}
