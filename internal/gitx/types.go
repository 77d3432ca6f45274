// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Git worktree types and errors

package gitx

import (
	"fmt"
	"strings"
)

// RefType classifies a git commit-ish
type RefType string

const (
	RefBranch RefType = "branch"
	RefTag    RefType = "tag"
	RefCommit RefType = "commit"
)

// Worktree describes one linked git worktree
type Worktree struct {
	Root   string
	Commit string
	Branch string // empty when detached
	Tag    string // tag pointing at Commit, if any
}

// RefAndType returns the most specific reference checked out in the worktree.
// Branch wins over tag, tag over raw commit.
func (w *Worktree) RefAndType() (string, RefType) {
	if w.Branch != "" {
		return w.Branch, RefBranch
	}
	if w.Tag != "" {
		return w.Tag, RefTag
	}
	return w.Commit, RefCommit
}

// Detached reports whether the worktree has a detached HEAD
func (w *Worktree) Detached() bool {
	return w.Branch == ""
}

// ResolveError signals that a ref could not be resolved to a unique git object
type ResolveError struct {
	Ref    string
	Reason string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve ref %q: %s", e.Ref, e.Reason)
}

// CommandError carries the outcome of a failed git invocation
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s exited with code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}
