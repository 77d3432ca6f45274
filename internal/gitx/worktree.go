// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Linked worktree management via the git binary

package gitx

import (
	"fmt"
	"strings"
)

// AddOptions controls worktree creation
type AddOptions struct {
	// Force permits checking out a ref that is already checked out elsewhere
	Force bool
	// NoCheckout creates the worktree without populating it
	NoCheckout bool
	// Detach pins the worktree to the current commit instead of the branch
	Detach bool
}

// AddWorktree creates a linked worktree for ref at dest.
// go-git does not implement linked worktrees, so this shells out.
func (r *Repository) AddWorktree(ref, dest string, opts AddOptions) (*Worktree, error) {
	args := []string{"worktree", "add"}
	if opts.Force {
		args = append(args, "--force")
	}
	if opts.NoCheckout {
		args = append(args, "--no-checkout")
	}
	if opts.Detach {
		args = append(args, "--detach")
	}
	args = append(args, dest, ref)

	if _, err := runGit(r.Root, args...); err != nil {
		return nil, fmt.Errorf("failed to add worktree for %q at %s: %w", ref, dest, err)
	}

	commit, err := r.ResolveCommit(ref)
	if err != nil {
		return nil, err
	}

	wt := &Worktree{Root: dest, Commit: commit}
	if !opts.Detach {
		if _, typ, rerr := r.Resolve(ref); rerr == nil && typ == RefBranch {
			wt.Branch = ref
		}
	}
	if tags, terr := r.CommitsToTags(); terr == nil {
		wt.Tag = tags[commit]
	}

	return wt, nil
}

// RemoveWorktree removes the linked worktree rooted at root.
// Force discards untracked and modified files.
func (r *Repository) RemoveWorktree(root string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, root)

	if _, err := runGit(r.Root, args...); err != nil {
		return fmt.Errorf("failed to remove worktree %s: %w", root, err)
	}

	return nil
}

// ListWorktrees returns all worktrees of the repository, the main worktree
// first, in the order git reports them.
func (r *Repository) ListWorktrees() ([]*Worktree, error) {
	out, err := runGit(r.Root, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}

	tags, err := r.CommitsToTags()
	if err != nil {
		return nil, err
	}

	worktrees, err := ParseWorktreeList(out)
	if err != nil {
		return nil, err
	}

	for _, wt := range worktrees {
		wt.Tag = tags[wt.Commit]
	}

	return worktrees, nil
}

// ParseWorktreeList parses `git worktree list --porcelain` output.
// Porcelain stanzas are separated by blank lines.
func ParseWorktreeList(out string) ([]*Worktree, error) {
	var worktrees []*Worktree

	for _, stanza := range strings.Split(strings.TrimSpace(out), "\n\n") {
		if strings.TrimSpace(stanza) == "" {
			continue
		}

		wt := &Worktree{}
		for _, line := range strings.Split(stanza, "\n") {
			key, value, _ := strings.Cut(strings.TrimSpace(line), " ")
			switch key {
			case "worktree":
				wt.Root = value
			case "HEAD":
				wt.Commit = value
			case "branch":
				// reported as a full ref, e.g. refs/heads/main
				parts := strings.SplitN(value, "/", 3)
				wt.Branch = parts[len(parts)-1]
			case "bare":
				return nil, fmt.Errorf("bare worktree %s is not usable for benchmarking", wt.Root)
			}
		}

		if wt.Root == "" || wt.Commit == "" {
			return nil, fmt.Errorf("malformed worktree stanza: %q", stanza)
		}

		worktrees = append(worktrees, wt)
	}

	return worktrees, nil
}

// Checkout switches the checkout of dir to ref
func Checkout(dir, ref string) error {
	if _, err := runGit(dir, "checkout", ref); err != nil {
		return fmt.Errorf("failed to check out %q in %s: %w", ref, dir, err)
	}
	return nil
}

// CheckoutPaths materializes path from ref into the checkout at dir,
// leaving the rest of the tree untouched.
func CheckoutPaths(dir, ref, path string) error {
	if _, err := runGit(dir, "checkout", ref, "--", path); err != nil {
		return fmt.Errorf("failed to check out %q from %q in %s: %w", path, ref, dir, err)
	}
	return nil
}

// Clean removes untracked files and directories from the checkout at dir
func Clean(dir string) error {
	if _, err := runGit(dir, "clean", "-fd"); err != nil {
		return fmt.Errorf("failed to clean worktree %s: %w", dir, err)
	}
	return nil
}

// HasUntracked reports whether the checkout at dir contains untracked files
func HasUntracked(dir string) (bool, error) {
	out, err := runGit(dir, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return false, fmt.Errorf("failed to list untracked files in %s: %w", dir, err)
	}
	return strings.TrimSpace(out) != "", nil
}
