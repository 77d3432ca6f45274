// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Ref resolution and disambiguation via go-git

package gitx

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository wraps a local git repository for ref resolution and
// worktree management.
type Repository struct {
	Root string
	repo *git.Repository
}

// Open locates the repository containing dir and returns a handle on it.
func Open(dir string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to access repository worktree: %w", err)
	}

	return &Repository{Root: wt.Filesystem.Root(), repo: repo}, nil
}

// IsRepository reports whether dir is inside a git repository
func IsRepository(dir string) bool {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Resolve disambiguates a commit-ish into its commit SHA and reference type.
// Branch and tag names take precedence over raw commit SHAs; a name that is
// both a branch and a tag is ambiguous and produces a *ResolveError.
func (r *Repository) Resolve(ref string) (string, RefType, error) {
	var matches []RefType

	branchRef, branchErr := r.repo.Reference(plumbing.NewBranchReferenceName(ref), true)
	if branchErr == nil {
		matches = append(matches, RefBranch)
	}
	_, tagErr := r.repo.Reference(plumbing.NewTagReferenceName(ref), true)
	if tagErr == nil {
		matches = append(matches, RefTag)
	}

	if len(matches) > 1 {
		return "", "", &ResolveError{Ref: ref, Reason: "name matches both a branch and a tag"}
	}

	if len(matches) == 1 {
		if matches[0] == RefBranch {
			return branchRef.Hash().String(), RefBranch, nil
		}
		commit, err := r.ResolveCommit(ref)
		if err != nil {
			return "", "", err
		}
		return commit, RefTag, nil
	}

	// neither branch nor tag, try as commit SHA (full or abbreviated)
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", "", &ResolveError{Ref: ref, Reason: "not a known branch, tag, or commit"}
	}

	return hash.String(), RefCommit, nil
}

// ResolveCommit resolves any commit-ish to the full SHA of the commit
// it points to, peeling annotated tags.
func (r *Repository) ResolveCommit(ref string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", &ResolveError{Ref: ref, Reason: "not a known branch, tag, or commit"}
	}

	if tag, tagErr := r.repo.TagObject(*hash); tagErr == nil {
		return tag.Target.String(), nil
	}

	return hash.String(), nil
}

// CommitsToTags maps commit SHAs to the tag names pointing at them
func (r *Repository) CommitsToTags() (map[string]string, error) {
	mapping := make(map[string]string)

	tags, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	err = tags.ForEach(func(ref *plumbing.Reference) error {
		commit := ref.Hash()
		if tag, tagErr := r.repo.TagObject(commit); tagErr == nil {
			commit = tag.Target
		}
		mapping[commit.String()] = ref.Name().Short()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}

	return mapping, nil
}

// Head returns the ref currently checked out in the main worktree
// together with its type. A detached HEAD pointing at a tagged commit
// reports the tag.
func (r *Repository) Head() (string, RefType, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	if head.Name() != plumbing.HEAD {
		return head.Name().Short(), RefBranch, nil
	}

	commit := head.Hash().String()

	tags, err := r.CommitsToTags()
	if err == nil {
		if tag, ok := tags[commit]; ok {
			return tag, RefTag, nil
		}
	}

	return commit, RefCommit, nil
}
