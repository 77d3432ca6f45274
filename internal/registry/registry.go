// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace registry: create, delete, list, resolve

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sony-level/pybench/internal/env"
	"github.com/sony-level/pybench/internal/gitx"
)

// Linker describes an existing environment without taking ownership of it
type Linker interface {
	Link(envRoot string) (*env.PythonSpec, error)
}

// Registry manages the set of benchmark workspaces of one repository
type Registry struct {
	repo     *gitx.Repository
	store    *Store
	provider env.Provider
	linker   Linker
}

// New creates a registry over the given repository and config directory.
// The default venv provider serves both environment creation and linking.
func New(repo *gitx.Repository, dir string) *Registry {
	provider := env.NewVenvProvider()
	return &Registry{
		repo:     repo,
		store:    NewStore(dir),
		provider: provider,
		linker:   provider,
	}
}

// WithProvider injects an alternate environment backend
func (r *Registry) WithProvider(provider env.Provider, linker Linker) *Registry {
	r.provider = provider
	r.linker = linker
	return r
}

// Store exposes the record store, e.g. for run-level locking
func (r *Registry) Store() *Store {
	return r.store
}

// CreateOptions controls workspace creation
type CreateOptions struct {
	// Ref is the commit-ish to check out
	Ref string
	// Name overrides the auto-generated workspace name
	Name string
	// Dest overrides the default worktree location
	Dest string
	// Force permits a second workspace for an already tracked ref
	Force bool
	// ResolveCommits pins branch checkouts to their current commit
	ResolveCommits bool
	// NoCheckout creates the worktree without populating it
	NoCheckout bool
	// LinkDir links an existing environment instead of creating one
	LinkDir string
	// Executable is the base interpreter for fresh environments
	Executable string
	// VenvOptions are forwarded to the environment provider
	VenvOptions []string
}

// Create materializes a new benchmark workspace: a linked worktree plus a
// fresh or linked Python environment. The registry write is the last step,
// so a provider or git failure leaves no record behind.
func (r *Registry) Create(opts CreateOptions) (*Workspace, error) {
	commit, refType, err := r.repo.Resolve(opts.Ref)
	if err != nil {
		return nil, err
	}

	release, err := r.store.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		for _, rec := range records {
			if rec.Ref == opts.Ref || rec.Commit == commit {
				return nil, &DuplicateWorkspaceError{Ref: opts.Ref, Name: rec.Name}
			}
		}
	}

	name := opts.Name
	if name == "" {
		name = nextName(records)
	} else if byName(records, name) != nil {
		return nil, fmt.Errorf("workspace name %q is already taken", name)
	}

	dest := opts.Dest
	if dest == "" {
		dest = r.defaultDest(opts.Ref)
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to absolutize destination %s: %w", opts.Dest, err)
	}

	for _, rec := range records {
		if rec.Root == dest {
			return nil, fmt.Errorf("worktree root %s is already used by workspace %q", dest, rec.Name)
		}
	}

	detach := opts.ResolveCommits && refType == gitx.RefBranch
	checkoutRef := opts.Ref
	if detach {
		checkoutRef = commit
	}

	wt, err := r.repo.AddWorktree(checkoutRef, dest, gitx.AddOptions{
		Force:      opts.Force,
		NoCheckout: opts.NoCheckout,
		Detach:     detach,
	})
	if err != nil {
		return nil, err
	}

	spec, err := r.materializeEnv(dest, opts)
	if err != nil {
		// no record was written yet, undo the checkout
		if rmErr := r.repo.RemoveWorktree(dest, true); rmErr != nil {
			log.Warn("failed to clean up worktree after environment failure", "root", dest, "err", rmErr)
		}
		return nil, err
	}

	now := time.Now()
	record := &Workspace{
		Name:         name,
		Ref:          opts.Ref,
		RefType:      refType,
		Commit:       wt.Commit,
		Root:         dest,
		Python:       spec,
		Created:      now,
		LastModified: now,
	}
	if detach {
		record.RefType = gitx.RefCommit
		record.Ref = wt.Commit
	}

	records = append(records, record)
	if err := r.store.Save(records); err != nil {
		return nil, err
	}

	return record, nil
}

// Delete removes the workspace matched by identifier. The main workspace is
// protected; linked environments are left intact; force discards untracked
// and modified files in the worktree.
func (r *Registry) Delete(identifier string, force bool) error {
	release, err := r.store.Acquire()
	if err != nil {
		return err
	}
	defer release()

	records, err := r.store.Load()
	if err != nil {
		return err
	}

	record, err := resolveRecord(records, identifier)
	if err != nil {
		return err
	}

	if record.IsMain() {
		return fmt.Errorf("failed to delete workspace %q: %w", identifier, ErrProtectedWorkspace)
	}

	// owned in-tree environments are removed before the worktree so git
	// does not trip over the directory
	if record.Python != nil && !record.Python.Linked && record.Python.Root != "" {
		if insideRoot(record.Python.Root, record.Root) {
			if err := r.provider.Delete(record.Python.Root); err != nil {
				return err
			}
		}
	}

	if err := r.repo.RemoveWorktree(record.Root, force); err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec != record {
			kept = append(kept, rec)
		}
	}

	return r.store.Save(kept)
}

// List returns all workspaces in creation order
func (r *Registry) List() ([]*Workspace, error) {
	return r.store.Load()
}

// Resolve matches an identifier against the registered workspaces.
// Matching order is name, then worktree root, then ref; the first stage
// with a match wins. A ref checked out in two workspaces is ambiguous.
func (r *Registry) Resolve(identifier string) (*Workspace, error) {
	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	return resolveRecord(records, identifier)
}

// Switch re-points an existing workspace's checkout at another ref
func (r *Registry) Switch(identifier, ref string) (*Workspace, error) {
	commit, refType, err := r.repo.Resolve(ref)
	if err != nil {
		return nil, err
	}

	release, err := r.store.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	record, err := resolveRecord(records, identifier)
	if err != nil {
		return nil, err
	}

	if err := gitx.Checkout(record.Root, ref); err != nil {
		return nil, err
	}

	record.Ref = ref
	record.RefType = refType
	record.Commit = commit
	record.LastModified = time.Now()

	if err := r.store.Save(records); err != nil {
		return nil, err
	}

	return record, nil
}

// SyncOptions controls registry reconciliation
type SyncOptions struct {
	// ForceCreateEnv creates an in-tree environment when linking fails
	ForceCreateEnv bool
	// Executable is the base interpreter for forced environment creation
	Executable string
}

// Sync reconciles the registry with the repository's actual worktrees,
// adopting any worktree that has no record yet. The primary checkout is
// adopted as the main workspace.
func (r *Registry) Sync(opts SyncOptions) ([]*Workspace, error) {
	release, err := r.store.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	worktrees, err := r.repo.ListWorktrees()
	if err != nil {
		return nil, err
	}

	var adopted []*Workspace

	for i, wt := range worktrees {
		if byRoot(records, wt.Root) != nil {
			continue
		}

		spec, err := r.adoptEnv(wt.Root, opts)
		if err != nil {
			return nil, err
		}

		name := nextName(records)
		if i == 0 && byName(records, MainName) == nil {
			name = MainName
		}

		ref, refType := wt.RefAndType()
		now := time.Now()
		record := &Workspace{
			Name:         name,
			Ref:          ref,
			RefType:      refType,
			Commit:       wt.Commit,
			Root:         wt.Root,
			Python:       spec,
			Created:      now,
			LastModified: now,
		}

		records = append(records, record)
		adopted = append(adopted, record)
	}

	if len(adopted) > 0 {
		if err := r.store.Save(records); err != nil {
			return nil, err
		}
	}

	return adopted, nil
}

// Install adds packages to a workspace's environment and persists the
// refreshed package list. The registry write is the last step.
func (r *Registry) Install(identifier string, req env.InstallRequest) (*Workspace, error) {
	return r.mutateEnv(identifier, func(record *Workspace) error {
		return r.provider.Install(record.Python, req)
	})
}

// Uninstall removes packages from a workspace's environment and persists
// the refreshed package list.
func (r *Registry) Uninstall(identifier string, packages, options []string) (*Workspace, error) {
	return r.mutateEnv(identifier, func(record *Workspace) error {
		return r.provider.Uninstall(record.Python, packages, options)
	})
}

// LinkEnv binds a workspace to an externally managed environment
func (r *Registry) LinkEnv(identifier, envRoot string) (*Workspace, error) {
	return r.mutateEnv(identifier, func(record *Workspace) error {
		spec, err := r.linker.Link(envRoot)
		if err != nil {
			return err
		}
		record.Python = spec
		return nil
	})
}

func (r *Registry) mutateEnv(identifier string, mutate func(*Workspace) error) (*Workspace, error) {
	release, err := r.store.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	record, err := resolveRecord(records, identifier)
	if err != nil {
		return nil, err
	}
	if record.Python == nil {
		return nil, fmt.Errorf("workspace %q has no environment attached", record.Name)
	}

	if err := mutate(record); err != nil {
		return nil, err
	}

	record.LastModified = time.Now()

	if err := r.store.Save(records); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *Registry) materializeEnv(dest string, opts CreateOptions) (*env.PythonSpec, error) {
	if opts.LinkDir != "" {
		return r.linker.Link(opts.LinkDir)
	}

	executable := opts.Executable
	if executable == "" {
		executable = "python3"
	}

	return r.provider.Create(executable, dest, opts.VenvOptions)
}

func (r *Registry) adoptEnv(root string, opts SyncOptions) (*env.PythonSpec, error) {
	inTree := filepath.Join(root, "venv")
	if env.ValidateEnvironment(inTree) == nil {
		return r.linker.Link(inTree)
	}

	if !opts.ForceCreateEnv {
		return &env.PythonSpec{}, nil
	}

	executable := opts.Executable
	if executable == "" {
		executable = "python3"
	}

	return r.provider.Create(executable, root, nil)
}

// defaultDest places the worktree next to the repository as <repo>@<ref>
func (r *Registry) defaultDest(ref string) string {
	escaped := strings.ReplaceAll(ref, "/", "-")
	name := filepath.Base(r.repo.Root) + "@" + escaped
	return filepath.Join(filepath.Dir(r.repo.Root), name)
}

// nextName picks the first free auto-generated workspace name
func nextName(records []*Workspace) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("workspace_%d", i)
		if byName(records, name) == nil {
			return name
		}
	}
}

func byName(records []*Workspace, name string) *Workspace {
	for _, rec := range records {
		if rec.Name == name {
			return rec
		}
	}
	return nil
}

func byRoot(records []*Workspace, root string) *Workspace {
	for _, rec := range records {
		if rec.Root == root || filepath.Base(rec.Root) == filepath.Base(root) {
			return rec
		}
	}
	return nil
}

// resolveRecord implements the priority-ordered identifier search:
// by name, then by worktree root, then by ref.
func resolveRecord(records []*Workspace, identifier string) (*Workspace, error) {
	if rec := byName(records, identifier); rec != nil {
		return rec, nil
	}

	if rec := byRoot(records, identifier); rec != nil {
		return rec, nil
	}

	var refMatches []*Workspace
	for _, rec := range records {
		if rec.Ref == identifier || strings.HasPrefix(rec.Commit, identifier) {
			refMatches = append(refMatches, rec)
		}
	}

	switch len(refMatches) {
	case 0:
		return nil, &NotFoundError{Identifier: identifier}
	case 1:
		return refMatches[0], nil
	default:
		names := make([]string, len(refMatches))
		for i, rec := range refMatches {
			names[i] = rec.Name
		}
		return nil, &AmbiguousIdentifierError{Identifier: identifier, Names: names}
	}
}

// insideRoot reports whether path is located under root
func insideRoot(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
