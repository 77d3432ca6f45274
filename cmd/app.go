// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Shared command wiring

package cmd

import (
	"fmt"
	"os"

	"github.com/sony-level/pybench/internal/config"
	"github.com/sony-level/pybench/internal/gitx"
	"github.com/sony-level/pybench/internal/registry"
	"github.com/sony-level/pybench/internal/results"
)

// app bundles the collaborators every command needs
type app struct {
	repo     *gitx.Repository
	cfg      *config.Config
	registry *registry.Registry
	store    *results.Store
}

// openApp locates the enclosing repository and wires up the registry and
// result store against its configuration directory.
func openApp() (*app, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	repo, err := gitx.Open(cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(repo.Root)
	if err != nil {
		return nil, err
	}

	return &app{
		repo:     repo,
		cfg:      cfg,
		registry: registry.New(repo, config.Dir(repo.Root)),
		store:    results.NewStore(cfg.ResultPath(repo.Root)),
	}, nil
}

// requireInitialized fails unless pybench init has been run
func (a *app) requireInitialized() error {
	if _, err := os.Stat(config.Dir(a.repo.Root)); err != nil {
		return fmt.Errorf("repository is not initialized, run `pybench init` first")
	}
	return nil
}
