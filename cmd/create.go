// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace creation command

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sony-level/pybench/internal/registry"
)

var (
	createName           string
	createForce          bool
	createResolveCommits bool
	createNoCheckout     bool
	createLink           string
	createPython         string
	createVenvOptions    []string
)

var createCmd = &cobra.Command{
	Use:   "create <commit-ish> [<dest>]",
	Short: "Create a new benchmark workspace",
	Long: `Create a benchmark workspace for a git ref: a linked worktree checked out
at the ref, paired with a fresh virtual environment (or a linked existing
one). The ref can be a branch, tag, or commit SHA.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		opts := registry.CreateOptions{
			Ref:            args[0],
			Name:           createName,
			Force:          createForce,
			ResolveCommits: createResolveCommits,
			NoCheckout:     createNoCheckout,
			LinkDir:        createLink,
			Executable:     createPython,
			VenvOptions:    createVenvOptions,
		}
		if len(args) > 1 {
			opts.Dest = args[1]
		}
		if opts.Executable == "" {
			opts.Executable = a.cfg.Executable
		}
		if len(opts.VenvOptions) == 0 {
			opts.VenvOptions = a.cfg.VenvOptions
		}

		ws, err := a.registry.Create(opts)
		if err != nil {
			return err
		}

		fmt.Printf("Created workspace %q for %s %q at %s\n", ws.Name, ws.RefType, ws.Ref, ws.Root)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Unique name for the new workspace")
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false,
		"Allow checking out a ref that already has a workspace")
	createCmd.Flags().BoolVar(&createResolveCommits, "resolve-commits", false,
		"Pin branch checkouts to their current commit (detached HEAD)")
	createCmd.Flags().BoolVar(&createNoCheckout, "no-checkout", false,
		"Create the worktree without populating it")
	createCmd.Flags().StringVar(&createLink, "link", "",
		"Link an existing virtual environment instead of creating one")
	createCmd.Flags().StringVar(&createPython, "python", "",
		"Base interpreter for the new virtual environment")
	createCmd.Flags().StringArrayVar(&createVenvOptions, "venv-option", nil,
		"Additional option passed to virtual environment creation (repeatable)")
	rootCmd.AddCommand(createCmd)
}
