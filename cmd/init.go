// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Repository initialization

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sony-level/pybench/internal/config"
	"github.com/sony-level/pybench/internal/gitx"
	"github.com/sony-level/pybench/internal/registry"
)

var (
	initOverwrite      bool
	initForceCreateEnv bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pybench in the current git repository",
	Long: `Initialize pybench by writing a default configuration into .pybench/
and registering the repository's primary checkout as the main workspace.
Existing worktrees with an in-tree virtual environment are adopted as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		if !gitx.IsRepository(cwd) {
			return fmt.Errorf("cannot initialize pybench outside a git repository")
		}

		repo, err := gitx.Open(cwd)
		if err != nil {
			return err
		}

		cfgFile := filepath.Join(config.Dir(repo.Root), config.FileName)
		if _, err := os.Stat(cfgFile); err == nil {
			if !initOverwrite {
				return fmt.Errorf("configuration already exists at %s, pass --rm to overwrite", cfgFile)
			}
			if err := os.Remove(cfgFile); err != nil {
				return fmt.Errorf("failed to remove existing configuration: %w", err)
			}
		}

		if err := config.Write(repo.Root); err != nil {
			return err
		}

		cfg, err := config.Load(repo.Root)
		if err != nil {
			return err
		}

		reg := registry.New(repo, config.Dir(repo.Root))
		adopted, err := reg.Sync(registry.SyncOptions{
			ForceCreateEnv: initForceCreateEnv,
			Executable:     cfg.Executable,
		})
		if err != nil {
			return err
		}

		for _, ws := range adopted {
			log.Info("registered workspace", "name", ws.Name, "ref", ws.Ref, "root", ws.Root)
		}

		fmt.Printf("Initialized pybench in %s\n", repo.Root)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initOverwrite, "rm", false, "Overwrite an existing configuration")
	initCmd.Flags().BoolVar(&initForceCreateEnv, "force-create-env", false,
		"Create a virtual environment for adopted worktrees that have none")
	rootCmd.AddCommand(initCmd)
}
