// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Repository teardown

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sony-level/pybench/internal/config"
)

var destroyForce bool

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Remove pybench state and all managed workspaces",
	Long: `Remove every workspace except main (including their worktrees and owned
environments), then delete the .pybench directory with its configuration,
workspace records, and stored benchmark results.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		records, err := a.registry.List()
		if err != nil {
			return err
		}

		for _, ws := range records {
			if ws.IsMain() {
				continue
			}
			if err := a.registry.Delete(ws.Name, destroyForce); err != nil {
				return err
			}
			fmt.Printf("Removed workspace %q\n", ws.Name)
		}

		if err := os.RemoveAll(config.Dir(a.repo.Root)); err != nil {
			return fmt.Errorf("failed to remove pybench directory: %w", err)
		}

		fmt.Printf("Destroyed pybench state in %s\n", a.repo.Root)
		return nil
	},
}

func init() {
	destroyCmd.Flags().BoolVarP(&destroyForce, "force", "f", false,
		"Remove worktrees even when they contain untracked or modified files")
	rootCmd.AddCommand(destroyCmd)
}
