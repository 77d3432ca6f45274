// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Registry synchronization command

package cmd

import (
	"fmt"

	"github.com/sony-level/pybench/internal/registry"
	"github.com/spf13/cobra"
)

var syncCreateEnv bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the registry with the worktrees git knows about",
	Long: `Walk the linked worktrees of the repository and register any that are
missing from the workspace registry. Existing records are left alone;
adopted worktrees get their in-tree virtual environment detected, or a
fresh one created when --create-env is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		adopted, err := a.registry.Sync(registry.SyncOptions{
			ForceCreateEnv: syncCreateEnv,
			Executable:     a.cfg.Executable,
		})
		if err != nil {
			return err
		}

		if len(adopted) == 0 {
			fmt.Println("Registry is up to date")
			return nil
		}
		for _, ws := range adopted {
			fmt.Printf("Adopted workspace %q for %s %q at %s\n",
				ws.Name, ws.RefType, ws.Ref, ws.Root)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncCreateEnv, "create-env", false,
		"Create a virtual environment for adopted worktrees that have none")
	rootCmd.AddCommand(syncCmd)
}
