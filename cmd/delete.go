// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace deletion command

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <identifier>",
	Short: "Delete a benchmark workspace",
	Long: `Delete the workspace matching the identifier, which can be a workspace
name, a worktree directory, or a checked-out ref. The main workspace can
never be deleted; linked environments are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		ws, err := a.registry.Resolve(args[0])
		if err != nil {
			return err
		}

		if err := a.registry.Delete(args[0], deleteForce); err != nil {
			return err
		}

		fmt.Printf("Removed workspace %q\n", ws.Name)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false,
		"Remove the worktree even when it contains untracked or modified files")
	rootCmd.AddCommand(deleteCmd)
}
