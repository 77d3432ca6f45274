// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace ref switching command

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch <identifier> <commit-ish>",
	Short: "Check out a different ref in an existing workspace",
	Long: `Switch the workspace matching the identifier to a new branch, tag or
commit. The workspace keeps its name, root directory and Python
environment; only the checked out ref changes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		ws, err := a.registry.Switch(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Switched workspace %q to %s %q (%s)\n",
			ws.Name, ws.RefType, ws.Ref, ws.Commit[:12])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
