// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace listing command

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered benchmark workspaces",
	Args:  cobra.NoArgs,
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

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderRow(false).
			BorderColumn(true).
			Headers("Name", "Reference", "Type", "Root", "Python")

		for _, ws := range records {
			version := "n/a"
			if ws.Python != nil {
				version = ws.Python.Version
			}
			t.Row(ws.Name, ws.Ref, string(ws.RefType), ws.Root, version)
		}

		fmt.Println(t)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
