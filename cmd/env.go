// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Environment management commands

package cmd

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/sony-level/pybench/internal/env"
	"github.com/spf13/cobra"
)

var (
	installRequirements string
	installOptions      []string
	uninstallOptions    []string
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage the Python environment of a workspace",
}

var envInstallCmd = &cobra.Command{
	Use:   "install <identifier> [<package>...]",
	Short: "Install packages into a workspace environment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		if len(args) < 2 && installRequirements == "" {
			return fmt.Errorf("nothing to install: pass package names or --requirements")
		}

		options, err := splitOptions(installOptions)
		if err != nil {
			return err
		}

		ws, err := a.registry.Install(args[0], env.InstallRequest{
			Packages:         args[1:],
			RequirementsFile: installRequirements,
			Options:          options,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Installed packages into workspace %q (%d installed total)\n",
			ws.Name, len(ws.Python.Packages))
		return nil
	},
}

var envUninstallCmd = &cobra.Command{
	Use:   "uninstall <identifier> <package>...",
	Short: "Remove packages from a workspace environment",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		options, err := splitOptions(uninstallOptions)
		if err != nil {
			return err
		}

		ws, err := a.registry.Uninstall(args[0], args[1:], options)
		if err != nil {
			return err
		}

		fmt.Printf("Removed %s from workspace %q\n",
			strings.Join(args[1:], ", "), ws.Name)
		return nil
	},
}

var envLinkCmd = &cobra.Command{
	Use:   "link <identifier> <directory>",
	Short: "Associate an existing virtual environment with a workspace",
	Long: `Link a virtual environment that lives outside the workspace tree. The
directory must contain a valid environment; linked environments are
never deleted together with their workspace.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		if err := a.requireInitialized(); err != nil {
			return err
		}

		ws, err := a.registry.LinkEnv(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Linked environment %s to workspace %q (Python %s)\n",
			args[1], ws.Name, ws.Python.Version)
		return nil
	},
}

// splitOptions expands shell-quoted option strings so that both
// --pip-option="--no-cache-dir" and --pip-option="-i https://mirror"
// end up as separate pip arguments.
func splitOptions(raw []string) ([]string, error) {
	var options []string
	for _, entry := range raw {
		split, err := shellquote.Split(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pip option %q: %w", entry, err)
		}
		options = append(options, split...)
	}
	return options, nil
}

func init() {
	envInstallCmd.Flags().StringVarP(&installRequirements, "requirements", "r", "",
		"Install from the given requirements file")
	envInstallCmd.Flags().StringArrayVar(&installOptions, "pip-option", nil,
		"Additional option passed through to pip install (repeatable)")
	envUninstallCmd.Flags().StringArrayVar(&uninstallOptions, "pip-option", nil,
		"Additional option passed through to pip uninstall (repeatable)")

	envCmd.AddCommand(envInstallCmd)
	envCmd.AddCommand(envUninstallCmd)
	envCmd.AddCommand(envLinkCmd)
	rootCmd.AddCommand(envCmd)
}
