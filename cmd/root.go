// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Root command and global flags

package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base pybench command
var rootCmd = &cobra.Command{
	Use:   "pybench",
	Short: "Benchmark Python code across git refs in isolated workspaces",
	Long: `pybench manages benchmark workspaces - pairings of a git worktree and
a Python environment - and runs a benchmark suite across them, so that
timings can be compared between branches, tags, and commits.

Typical session:
  pybench init
  pybench create my-feature-branch
  pybench run benchmarks/ main workspace_1
  pybench compare latest main my-feature-branch`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
