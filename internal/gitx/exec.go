// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Captured git subprocess execution

package gitx

import (
	"errors"
	"os/exec"
	"strings"
)

// runGit executes a git command in dir and captures its output.
// A nonzero exit code is returned as a *CommandError carrying stderr.
func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &CommandError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return stdout.String(), err
	}

	return stdout.String(), nil
}
