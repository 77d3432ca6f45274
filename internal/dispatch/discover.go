// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Benchmark target discovery

package dispatch

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover expands a target path into a deduplicated, order-stable list of
// benchmark source files, relative to the workspace root. The target may be
// a single file, a directory, or a glob expression; __init__.py files are
// always skipped.
func Discover(root, target string) ([]string, error) {
	if filepath.IsAbs(target) {
		return nil, &InvalidArgumentError{
			Option: "target",
			Value:  target,
			Reason: "must be relative to the workspace root",
		}
	}

	full := filepath.Join(root, target)

	var matches []string

	switch info, err := os.Stat(full); {
	case err == nil && info.IsDir():
		walkErr := filepath.WalkDir(full, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".py") {
				rel, relErr := filepath.Rel(root, path)
				if relErr != nil {
					return relErr
				}
				matches = append(matches, rel)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("failed to walk benchmark directory %s: %w", full, walkErr)
		}

	case err == nil:
		matches = []string{filepath.ToSlash(target)}

	default:
		// not a file or directory, treat as a glob expression
		globbed, globErr := doublestar.Glob(os.DirFS(root), filepath.ToSlash(target))
		if globErr != nil {
			return nil, fmt.Errorf("invalid benchmark glob %q: %w", target, globErr)
		}
		matches = globbed
	}

	seen := make(map[string]bool, len(matches))
	targets := make([]string, 0, len(matches))

	for _, m := range matches {
		m = filepath.ToSlash(m)
		if !strings.HasSuffix(m, ".py") || strings.HasSuffix(m, "__init__.py") {
			continue
		}
		if !seen[m] {
			seen[m] = true
			targets = append(targets, m)
		}
	}

	sort.Strings(targets)

	// result files are keyed by file stem, so two targets sharing a stem
	// would silently overwrite each other's results
	stems := make(map[string]string, len(targets))
	for _, target := range targets {
		stem := strings.TrimSuffix(path.Base(target), ".py")
		if prev, ok := stems[stem]; ok {
			return nil, fmt.Errorf(
				"benchmark files %s and %s share the result stem %q, rename one of them",
				prev, target, stem,
			)
		}
		stems[stem] = target
	}

	return targets, nil
}

// ModuleName translates a source file path into dotted module syntax,
// replacing path separators and stripping the extension.
func ModuleName(file string) string {
	trimmed := strings.TrimSuffix(filepath.ToSlash(file), ".py")
	return strings.ReplaceAll(trimmed, "/", ".")
}
