// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Append-only result store with numbered runs

package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

const resultSuffix = "_results.json"

// previousPattern matches the latest^{n} run syntax
var previousPattern = regexp.MustCompile(`^latest\^\{(\d+)\}$`)

// RunNotFoundError signals a run identifier that resolves to no stored run
type RunNotFoundError struct {
	Run string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("no benchmark run matches %q", e.Run)
}

// RefNotInRunError signals a (run, ref) pair that was never written
type RefNotInRunError struct {
	Run int
	Ref string
}

func (e *RefNotInRunError) Error() string {
	return fmt.Sprintf("no results exist for ref %q in run %d", e.Ref, e.Run)
}

// Store keeps benchmark results keyed by (run, ref). Runs are numbered
// directories; each holds one subdirectory per ref with one JSON result
// file per benchmarked source file.
type Store struct {
	dir  string
	lock *flock.Flock
}

// NewStore creates a result store rooted at dir
func NewStore(dir string) *Store {
	return &Store{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".runs.lock")),
	}
}

// Dir returns the result store root
func (s *Store) Dir() string {
	return s.dir
}

// Runs lists the stored run ids in ascending order
func (s *Store) Runs() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result directory: %w", err)
	}

	var runs []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if id, convErr := strconv.Atoi(entry.Name()); convErr == nil {
			runs = append(runs, id)
		}
	}

	sort.Ints(runs)
	return runs, nil
}

// NewRun allocates the next run id and creates its directory. Allocation
// happens under an exclusive lock so two controller invocations never
// claim the same id.
func (s *Store) NewRun() (int, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create result directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return 0, fmt.Errorf("failed to acquire run index lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	runs, err := s.Runs()
	if err != nil {
		return 0, err
	}

	next := 1
	if len(runs) > 0 {
		next = runs[len(runs)-1] + 1
	}

	if err := os.Mkdir(filepath.Join(s.dir, strconv.Itoa(next)), 0755); err != nil {
		return 0, fmt.Errorf("failed to create run directory: %w", err)
	}

	return next, nil
}

// ResolveRun maps a run identifier to a concrete run id. Accepted forms
// are a plain id, "latest", and "latest^{n}" for the n-th preceding run.
func (s *Store) ResolveRun(identifier string) (int, error) {
	runs, err := s.Runs()
	if err != nil {
		return 0, err
	}

	back := -1
	switch {
	case identifier == "latest":
		back = 0
	case previousPattern.MatchString(identifier):
		n, _ := strconv.Atoi(previousPattern.FindStringSubmatch(identifier)[1])
		back = n
	default:
		id, convErr := strconv.Atoi(identifier)
		if convErr != nil {
			return 0, &RunNotFoundError{Run: identifier}
		}
		for _, run := range runs {
			if run == id {
				return id, nil
			}
		}
		return 0, &RunNotFoundError{Run: identifier}
	}

	if back >= len(runs) {
		return 0, &RunNotFoundError{Run: identifier}
	}

	return runs[len(runs)-1-back], nil
}

// Refs lists the refs that have results in a run
func (s *Store) Refs(run int) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, strconv.Itoa(run)))
	if os.IsNotExist(err) {
		return nil, &RunNotFoundError{Run: strconv.Itoa(run)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run directory: %w", err)
	}

	var refs []string
	for _, entry := range entries {
		if entry.IsDir() {
			refs = append(refs, entry.Name())
		}
	}

	sort.Strings(refs)
	return refs, nil
}

// ResultPath returns the file the child process must write for one
// (run, ref, source file) combination, creating the ref directory.
func (s *Store) ResultPath(run int, ref, sourceFile string) (string, error) {
	refDir := filepath.Join(s.dir, strconv.Itoa(run), escapeRef(ref))
	if err := os.MkdirAll(refDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create result subdirectory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	return filepath.Join(refDir, stem+resultSuffix), nil
}

// Load reads all results for one ref of one run, with global context
// merged into each entry.
func (s *Store) Load(run int, ref string) ([]Result, error) {
	refDir := filepath.Join(s.dir, strconv.Itoa(run), escapeRef(ref))

	entries, err := os.ReadDir(refDir)
	if os.IsNotExist(err) {
		return nil, &RefNotInRunError{Run: run, Ref: ref}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read results for ref %q: %w", ref, err)
	}

	var results []Result
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultSuffix) {
			continue
		}

		path := filepath.Join(refDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read result file %s: %w", path, err)
		}

		var file ResultFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("malformed result file %s: %w", path, err)
		}

		source := strings.TrimSuffix(entry.Name(), resultSuffix) + ".py"
		results = append(results, file.merged(source, ref)...)
	}

	if len(results) == 0 {
		return nil, &RefNotInRunError{Run: run, Ref: ref}
	}

	return results, nil
}

// escapeRef makes a ref usable as a directory name
func escapeRef(ref string) string {
	return strings.ReplaceAll(ref, "/", "-")
}
