// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Benchmark flag vector construction and validation

package dispatch

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// flagPrefix namespaces the flags understood by the child benchmark process
const flagPrefix = "--benchmark"

// InvalidArgumentError signals a dispatch option outside its valid domain
type InvalidArgumentError struct {
	Option string
	Value  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Option, e.Reason)
}

// InvalidFilterError signals an unparseable benchmark filter expression
type InvalidFilterError struct {
	Pattern string
	Err     error
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid benchmark filter %q: %v", e.Pattern, e.Err)
}

func (e *InvalidFilterError) Unwrap() error { return e.Err }

// DuplicateContextKeyError signals two global context values for one key
type DuplicateContextKeyError struct {
	Key string
}

func (e *DuplicateContextKeyError) Error() string {
	return fmt.Sprintf("multiple context values supplied for key %q", e.Key)
}

// ParseContext validates raw key=value pairs into a context map.
// Keys must be unique across all supplied pairs.
func ParseContext(pairs []string) (map[string]string, error) {
	context := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, &InvalidArgumentError{
				Option: "context",
				Value:  pair,
				Reason: "context values must be given as key=value",
			}
		}
		if _, exists := context[key]; exists {
			return nil, &DuplicateContextKeyError{Key: key}
		}
		context[key] = value
	}

	return context, nil
}

// validate checks the run options shared by both execution strategies
// and compiles the benchmark filter.
func (o *RunOptions) validate() (map[string]string, error) {
	if o.Repetitions < 1 {
		return nil, &InvalidArgumentError{
			Option: "repetitions",
			Value:  fmt.Sprint(o.Repetitions),
			Reason: "must be at least 1",
		}
	}

	if o.Filter != "" {
		if _, err := regexp.Compile(o.Filter); err != nil {
			return nil, &InvalidFilterError{Pattern: o.Filter, Err: err}
		}
	}

	return ParseContext(o.Context)
}

// buildArgv assembles the child argument vector for one target file.
// The measured ref always travels as implicit global context.
func buildArgv(file string, asModule bool, resultPath, ref string, opts RunOptions, context map[string]string) []string {
	var argv []string

	if asModule {
		argv = append(argv, "-m", ModuleName(file))
	} else {
		argv = append(argv, file)
	}

	argv = append(argv, fmt.Sprintf("%s_repetitions=%d", flagPrefix, opts.Repetitions))

	if opts.Filter != "" {
		argv = append(argv, fmt.Sprintf("%s_filter=%s", flagPrefix, opts.Filter))
	}

	argv = append(argv, fmt.Sprintf("%s_out=%s", flagPrefix, resultPath))

	if _, ok := context["ref"]; !ok {
		argv = append(argv, fmt.Sprintf("%s_context=ref=%s", flagPrefix, ref))
	}
	for _, key := range sortedKeys(context) {
		argv = append(argv, fmt.Sprintf("%s_context=%s=%s", flagPrefix, key, context[key]))
	}

	return argv
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
