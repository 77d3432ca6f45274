// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Benchmark result schema

package results

// Result is one measured benchmark target, written by the benchmarked
// child process and never mutated after the fact.
type Result struct {
	// Name is the benchmark function name inside the target file
	Name string `json:"name"`
	// WallTime and CPUTime are measured in TimeUnit
	WallTime float64 `json:"wall_time"`
	CPUTime  float64 `json:"cpu_time"`
	// TimeUnit is the unit of the timings, e.g. "usec"
	TimeUnit string `json:"time_unit"`
	// Iterations is the number of measurements collapsed into this result
	Iterations int `json:"iterations"`
	// Context holds per-target key/value metadata
	Context map[string]string `json:"context,omitempty"`

	// File is the originating benchmark source file, filled by the loader
	File string `json:"-"`
	// Ref is the git ref the result was measured on, filled by the loader
	Ref string `json:"-"`
}

// Target returns the fully qualified target name: file path plus
// function name.
func (r *Result) Target() string {
	return r.File + "::" + r.Name
}

// ResultFile is the on-disk contract with the child process: one file per
// (workspace, source file) pair, holding global context plus one entry
// per measured benchmark.
type ResultFile struct {
	Context    map[string]string `json:"context"`
	Benchmarks []Result          `json:"benchmarks"`
}

// merged returns the benchmark entries with global context folded in.
// A local (per-target) value always wins over a global one on collision.
func (f *ResultFile) merged(file, ref string) []Result {
	out := make([]Result, len(f.Benchmarks))

	for i, bm := range f.Benchmarks {
		merged := make(map[string]string, len(f.Context)+len(bm.Context))
		for k, v := range f.Context {
			merged[k] = v
		}
		for k, v := range bm.Context {
			merged[k] = v
		}

		bm.Context = merged
		bm.File = file
		bm.Ref = ref
		out[i] = bm
	}

	return out
}
