package model

import (
	"fmt"
	"time"
)

// RunConfig carries every run-scoped parameter. It is constructed once by
// the cmd layer from file/env/flag configuration and passed by reference
// into the pipeline; nothing below the cmd layer reads ambient state.
type RunConfig struct {
	Target       Path // root of the library version under analysis
	BuildContext Path // where the compile database lives; defaults to Target
	Subdir       Path // sub-directory whose translation units are analyzed
	SymbolList   Path // plain-text worklist, one symbol per line
	Output       Path // artifact directory, purged at run start

	IncludePaths []string // extra -I paths appended to recorded compile args
	Defines      []string // extra -D defines appended to recorded compile args

	Quiet    bool // suppress engine diagnostics, keep success/failure signal
	Extended bool // request the alternate "_setx" analysis variant
	Resume   bool // skip entries already completed in a previous run

	Threads int           // invocation worker count; 1 means sequential
	Timeout time.Duration // per-invocation deadline; 0 means none
}

// Validate reports the first missing or inconsistent parameter.
func (c *RunConfig) Validate() error {
	switch {
	case c.Target == "":
		return fmt.Errorf("%w: target directory not set", ErrConfigInvalid)
	case c.Subdir == "":
		return fmt.Errorf("%w: source sub-directory not set", ErrConfigInvalid)
	case c.SymbolList == "":
		return fmt.Errorf("%w: symbol list not set", ErrConfigInvalid)
	case c.Output == "":
		return fmt.Errorf("%w: output directory not set", ErrConfigInvalid)
	case c.Threads < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrConfigInvalid, c.Threads)
	}

	return nil
}

// EffectiveBuildContext returns BuildContext, falling back to Target when
// the build metadata lives inside the analyzed tree.
func (c *RunConfig) EffectiveBuildContext() Path {
	if c.BuildContext != "" {
		return c.BuildContext
	}

	return c.Target
}

// EffectiveThreads normalizes the worker count to at least one.
func (c *RunConfig) EffectiveThreads() int {
	if c.Threads < 1 {
		return 1
	}

	return c.Threads
}
