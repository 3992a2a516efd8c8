package model

import "time"

// InvocationStatus classifies the outcome of one plugin invocation.
type InvocationStatus int

const (
	// Completed indicates the invocation produced an artifact.
	Completed InvocationStatus = iota
	// SymbolNotFound indicates no translation unit in the set defines or
	// references the symbol. A legitimate per-symbol outcome, not fatal.
	SymbolNotFound
	// EngineFailure indicates the analysis engine failed: a parse error,
	// a crash, or a timeout.
	EngineFailure
	// Skipped indicates a resumed run found a completed journal record for
	// the entry and did not re-invoke the engine.
	Skipped
)

// String returns the status label used in logs and summaries.
func (s InvocationStatus) String() string {
	switch s {
	case Completed:
		return "completed"
	case SymbolNotFound:
		return "not-found"
	case EngineFailure:
		return "failed"
	case Skipped:
		return "skipped"
	}

	return "unknown"
}

// Invocation records the outcome of one (symbol, translation-unit-set)
// invocation.
type Invocation struct {
	Entry        WorklistEntry
	Status       InvocationStatus
	ArtifactPath Path
	Diagnostic   string
	Duration     time.Duration
}

// FailureRecord names one failed symbol with its diagnostic for the
// post-run summary.
type FailureRecord struct {
	Symbol     string `yaml:"symbol"`
	Diagnostic string `yaml:"diagnostic"`
}

// RunSummary aggregates per-symbol outcomes of one pipeline run. Persisted
// as run_summary.yaml next to the artifacts.
type RunSummary struct {
	Target      Path            `yaml:"target"`
	Subdir      Path            `yaml:"subdir"`
	Fingerprint string          `yaml:"tu_fingerprint"`
	Units       int             `yaml:"translation_units"`
	Processed   int             `yaml:"processed"`
	Completed   int             `yaml:"completed"`
	NotFound    int             `yaml:"not_found"`
	Failed      int             `yaml:"failed"`
	Skipped     int             `yaml:"skipped,omitempty"`
	Failures    []FailureRecord `yaml:"failures,omitempty"`
}
