package adapter

import (
	"context"
	"io"

	m "argstate.dev/pkg/argstate/internal/model"
)

// AnalyzeRequest carries one (symbol, translation-unit-set) analysis.
type AnalyzeRequest struct {
	Symbol m.Symbol
	Units  []m.TranslationUnit

	// Extended requests the alternate variant that also derives the
	// pre-call assignment state space of variable arguments.
	Extended bool

	// Diagnostics receives the engine's own progress output. The invoker
	// wires io.Discard here in quiet mode.
	Diagnostics io.Writer
}

// AnalysisEngine is the capability interface over the AST analysis that
// derives argument-usage facts for a symbol. Keeping it an interface lets
// tests inject faults without a parser front-end.
type AnalysisEngine interface {
	// Analyze returns the aggregated argument states for the symbol across
	// the translation-unit set. It returns model.ErrSymbolNotFound when no
	// unit defines or references the symbol, and any other error when a
	// unit fails to parse or the analysis itself fails.
	Analyze(ctx context.Context, req AnalyzeRequest) (*m.ArgumentStates, error)
}
