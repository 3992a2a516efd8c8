package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"argstate.dev/pkg/argstate/internal/adapter"
	m "argstate.dev/pkg/argstate/internal/model"
)

// Invoker runs the analysis engine for one worklist entry and persists the
// resulting artifact. Per-symbol failures are carried in the Invocation
// record, never returned as errors: the pipeline's fail-soft policy depends
// on one bad symbol not halting the worklist.
type Invoker interface {
	Invoke(ctx context.Context, entry m.WorklistEntry, units []m.TranslationUnit, cfg *m.RunConfig) m.Invocation
}

type invoker struct {
	engine      adapter.AnalysisEngine
	store       adapter.ArtifactStore
	diagnostics io.Writer
}

// NewInvoker constructs an Invoker backed by the provided engine and
// artifact store. diagnostics receives engine output when quiet is off.
func NewInvoker(engine adapter.AnalysisEngine, store adapter.ArtifactStore, diagnostics io.Writer) Invoker {
	return &invoker{
		engine:      engine,
		store:       store,
		diagnostics: diagnostics,
	}
}

func (iv *invoker) Invoke(ctx context.Context, entry m.WorklistEntry, units []m.TranslationUnit, cfg *m.RunConfig) m.Invocation {
	started := time.Now()
	name := entry.ArtifactName(cfg.Extended)

	// An empty translation-unit set is a legitimate no-op: the symbol may
	// live under another sub-directory. A durable empty artifact still gets
	// written so downstream can tell "analyzed" from "never ran".
	if len(units) == 0 {
		return iv.persist(ctx, entry, name, m.EmptyArgumentStates(entry.Symbol), cfg, started)
	}

	ictx := ctx

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ictx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	diagnostics := iv.diagnostics
	if cfg.Quiet {
		diagnostics = io.Discard
	}

	states, err := iv.engine.Analyze(ictx, adapter.AnalyzeRequest{
		Symbol:      entry.Symbol,
		Units:       units,
		Extended:    cfg.Extended,
		Diagnostics: diagnostics,
	})

	switch {
	case errors.Is(err, m.ErrSymbolNotFound):
		return m.Invocation{
			Entry:    entry,
			Status:   m.SymbolNotFound,
			Duration: time.Since(started),
		}
	case err != nil:
		diagnostic := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			diagnostic = fmt.Sprintf("analysis timed out after %s", cfg.Timeout)
		}

		slog.Error("analysis engine failed", "symbol", entry.Symbol, "error", err)

		return m.Invocation{
			Entry:      entry,
			Status:     m.EngineFailure,
			Diagnostic: diagnostic,
			Duration:   time.Since(started),
		}
	}

	return iv.persist(ctx, entry, name, states, cfg, started)
}

// persist serializes the artifact and writes it under its deterministic
// name. A write failure is a per-symbol engine failure, not a run abort:
// only directory preparation failures are fatal.
func (iv *invoker) persist(ctx context.Context, entry m.WorklistEntry, name string, states *m.ArgumentStates, cfg *m.RunConfig, started time.Time) m.Invocation {
	data, err := json.Marshal(states)
	if err != nil {
		return m.Invocation{
			Entry:      entry,
			Status:     m.EngineFailure,
			Diagnostic: fmt.Sprintf("encode artifact: %v", err),
			Duration:   time.Since(started),
		}
	}

	path, err := iv.store.Write(ctx, cfg.Output, name, data)
	if err != nil {
		slog.Error("failed to write artifact", "symbol", entry.Symbol, "artifact", name, "error", err)

		return m.Invocation{
			Entry:      entry,
			Status:     m.EngineFailure,
			Diagnostic: fmt.Sprintf("write artifact: %v", err),
			Duration:   time.Since(started),
		}
	}

	return m.Invocation{
		Entry:        entry,
		Status:       m.Completed,
		ArtifactPath: path,
		Duration:     time.Since(started),
	}
}
