package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/minio/highwayhash"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"argstate.dev/pkg/argstate/internal/adapter"
	"argstate.dev/pkg/argstate/internal/controller"
	m "argstate.dev/pkg/argstate/internal/model"
	"argstate.dev/pkg/argstate/pkg"
)

const (
	journalName = "argstate.journal"
	summaryName = "run_summary.yaml"
)

// fingerprintKey seeds the highwayhash fingerprint of the resolved
// translation-unit set; 32 bytes as the algorithm requires.
var fingerprintKey = []byte("argstate-tu-fingerprint-key-0001")

// Pipeline is the run controller: it builds the translation-unit index,
// prepares the artifact directory, and drives one invocation per worklist
// entry under the fail-soft policy.
type Pipeline interface {
	Run(ctx context.Context, cfg *m.RunConfig) (*m.RunSummary, error)
}

type pipeline struct {
	indexer  Indexer
	invoker  Invoker
	store    adapter.ArtifactStore
	worklist adapter.WorklistLoader
	ui       controller.UI
}

// NewPipeline wires the run controller from its collaborators.
func NewPipeline(
	indexer Indexer,
	invoker Invoker,
	store adapter.ArtifactStore,
	worklist adapter.WorklistLoader,
	ui controller.UI,
) Pipeline {
	return &pipeline{
		indexer:  indexer,
		invoker:  invoker,
		store:    store,
		worklist: worklist,
		ui:       ui,
	}
}

// Run executes one full pipeline pass. Fatal phase errors (configuration,
// index build, unknown sub-directory, output preparation) abort before any
// symbol is processed. Per-symbol failures are aggregated into the summary
// and never returned as errors.
func (p *pipeline) Run(ctx context.Context, cfg *m.RunConfig) (*m.RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	index, err := p.indexer.BuildIndex(ctx, cfg.Target, cfg.EffectiveBuildContext())
	if err != nil {
		return nil, fmt.Errorf("build translation-unit index: %w", err)
	}

	units, err := index.Lookup(cfg.Subdir)
	if err != nil {
		return nil, err
	}

	units = applyCompileOverrides(units, cfg)

	done, err := p.prepareOutput(ctx, cfg)
	if err != nil {
		return nil, err
	}

	entries, err := p.worklist.Load(ctx, cfg.SymbolList)
	if err != nil {
		return nil, fmt.Errorf("load symbol worklist: %w", err)
	}

	journal, err := pkg.OpenJournal[m.Invocation](filepath.Join(string(cfg.Output), journalName))
	if err != nil {
		return nil, fmt.Errorf("open invocation journal: %w", err)
	}

	defer func() { _ = journal.Close() }()

	if err := p.ui.Start(ctx); err != nil {
		return nil, err
	}

	defer p.ui.Close(ctx)

	p.ui.DisplayRunInfo(ctx, cfg, len(units), len(entries))

	results, err := p.process(ctx, cfg, entries, units, done, journal)
	if err != nil {
		return nil, err
	}

	summary := summarize(cfg, fingerprintUnits(units), len(units), results)

	p.saveSummary(ctx, cfg, summary)

	if err := p.ui.DisplaySummary(ctx, summary); err != nil {
		return nil, err
	}

	return summary, nil
}

// process fans the worklist out over a bounded worker pool. Invocations
// are independent; results land in a per-entry slot so worklist order is
// preserved no matter the completion order.
func (p *pipeline) process(
	ctx context.Context,
	cfg *m.RunConfig,
	entries []m.WorklistEntry,
	units []m.TranslationUnit,
	done map[string]bool,
	journal pkg.Journal[m.Invocation],
) ([]m.Invocation, error) {
	results := make([]m.Invocation, len(entries))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.EffectiveThreads())

	for _, entry := range entries {
		currentEntry := entry
		name := currentEntry.ArtifactName(cfg.Extended)

		if done[name] {
			results[currentEntry.Seq] = m.Invocation{
				Entry:        currentEntry,
				Status:       m.Skipped,
				ArtifactPath: m.Path(filepath.Join(string(cfg.Output), name)),
			}

			continue
		}

		group.Go(func() error {
			// Cooperative cancellation between invocations.
			if err := gctx.Err(); err != nil {
				return err
			}

			p.ui.DisplayInvocationStarted(gctx, currentEntry)

			invocation := p.invoker.Invoke(gctx, currentEntry, units, cfg)
			results[currentEntry.Seq] = invocation

			if err := journal.Append(invocation); err != nil {
				slog.Warn("failed to journal invocation", "symbol", currentEntry.Symbol, "error", err)
			}

			p.ui.DisplayInvocationCompleted(gctx, invocation)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("run interrupted: %w", err)
	}

	return results, nil
}

// prepareOutput purges the artifact directory for a fresh run, or loads
// the set of already-completed artifact names when resuming.
func (p *pipeline) prepareOutput(ctx context.Context, cfg *m.RunConfig) (map[string]bool, error) {
	journalPath := filepath.Join(string(cfg.Output), journalName)

	if cfg.Resume {
		if _, err := os.Stat(journalPath); err == nil {
			return p.loadCompleted(journalPath, cfg.Extended)
		}

		// Nothing to resume from; fall through to a fresh run.
		slog.Info("no journal found, starting fresh run", "output", cfg.Output)
	}

	if err := p.store.Prepare(ctx, cfg.Output); err != nil {
		return nil, fmt.Errorf("prepare artifact directory: %w", err)
	}

	return map[string]bool{}, nil
}

func (p *pipeline) loadCompleted(journalPath string, extended bool) (map[string]bool, error) {
	journal, err := pkg.OpenJournal[m.Invocation](journalPath)
	if err != nil {
		return nil, fmt.Errorf("open invocation journal: %w", err)
	}

	defer func() { _ = journal.Close() }()

	done := map[string]bool{}

	err = journal.Range(func(_ uint64, invocation m.Invocation) error {
		if invocation.Status == m.Completed {
			done[invocation.Entry.ArtifactName(extended)] = true
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replay invocation journal: %w", err)
	}

	return done, nil
}

// saveSummary persists the run summary next to the artifacts. A summary
// write failure does not invalidate the artifacts themselves.
func (p *pipeline) saveSummary(ctx context.Context, cfg *m.RunConfig, summary *m.RunSummary) {
	data, err := yaml.Marshal(summary)
	if err != nil {
		slog.Error("failed to encode run summary", "error", err)
		return
	}

	if _, err := p.store.Write(ctx, cfg.Output, summaryName, data); err != nil {
		slog.Error("failed to write run summary", "error", err)
	}
}

func summarize(cfg *m.RunConfig, fingerprint string, units int, results []m.Invocation) *m.RunSummary {
	summary := &m.RunSummary{
		Target:      cfg.Target,
		Subdir:      cfg.Subdir,
		Fingerprint: fingerprint,
		Units:       units,
		Processed:   len(results),
	}

	for _, invocation := range results {
		switch invocation.Status {
		case m.Completed:
			summary.Completed++
		case m.SymbolNotFound:
			summary.NotFound++
		case m.Skipped:
			summary.Skipped++
		case m.EngineFailure:
			summary.Failed++
			summary.Failures = append(summary.Failures, m.FailureRecord{
				Symbol:     string(invocation.Entry.Symbol),
				Diagnostic: invocation.Diagnostic,
			})
		}
	}

	return summary
}

// applyCompileOverrides appends configured include paths and defines to
// every translation unit's recorded arguments.
func applyCompileOverrides(units []m.TranslationUnit, cfg *m.RunConfig) []m.TranslationUnit {
	if len(cfg.IncludePaths) == 0 && len(cfg.Defines) == 0 {
		return units
	}

	out := make([]m.TranslationUnit, len(units))

	for i, unit := range units {
		arguments := make([]string, 0, len(unit.Arguments)+len(cfg.IncludePaths)+len(cfg.Defines))
		arguments = append(arguments, unit.Arguments...)

		for _, include := range cfg.IncludePaths {
			arguments = append(arguments, "-I"+include)
		}

		for _, define := range cfg.Defines {
			arguments = append(arguments, "-D"+define)
		}

		out[i] = m.TranslationUnit{
			Source:    unit.Source,
			Directory: unit.Directory,
			Arguments: arguments,
		}
	}

	return out
}

// fingerprintUnits derives a stable 64-bit fingerprint of the resolved
// translation-unit set, recorded in the summary so downstream tooling can
// detect a changed build context between two runs.
func fingerprintUnits(units []m.TranslationUnit) string {
	hash, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		return ""
	}

	for _, unit := range units {
		_, _ = hash.Write([]byte(unit.Source))
		_, _ = hash.Write([]byte{0})

		for _, argument := range unit.Arguments {
			_, _ = hash.Write([]byte(argument))
			_, _ = hash.Write([]byte{0})
		}
	}

	return fmt.Sprintf("%016x", hash.Sum64())
}
