package controller

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "argstate.dev/pkg/argstate/internal/model"
)

// SimpleUI implements UI using the cobra command's output stream. It is
// the non-interactive frontend used on pipes and in CI.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI (no-op for SimpleUI).
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayRunInfo prints the run parameters.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, cfg *m.RunConfig, units, symbols int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Analyzing %d symbol(s) against %d translation unit(s) under %s with %d worker(s)\n",
		symbols, units, cfg.Subdir, cfg.EffectiveThreads())
}

// DisplayInvocationStarted announces one symbol invocation.
func (s *SimpleUI) DisplayInvocationStarted(ctx context.Context, entry m.WorklistEntry) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("===> %s <===\n", entry.Symbol)
}

// DisplayInvocationCompleted prints one invocation outcome.
func (s *SimpleUI) DisplayInvocationCompleted(ctx context.Context, invocation m.Invocation) {
	if err := ctx.Err(); err != nil {
		return
	}

	switch invocation.Status {
	case m.Completed:
		s.printf("  ✓ %s -> %s\n", invocation.Entry.Symbol, invocation.ArtifactPath)
	case m.SymbolNotFound:
		s.printf("  - %s not found in translation-unit set\n", invocation.Entry.Symbol)
	case m.Skipped:
		s.printf("  = %s already completed, skipped\n", invocation.Entry.Symbol)
	case m.EngineFailure:
		s.printf("  ✗ %s failed: %s\n", invocation.Entry.Symbol, invocation.Diagnostic)
	}
}

// DisplayIndex renders the translation-unit index as a table.
func (s *SimpleUI) DisplayIndex(ctx context.Context, index *m.TranslationUnitIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Sub-directory", "Translation Units"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, subdir := range index.Subdirectories() {
		units, err := index.Lookup(subdir)
		if err != nil {
			return err
		}

		table.Append([]string{string(subdir), fmt.Sprintf("%d", len(units))})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", index.Len())})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

// DisplaySummary renders the post-run summary, including the failure list
// mandated by the fail-soft policy.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary *m.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Processed", "Completed", "Not Found", "Failed", "Skipped"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.Append([]string{
		fmt.Sprintf("%d", summary.Processed),
		fmt.Sprintf("%d", summary.Completed),
		fmt.Sprintf("%d", summary.NotFound),
		fmt.Sprintf("%d", summary.Failed),
		fmt.Sprintf("%d", summary.Skipped),
	})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	for _, failure := range summary.Failures {
		s.printf("  ✗ %s: %s\n", failure.Symbol, failure.Diagnostic)
	}

	s.printf("TU fingerprint: %s\n", summary.Fingerprint)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
