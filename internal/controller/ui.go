// Package controller provides output frontends for pipeline progress and
// results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "argstate.dev/pkg/argstate/internal/model"
)

// UI is the display surface the pipeline reports through. Implementations
// must tolerate concurrent DisplayInvocation* calls from pool workers.
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	DisplayRunInfo(ctx context.Context, cfg *m.RunConfig, units, symbols int)
	DisplayInvocationStarted(ctx context.Context, entry m.WorklistEntry)
	DisplayInvocationCompleted(ctx context.Context, invocation m.Invocation)
	DisplayIndex(ctx context.Context, index *m.TranslationUnitIndex) error
	DisplaySummary(ctx context.Context, summary *m.RunSummary) error
}

// NewUI selects the interactive TUI on a terminal and the plain frontend
// everywhere else (pipes, CI).
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
