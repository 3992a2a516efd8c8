package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "argstate.dev/pkg/argstate/internal/model"
)

func newBufferedSimpleUI() (*SimpleUI, *bytes.Buffer) {
	var buf bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	return NewSimpleUI(cmd), &buf
}

func TestSimpleUI_DisplayInvocationStarted(t *testing.T) {
	ui, buf := newBufferedSimpleUI()

	ui.DisplayInvocationStarted(context.Background(), m.WorklistEntry{Symbol: "XML_Parse"})

	assert.Equal(t, "===> XML_Parse <===\n", buf.String())
}

func TestSimpleUI_DisplayInvocationCompleted(t *testing.T) {
	tests := []struct {
		name       string
		invocation m.Invocation
		want       string
	}{
		{
			name: "completed",
			invocation: m.Invocation{
				Entry:        m.WorklistEntry{Symbol: "a"},
				Status:       m.Completed,
				ArtifactPath: "/out/a.json",
			},
			want: "/out/a.json",
		},
		{
			name:       "not found",
			invocation: m.Invocation{Entry: m.WorklistEntry{Symbol: "b"}, Status: m.SymbolNotFound},
			want:       "not found",
		},
		{
			name:       "skipped",
			invocation: m.Invocation{Entry: m.WorklistEntry{Symbol: "c"}, Status: m.Skipped},
			want:       "skipped",
		},
		{
			name: "failed",
			invocation: m.Invocation{
				Entry:      m.WorklistEntry{Symbol: "d"},
				Status:     m.EngineFailure,
				Diagnostic: "parse error",
			},
			want: "parse error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui, buf := newBufferedSimpleUI()

			ui.DisplayInvocationCompleted(context.Background(), tt.invocation)

			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestSimpleUI_DisplayIndex(t *testing.T) {
	ui, buf := newBufferedSimpleUI()

	index := m.NewTranslationUnitIndex("/proj", map[m.Path][]m.TranslationUnit{
		"/proj/src": {{Source: "/proj/src/api.c"}, {Source: "/proj/src/core.c"}},
		"/proj/lib": {{Source: "/proj/lib/util.c"}},
	})

	require.NoError(t, ui.DisplayIndex(context.Background(), index))

	output := buf.String()
	assert.Contains(t, output, "/proj/src")
	assert.Contains(t, output, "/proj/lib")
	assert.Contains(t, output, "3")

	// Lexical key order: lib before src.
	assert.Less(t, strings.Index(output, "/proj/lib"), strings.Index(output, "/proj/src"))
}

func TestSimpleUI_DisplaySummary(t *testing.T) {
	ui, buf := newBufferedSimpleUI()

	summary := &m.RunSummary{
		Fingerprint: "00c0ffee00c0ffee",
		Processed:   3,
		Completed:   1,
		NotFound:    1,
		Failed:      1,
		Failures:    []m.FailureRecord{{Symbol: "bad", Diagnostic: "engine crashed"}},
	}

	require.NoError(t, ui.DisplaySummary(context.Background(), summary))

	output := buf.String()
	assert.Contains(t, output, "bad")
	assert.Contains(t, output, "engine crashed")
	assert.Contains(t, output, "00c0ffee00c0ffee")
}

func TestSimpleUI_RespectsCancelledContext(t *testing.T) {
	ui, buf := newBufferedSimpleUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.DisplayInvocationStarted(ctx, m.WorklistEntry{Symbol: "x"})
	assert.Empty(t, buf.String())
}
