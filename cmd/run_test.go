package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainmocks "argstate.dev/pkg/argstate/internal/domain/mocks"
	m "argstate.dev/pkg/argstate/internal/model"
)

func newTestRoot() *cobra.Command {
	cmd := baseRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd
}

func TestRunCmd_BuildsConfigFromFlags(t *testing.T) {
	mockPipeline := domainmocks.NewMockPipeline(t)

	cmd := newTestRoot()
	cmd.AddCommand(newRunCmd())

	originalPipeline := pipeline
	pipeline = mockPipeline
	defer func() { pipeline = originalPipeline }()

	mockPipeline.On("Run", mock.Anything, mock.MatchedBy(func(cfg *m.RunConfig) bool {
		return cfg.Target == m.Path("/proj") &&
			cfg.Subdir == m.Path("/proj/src") &&
			cfg.SymbolList == m.Path("symbols.txt") &&
			cfg.Output == m.Path(".argstate") &&
			cfg.Threads == 3
	})).Return(&m.RunSummary{}, nil)

	cmd.SetArgs([]string{"run", "--target", "/proj", "--subdir", "/proj/src", "--symbols", "symbols.txt", "--parallel", "3"})
	err := cmd.Execute()
	require.NoError(t, err)

	mockPipeline.AssertExpectations(t)
}

func TestRunCmd_ExtendedAndResumeFlags(t *testing.T) {
	mockPipeline := domainmocks.NewMockPipeline(t)

	cmd := newTestRoot()
	cmd.AddCommand(newRunCmd())

	originalPipeline := pipeline
	pipeline = mockPipeline
	defer func() { pipeline = originalPipeline }()

	mockPipeline.On("Run", mock.Anything, mock.MatchedBy(func(cfg *m.RunConfig) bool {
		return cfg.Extended && cfg.Resume
	})).Return(&m.RunSummary{}, nil)

	cmd.SetArgs([]string{"run", "--subdir", "src", "--symbols", "s.txt", "--extended", "--resume"})
	err := cmd.Execute()
	require.NoError(t, err)

	mockPipeline.AssertExpectations(t)
}

func TestRunCmd_CompileOverrides(t *testing.T) {
	mockPipeline := domainmocks.NewMockPipeline(t)

	cmd := newTestRoot()
	cmd.AddCommand(newRunCmd())

	originalPipeline := pipeline
	pipeline = mockPipeline
	defer func() { pipeline = originalPipeline }()

	mockPipeline.On("Run", mock.Anything, mock.MatchedBy(func(cfg *m.RunConfig) bool {
		return len(cfg.IncludePaths) == 2 &&
			cfg.IncludePaths[0] == "/opt/include" &&
			cfg.IncludePaths[1] == "vendor" &&
			len(cfg.Defines) == 1 &&
			cfg.Defines[0] == "NDEBUG"
	})).Return(&m.RunSummary{}, nil)

	cmd.SetArgs([]string{
		"run", "--subdir", "src", "--symbols", "s.txt",
		"-I", "/opt/include", "-I", "vendor", "-D", "NDEBUG",
	})
	err := cmd.Execute()
	require.NoError(t, err)

	mockPipeline.AssertExpectations(t)
}

func TestRunCmd_PhaseErrorSurfaces(t *testing.T) {
	mockPipeline := domainmocks.NewMockPipeline(t)

	cmd := newTestRoot()
	cmd.AddCommand(newRunCmd())

	originalPipeline := pipeline
	pipeline = mockPipeline
	defer func() { pipeline = originalPipeline }()

	mockPipeline.On("Run", mock.Anything, mock.Anything).Return(nil, m.ErrUnknownSubdirectory)

	cmd.SetArgs([]string{"run", "--subdir", "nope", "--symbols", "s.txt"})
	err := cmd.Execute()
	assert.ErrorIs(t, err, m.ErrUnknownSubdirectory)
}

func TestRunCmd_RequiresSubdirAndSymbols(t *testing.T) {
	cmd := newTestRoot()
	cmd.AddCommand(newRunCmd())

	cmd.SetArgs([]string{"run"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestNewRunCmd(t *testing.T) {
	cmd := newRunCmd()

	assert.Equal(t, "run", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, runLongDescription, cmd.Long)

	for _, name := range []string{"target", "build-context", "subdir", "symbols", "parallel", "timeout", "include", "define", "extended", "resume"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %s", name)
	}
}
