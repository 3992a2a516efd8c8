package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "argstate.dev/pkg/argstate/internal/model"
)

func TestCompileCommand_Args(t *testing.T) {
	tests := []struct {
		name    string
		command CompileCommand
		want    []string
	}{
		{
			name:    "arguments form",
			command: CompileCommand{Arguments: []string{"cc", "-O2", "-c", "api.c"}},
			want:    []string{"cc", "-O2", "-c", "api.c"},
		},
		{
			name:    "command form",
			command: CompileCommand{Command: "cc -O2 -c api.c"},
			want:    []string{"cc", "-O2", "-c", "api.c"},
		},
		{
			name:    "command form with quoted define",
			command: CompileCommand{Command: `cc -DVERSION="1 2" -c api.c`},
			want:    []string{"cc", "-DVERSION=1 2", "-c", "api.c"},
		},
		{
			name:    "command form with single quotes and tabs",
			command: CompileCommand{Command: "cc\t-I'/opt/my include'  -c api.c"},
			want:    []string{"cc", "-I/opt/my include", "-c", "api.c"},
		},
		{
			name:    "arguments form wins over command",
			command: CompileCommand{Command: "ignored", Arguments: []string{"cc"}},
			want:    []string{"cc"},
		},
		{
			name:    "command form with escaped quotes",
			command: CompileCommand{Command: `cc -DVERSION=\"1.2\" -c api.c`},
			want:    []string{"cc", `-DVERSION="1.2"`, "-c", "api.c"},
		},
		{
			name:    "command form with escaped space",
			command: CompileCommand{Command: `cc -I/opt/my\ include -c api.c`},
			want:    []string{"cc", "-I/opt/my include", "-c", "api.c"},
		},
		{
			name:    "escaped quote inside double quotes",
			command: CompileCommand{Command: `cc "-DMSG=\"hi there\"" -c api.c`},
			want:    []string{"cc", `-DMSG="hi there"`, "-c", "api.c"},
		},
		{
			name:    "backslash literal inside single quotes",
			command: CompileCommand{Command: `cc '-DSEP=\n' -c api.c`},
			want:    []string{"cc", `-DSEP=\n`, "-c", "api.c"},
		},
		{
			name:    "plain backslash survives inside double quotes",
			command: CompileCommand{Command: `cc "-DDIR=c:\tmp" -c api.c`},
			want:    []string{"cc", `-DDIR=c:\tmp`, "-c", "api.c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.command.Args())
		})
	}
}

func TestCompileCommand_SourcePath(t *testing.T) {
	relative := CompileCommand{Directory: "/proj/build", File: "../src/api.c"}
	assert.Equal(t, m.Path("/proj/src/api.c"), relative.SourcePath())

	absolute := CompileCommand{Directory: "/proj/build", File: "/proj/src/api.c"}
	assert.Equal(t, m.Path("/proj/src/api.c"), absolute.SourcePath())
}

func writeCompileDB(t *testing.T, dir, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, compileDBName), []byte(content), 0o644))
}

func TestLocalCompileDB_Load(t *testing.T) {
	root := t.TempDir()
	writeCompileDB(t, root, `[
		{"directory": "/proj", "file": "src/api.c", "command": "cc -c src/api.c"},
		{"directory": "/proj", "file": "src/core.c", "arguments": ["cc", "-c", "src/core.c"]}
	]`)

	commands, err := NewLocalCompileDB().Load(context.Background(), m.Path(root))
	require.NoError(t, err)
	require.Len(t, commands, 2)

	assert.Equal(t, m.Path("/proj/src/api.c"), commands[0].SourcePath())
	assert.Equal(t, []string{"cc", "-c", "src/core.c"}, commands[1].Args())
}

func TestLocalCompileDB_Load_DiscoversBuildSubdir(t *testing.T) {
	root := t.TempDir()
	writeCompileDB(t, filepath.Join(root, "build"), `[]`)

	commands, err := NewLocalCompileDB().Load(context.Background(), m.Path(root))
	require.NoError(t, err)
	assert.Empty(t, commands)
}

func TestLocalCompileDB_Load_NotFound(t *testing.T) {
	_, err := NewLocalCompileDB().Load(context.Background(), m.Path(t.TempDir()))
	require.Error(t, err)
	assert.ErrorIs(t, err, m.ErrCompileDBNotFound)
}

func TestLocalCompileDB_Load_Malformed(t *testing.T) {
	root := t.TempDir()
	writeCompileDB(t, root, `{not json`)

	_, err := NewLocalCompileDB().Load(context.Background(), m.Path(root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
