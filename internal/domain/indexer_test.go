package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argstate.dev/pkg/argstate/internal/adapter"
	m "argstate.dev/pkg/argstate/internal/model"
)

type stubCompileDB struct {
	commands []adapter.CompileCommand
	err      error
}

func (db *stubCompileDB) Load(context.Context, m.Path) ([]adapter.CompileCommand, error) {
	return db.commands, db.err
}

func TestIndexer_BuildIndex_BucketsBySourceDirectory(t *testing.T) {
	db := &stubCompileDB{commands: []adapter.CompileCommand{
		{Directory: "/proj", File: "src/zutil.c", Command: "cc -c src/zutil.c"},
		{Directory: "/proj", File: "src/api.c", Command: "cc -c src/api.c"},
		{Directory: "/proj", File: "/proj/lib/util.c", Arguments: []string{"cc", "-c", "util.c"}},
	}}

	index, err := NewIndexer(db).BuildIndex(context.Background(), "/proj", "/proj")
	require.NoError(t, err)

	assert.Equal(t, []m.Path{"/proj/lib", "/proj/src"}, index.Subdirectories())
	assert.Equal(t, 3, index.Len())

	units, err := index.Lookup("/proj/src")
	require.NoError(t, err)
	require.Len(t, units, 2)

	// Deterministic order inside the bucket regardless of database order.
	assert.Equal(t, m.Path("/proj/src/api.c"), units[0].Source)
	assert.Equal(t, m.Path("/proj/src/zutil.c"), units[1].Source)
	assert.Equal(t, []string{"cc", "-c", "src/api.c"}, units[0].Arguments)
}

func TestIndexer_BuildIndex_PropagatesLoadError(t *testing.T) {
	db := &stubCompileDB{err: m.ErrCompileDBNotFound}

	_, err := NewIndexer(db).BuildIndex(context.Background(), "/proj", "/proj")
	require.Error(t, err)
	assert.ErrorIs(t, err, m.ErrCompileDBNotFound)
	assert.Contains(t, err.Error(), "load build metadata")
}
