package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/viant/afs"

	m "argstate.dev/pkg/argstate/internal/model"
)

// ArtifactStore owns the artifact output directory lifecycle. Prepare is
// called exactly once per run; Write may be called concurrently for
// distinct artifact names.
type ArtifactStore interface {
	// Prepare creates dir (and missing ancestors) and removes every regular
	// file directly inside it. Sub-directories are left untouched.
	Prepare(ctx context.Context, dir m.Path) error

	// Write persists one artifact under dir atomically: the content lands
	// under its final name only after a complete write.
	Write(ctx context.Context, dir m.Path, name string, data []byte) (m.Path, error)
}

// LocalArtifactStore implements ArtifactStore on the local filesystem.
type LocalArtifactStore struct {
	fs afs.Service
}

// NewLocalArtifactStore constructs a LocalArtifactStore.
func NewLocalArtifactStore() *LocalArtifactStore {
	return &LocalArtifactStore{fs: afs.New()}
}

// Prepare purges stale regular files so a run never mixes artifacts from a
// previous run with the current one.
func (s *LocalArtifactStore) Prepare(ctx context.Context, dir m.Path) error {
	exists, err := s.fs.Exists(ctx, string(dir))
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", m.ErrArtifactDirUnwritable, dir, err)
	}

	if !exists {
		if err := s.fs.Create(ctx, string(dir), 0o755, true); err != nil {
			return fmt.Errorf("%w: create %s: %v", m.ErrArtifactDirUnwritable, dir, err)
		}

		return nil
	}

	info, err := os.Stat(string(dir))
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", m.ErrArtifactDirUnwritable, dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", m.ErrArtifactDirUnwritable, dir)
	}

	objects, err := s.fs.List(ctx, string(dir))
	if err != nil {
		return fmt.Errorf("%w: list %s: %v", m.ErrArtifactDirUnwritable, dir, err)
	}

	for _, object := range objects {
		if object.IsDir() {
			continue
		}

		if err := s.fs.Delete(ctx, object.URL()); err != nil {
			return fmt.Errorf("%w: purge %s: %v", m.ErrArtifactDirUnwritable, object.URL(), err)
		}
	}

	return nil
}

// Write stages the artifact under a temporary name and renames it into
// place, so a cancelled invocation never leaves a half-written artifact
// under its final name.
func (s *LocalArtifactStore) Write(ctx context.Context, dir m.Path, name string, data []byte) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(string(dir), "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage artifact %s: %w", name, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}

	final := filepath.Join(string(dir), name)
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)

		return "", fmt.Errorf("publish artifact %s: %w", name, err)
	}

	return m.Path(final), nil
}
