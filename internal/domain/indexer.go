// Package domain implements the argument-state extraction pipeline.
package domain

import (
	"context"
	"fmt"
	"path/filepath"

	"argstate.dev/pkg/argstate/internal/adapter"
	m "argstate.dev/pkg/argstate/internal/model"
)

// Indexer builds the translation-unit index for a target tree from its
// build metadata.
type Indexer interface {
	BuildIndex(ctx context.Context, target, buildContext m.Path) (*m.TranslationUnitIndex, error)
}

type indexer struct {
	db adapter.CompileDB
}

// NewIndexer constructs an Indexer backed by the provided compile database
// reader.
func NewIndexer(db adapter.CompileDB) Indexer {
	return &indexer{db: db}
}

// BuildIndex groups every compile command under the directory of its source
// file. Each translation unit lands in exactly one bucket; ordering inside
// buckets and across keys is fixed by the index constructor so artifact
// generation order is reproducible.
func (i *indexer) BuildIndex(ctx context.Context, target, buildContext m.Path) (*m.TranslationUnitIndex, error) {
	commands, err := i.db.Load(ctx, buildContext)
	if err != nil {
		return nil, fmt.Errorf("load build metadata: %w", err)
	}

	buckets := map[m.Path][]m.TranslationUnit{}

	for _, command := range commands {
		source := command.SourcePath()
		subdir := m.Path(filepath.Dir(string(source)))

		buckets[subdir] = append(buckets[subdir], m.TranslationUnit{
			Source:    source,
			Directory: m.Path(command.Directory),
			Arguments: command.Args(),
		})
	}

	return m.NewTranslationUnitIndex(target, buckets), nil
}
