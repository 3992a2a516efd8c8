package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"

	m "argstate.dev/pkg/argstate/internal/model"
)

// WorklistLoader reads the ordered change-set of symbols to analyze.
type WorklistLoader interface {
	Load(ctx context.Context, path m.Path) ([]m.WorklistEntry, error)
}

// FileWorklistLoader loads a plain-text worklist, one symbol per line.
type FileWorklistLoader struct {
	fs afs.Service
}

// NewFileWorklistLoader constructs a FileWorklistLoader backed by the local
// filesystem.
func NewFileWorklistLoader() *FileWorklistLoader {
	return &FileWorklistLoader{fs: afs.New()}
}

// Load reads the worklist preserving file order and duplicate entries. Only
// the record separator is trimmed; interior and leading whitespace belong
// to the symbol spelling. An empty source yields an empty worklist.
func (l *FileWorklistLoader) Load(ctx context.Context, path m.Path) ([]m.WorklistEntry, error) {
	data, err := l.fs.DownloadWithURL(ctx, string(path))
	if err != nil {
		return nil, fmt.Errorf("read symbol list %s: %w", path, err)
	}

	var entries []m.WorklistEntry

	occurrences := map[m.Symbol]int{}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		symbol := m.Symbol(line)
		occurrences[symbol]++

		entries = append(entries, m.WorklistEntry{
			Symbol:     symbol,
			Seq:        len(entries),
			Occurrence: occurrences[symbol],
		})
	}

	return entries, nil
}
