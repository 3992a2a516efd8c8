// Package pkg provides reusable utilities for argstate.
package pkg

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Journal is a generic append-only record log. The pipeline journals one
// record per invocation so an interrupted run can be resumed without
// re-analyzing completed symbols.
type Journal[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(f func(index uint64, item T) error) error
	Close() error
}

type journalImpl[T any] struct {
	path   string
	file   *os.File
	mu     sync.Mutex
	length uint64
}

// OpenJournal opens (or creates) the journal at path and counts the
// records already present. Records are JSON lines: unlike a gob stream, a
// line-oriented encoding survives being appended to by a later process.
func OpenJournal[T any](path string) (Journal[T], error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	j := &journalImpl[T]{path: path, file: file}

	if err := j.Range(func(uint64, T) error { return nil }); err != nil {
		_ = file.Close()

		return nil, err
	}

	return j, nil
}

// Append implements Journal.
func (j *journalImpl[T]) Append(item T) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	line, err := json.Marshal(item)
	if err != nil {
		slog.Error("failed to encode journal record", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("encode journal record: %w", err)
	}

	line = append(line, '\n')

	if _, err := j.file.Write(line); err != nil {
		slog.Error("failed to append journal record", "path", j.path, "index", j.length, "error", err)
		return fmt.Errorf("append journal record: %w", err)
	}

	j.length++
	slog.Debug("journaled record", "path", j.path, "index", j.length-1)

	return nil
}

// Range implements Journal. It re-reads the file from the start, updating
// the cached length, and stops at the first malformed trailing line (a
// record cut short by a crash).
func (j *journalImpl[T]) Range(f func(index uint64, item T) error) error {
	reader, err := os.Open(j.path)
	if err != nil {
		return fmt.Errorf("read journal %s: %w", j.path, err)
	}

	defer func() { _ = reader.Close() }()

	var index uint64

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		var item T
		if err := json.Unmarshal(scanner.Bytes(), &item); err != nil {
			slog.Warn("truncated journal record ignored", "path", j.path, "index", index)
			break
		}

		if err := f(index, item); err != nil {
			return err
		}

		index++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan journal %s: %w", j.path, err)
	}

	j.mu.Lock()
	if index > j.length {
		j.length = index
	}
	j.mu.Unlock()

	return nil
}

// Len implements Journal.
func (j *journalImpl[T]) Len() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.length
}

// Path implements Journal.
func (j *journalImpl[T]) Path() string {
	return j.path
}

// Close implements Journal.
func (j *journalImpl[T]) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.file.Close()
}
