// Package model defines the data structures for the argument-state pipeline.
package model

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Path represents a file system path.
type Path string

// TranslationUnit is one compiled source file together with the compile
// arguments recorded for it in the build metadata. Never mutated after
// construction.
type TranslationUnit struct {
	Source    Path     // absolute path of the compiled source file
	Directory Path     // working directory of the compile command
	Arguments []string // compiler arguments exactly as recorded
}

// TranslationUnitIndex maps a normalized absolute sub-directory of the
// target tree to the ordered set of translation units whose source file
// lives directly under it. Built once per run, read-only afterwards.
type TranslationUnitIndex struct {
	target  Path
	buckets map[Path][]TranslationUnit
	keys    []Path
}

// NewTranslationUnitIndex builds an index from per-subdirectory buckets.
// Keys and bucket contents are sorted lexically so that two builds from the
// same build metadata produce identical iteration order.
func NewTranslationUnitIndex(target Path, buckets map[Path][]TranslationUnit) *TranslationUnitIndex {
	normalized := make(map[Path][]TranslationUnit, len(buckets))
	keys := make([]Path, 0, len(buckets))

	for key, tus := range buckets {
		cleanKey := Path(filepath.Clean(string(key)))

		units := make([]TranslationUnit, len(tus))
		copy(units, tus)
		sort.Slice(units, func(i, j int) bool {
			return units[i].Source < units[j].Source
		})

		normalized[cleanKey] = units
		keys = append(keys, cleanKey)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return &TranslationUnitIndex{
		target:  Path(filepath.Clean(string(target))),
		buckets: normalized,
		keys:    keys,
	}
}

// Target returns the root of the analyzed source tree.
func (idx *TranslationUnitIndex) Target() Path {
	return idx.target
}

// Subdirectories returns the index keys in lexical order.
func (idx *TranslationUnitIndex) Subdirectories() []Path {
	keys := make([]Path, len(idx.keys))
	copy(keys, idx.keys)

	return keys
}

// Lookup returns the translation units bucketed under subdir. A missing key
// is a typed error; a present key with zero translation units is a valid
// empty result.
func (idx *TranslationUnitIndex) Lookup(subdir Path) ([]TranslationUnit, error) {
	key := Path(filepath.Clean(string(subdir)))

	units, ok := idx.buckets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubdirectory, key)
	}

	out := make([]TranslationUnit, len(units))
	copy(out, units)

	return out, nil
}

// Len returns the total number of translation units across all buckets.
func (idx *TranslationUnitIndex) Len() int {
	total := 0
	for _, units := range idx.buckets {
		total += len(units)
	}

	return total
}
