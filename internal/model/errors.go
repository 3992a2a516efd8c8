package model

import "errors"

// Fatal, abort-class errors. These stop a run before any symbol is
// processed. Per-symbol outcomes are carried in Invocation records instead.
var (
	// ErrConfigInvalid marks an unusable run configuration.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrCompileDBNotFound marks a build context with no discoverable
	// compile database; no partial index is usable.
	ErrCompileDBNotFound = errors.New("compile database not found")

	// ErrUnknownSubdirectory marks a lookup for a sub-directory the index
	// has no bucket for, distinct from a present-but-empty bucket.
	ErrUnknownSubdirectory = errors.New("sub-directory not present in translation-unit index")

	// ErrArtifactDirUnwritable marks an artifact directory that could not
	// be created or purged.
	ErrArtifactDirUnwritable = errors.New("artifact directory unwritable")
)

// ErrSymbolNotFound is returned by the analysis engine when no translation
// unit in the set defines or references the symbol.
var ErrSymbolNotFound = errors.New("symbol not defined or referenced in translation-unit set")
