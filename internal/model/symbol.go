package model

import "fmt"

// Symbol is an exported function name drawn from the change-set worklist.
type Symbol string

// WorklistEntry is one position in the symbol worklist. Seq is the zero
// based position in file order; Occurrence counts how many times the same
// symbol appeared up to and including this entry, so repeated symbols get
// distinct artifact names.
type WorklistEntry struct {
	Symbol     Symbol
	Seq        int
	Occurrence int
}

// ArtifactName derives the deterministic artifact file name for this entry.
// The extended analysis variant carries the "_setx" suffix so it never
// collides with the default-mode artifact for the same symbol.
func (e WorklistEntry) ArtifactName(extended bool) string {
	name := string(e.Symbol)
	if e.Occurrence > 1 {
		name = fmt.Sprintf("%s.%d", name, e.Occurrence)
	}

	if extended {
		name += "_setx"
	}

	return name + ".json"
}
