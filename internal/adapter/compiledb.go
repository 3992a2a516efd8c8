// Package adapter contains infrastructure adapters for the argstate CLI.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	m "argstate.dev/pkg/argstate/internal/model"
)

// compileDBName is the file name mandated by the JSON compilation database
// format specification.
const compileDBName = "compile_commands.json"

// compileDBSearchDirs lists the sub-directories probed under the build
// context, in order, when the database is not at the root.
var compileDBSearchDirs = []string{".", "build", "out"}

// CompileCommand is one entry of a JSON compilation database. Exactly one
// of Command and Arguments is populated by real generators.
type CompileCommand struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
}

// Args returns the compile arguments regardless of which database form the
// generator emitted.
func (c CompileCommand) Args() []string {
	if len(c.Arguments) > 0 {
		out := make([]string, len(c.Arguments))
		copy(out, c.Arguments)

		return out
	}

	return splitCommand(c.Command)
}

// SourcePath resolves the absolute path of the compiled file.
func (c CompileCommand) SourcePath() m.Path {
	if filepath.IsAbs(c.File) {
		return m.Path(filepath.Clean(c.File))
	}

	return m.Path(filepath.Clean(filepath.Join(c.Directory, c.File)))
}

// CompileDB loads compile-command metadata for a build context. The indexer
// treats absence as fatal: no partial index is usable.
type CompileDB interface {
	Load(ctx context.Context, buildContext m.Path) ([]CompileCommand, error)
}

// LocalCompileDB reads compile_commands.json from the local filesystem.
type LocalCompileDB struct{}

// NewLocalCompileDB constructs a LocalCompileDB.
func NewLocalCompileDB() *LocalCompileDB {
	return &LocalCompileDB{}
}

// Load discovers and parses the compile database under buildContext.
func (db *LocalCompileDB) Load(ctx context.Context, buildContext m.Path) ([]CompileCommand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := db.discover(buildContext)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var commands []CompileCommand
	if err := json.Unmarshal(data, &commands); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return commands, nil
}

func (db *LocalCompileDB) discover(buildContext m.Path) (string, error) {
	for _, dir := range compileDBSearchDirs {
		candidate := filepath.Join(string(buildContext), dir, compileDBName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: under %s", m.ErrCompileDBNotFound, buildContext)
}

// splitCommand tokenizes a shell command line the way compile-database
// generators quote it: whitespace separated, single and double quoted
// segments kept intact, backslash escaping the next character. Inside
// single quotes a backslash is literal; inside double quotes it only
// escapes the characters the shell lets it escape there.
func splitCommand(command string) []string {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
	)

	runes := []rune(command)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case quote == '"':
			switch {
			case r == '\\' && i+1 < len(runes) && dquoteEscapable(runes[i+1]):
				current.WriteRune(runes[i+1])
				i++
			case r == '"':
				quote = 0
			default:
				current.WriteRune(r)
			}
		case r == '\\' && i+1 < len(runes):
			current.WriteRune(runes[i+1])
			i++

			inArg = true
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()

				inArg = false
			}
		default:
			current.WriteRune(r)

			inArg = true
		}
	}

	if inArg {
		args = append(args, current.String())
	}

	return args
}

func dquoteEscapable(r rune) bool {
	return r == '"' || r == '\\' || r == '$' || r == '`'
}
