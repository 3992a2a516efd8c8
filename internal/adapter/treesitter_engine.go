package adapter

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	m "argstate.dev/pkg/argstate/internal/model"
)

// TreeSitterEngine is the bundled AnalysisEngine implementation. It runs
// two passes over each translation unit: pass one finds every call site of
// the symbol and records literal arguments; pass two (extended mode only)
// takes the variable arguments found by pass one and derives their
// assignment state space before the call occurs.
type TreeSitterEngine struct{}

// NewTreeSitterEngine constructs a TreeSitterEngine.
func NewTreeSitterEngine() *TreeSitterEngine {
	return &TreeSitterEngine{}
}

// Analyze implements AnalysisEngine for C translation units.
func (e *TreeSitterEngine) Analyze(ctx context.Context, req AnalyzeRequest) (*m.ArgumentStates, error) {
	agg := newParamAggregator()
	states := &m.ArgumentStates{Symbol: req.Symbol}
	observed := false

	for _, unit := range req.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		src, err := os.ReadFile(string(unit.Source))
		if err != nil {
			return nil, fmt.Errorf("read translation unit %s: %w", unit.Source, err)
		}

		parser := sitter.NewParser()
		parser.SetLanguage(c.GetLanguage())

		tree, err := parser.ParseCtx(ctx, nil, src)
		if err != nil {
			return nil, fmt.Errorf("parse translation unit %s: %w", unit.Source, err)
		}

		root := tree.RootNode()

		if def := findFunctionDefinition(root, src, string(req.Symbol)); def != nil {
			observed = true

			states.DefinedIn = append(states.DefinedIn, unit.Source)
			agg.setNames(definitionParamNames(def, src))

			fmt.Fprintf(req.Diagnostics, "DEF> %s:%d %s\n",
				unit.Source, def.StartPoint().Row+1, req.Symbol)
		}

		for _, call := range findCallSites(root, src, string(req.Symbol)) {
			observed = true
			states.CallSites++

			e.recordCall(req, unit, src, call, agg)
		}
	}

	if !observed {
		return nil, m.ErrSymbolNotFound
	}

	states.Params = agg.params()

	return states, nil
}

func (e *TreeSitterEngine) recordCall(req AnalyzeRequest, unit m.TranslationUnit, src []byte, call *sitter.Node, agg *paramAggregator) {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)

		switch classifyArgument(arg, src) {
		case argLiteral:
			fmt.Fprintf(req.Diagnostics, "LIT> %s:%d %s\n",
				unit.Source, arg.StartPoint().Row+1, arg.Content(src))
			agg.observeState(i, arg.Content(src))

		case argDeclRef:
			fmt.Fprintf(req.Diagnostics, "REF> %s:%d %s\n",
				unit.Source, arg.StartPoint().Row+1, arg.Content(src))

			if req.Extended {
				resolveDeclRef(arg, call, src, i, agg)
			} else {
				agg.observeNondet(i)
			}

		case argCall:
			// A nested call like getchar() is a finite spelling the
			// downstream harness can replay verbatim.
			agg.observeState(i, arg.Content(src))

		default:
			agg.observeNondet(i)
		}
	}
}

type argKind int

const (
	argLiteral argKind = iota
	argDeclRef
	argCall
	argNondet
)

func classifyArgument(node *sitter.Node, src []byte) argKind {
	switch node.Type() {
	case "number_literal", "char_literal", "string_literal", "concatenated_string", "null":
		return argLiteral
	case "identifier":
		if node.Content(src) == "NULL" {
			return argLiteral
		}

		return argDeclRef
	case "call_expression":
		return argCall
	case "unary_expression":
		// Covers negative and complemented literals such as -1.
		operand := node.ChildByFieldName("argument")
		if operand != nil && classifyArgument(operand, src) == argLiteral {
			return argLiteral
		}

		return argNondet
	case "cast_expression":
		value := node.ChildByFieldName("value")
		if value != nil && classifyArgument(value, src) == argLiteral {
			return argLiteral
		}

		return argNondet
	}

	return argNondet
}

// resolveDeclRef records every assignment to the referenced variable that
// occurs inside the enclosing function before the call site. Assignments
// the engine cannot reduce to a literal mark the parameter nondet.
func resolveDeclRef(arg, call *sitter.Node, src []byte, position int, agg *paramAggregator) {
	name := arg.Content(src)

	enclosing := enclosingFunction(call)
	if enclosing == nil {
		agg.observeNondet(position)

		return
	}

	resolved := false

	walk(enclosing, func(node *sitter.Node) bool {
		if node.StartByte() >= call.StartByte() {
			return false
		}

		switch node.Type() {
		case "init_declarator":
			decl := node.ChildByFieldName("declarator")
			value := node.ChildByFieldName("value")

			if decl != nil && value != nil && declaratorName(decl, src) == name {
				resolved = recordAssignedValue(value, src, position, agg) || resolved
			}
		case "assignment_expression":
			left := node.ChildByFieldName("left")
			right := node.ChildByFieldName("right")

			if left != nil && right != nil && left.Type() == "identifier" && left.Content(src) == name {
				resolved = recordAssignedValue(right, src, position, agg) || resolved
			}
		}

		return true
	})

	if !resolved {
		agg.observeNondet(position)
	}
}

func recordAssignedValue(value *sitter.Node, src []byte, position int, agg *paramAggregator) bool {
	if classifyArgument(value, src) == argLiteral {
		agg.observeState(position, value.Content(src))

		return true
	}

	agg.observeNondet(position)

	return true
}

func enclosingFunction(node *sitter.Node) *sitter.Node {
	for cursor := node.Parent(); cursor != nil; cursor = cursor.Parent() {
		if cursor.Type() == "function_definition" {
			return cursor
		}
	}

	return nil
}

// findFunctionDefinition returns the definition of the named function in
// the parsed file, or nil.
func findFunctionDefinition(root *sitter.Node, src []byte, name string) *sitter.Node {
	var found *sitter.Node

	walk(root, func(node *sitter.Node) bool {
		if found != nil {
			return false
		}

		if node.Type() != "function_definition" {
			return true
		}

		declarator := node.ChildByFieldName("declarator")
		if declarator != nil && declaratorName(declarator, src) == name {
			found = node
		}

		return false
	})

	return found
}

// findCallSites returns every call expression whose callee identifier is
// the named function, in source order.
func findCallSites(root *sitter.Node, src []byte, name string) []*sitter.Node {
	var calls []*sitter.Node

	walk(root, func(node *sitter.Node) bool {
		if node.Type() != "call_expression" {
			return true
		}

		callee := node.ChildByFieldName("function")
		if callee != nil && callee.Type() == "identifier" && callee.Content(src) == name {
			calls = append(calls, node)
		}

		return true
	})

	return calls
}

// declaratorName digs through pointer and function declarators to the
// underlying identifier.
func declaratorName(declarator *sitter.Node, src []byte) string {
	for declarator != nil {
		switch declarator.Type() {
		case "identifier", "field_identifier":
			return declarator.Content(src)
		case "function_declarator", "pointer_declarator", "parenthesized_declarator", "array_declarator":
			declarator = declarator.ChildByFieldName("declarator")
		default:
			return ""
		}
	}

	return ""
}

// definitionParamNames extracts the parameter names of a function
// definition in declaration order.
func definitionParamNames(def *sitter.Node, src []byte) []string {
	declarator := def.ChildByFieldName("declarator")
	for declarator != nil && declarator.Type() != "function_declarator" {
		declarator = declarator.ChildByFieldName("declarator")
	}

	if declarator == nil {
		return nil
	}

	parameters := declarator.ChildByFieldName("parameters")
	if parameters == nil {
		return nil
	}

	var names []string

	for i := 0; i < int(parameters.NamedChildCount()); i++ {
		param := parameters.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}

		name := declaratorName(param.ChildByFieldName("declarator"), src)
		names = append(names, name)
	}

	return names
}

// walk visits node and, when fn returns true, its named children.
func walk(node *sitter.Node, fn func(*sitter.Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		walk(node.NamedChild(i), fn)
	}
}

// paramAggregator merges per-call observations into per-parameter state
// spaces, keyed by argument position because the artifact must follow call
// order.
type paramAggregator struct {
	names  []string
	states []map[string]int // state -> first-seen order
	order  [][]string
	nondet []bool
}

func newParamAggregator() *paramAggregator {
	return &paramAggregator{}
}

func (a *paramAggregator) setNames(names []string) {
	if len(names) > len(a.names) {
		a.names = names
	}
}

func (a *paramAggregator) grow(position int) {
	for len(a.states) <= position {
		a.states = append(a.states, map[string]int{})
		a.order = append(a.order, nil)
		a.nondet = append(a.nondet, false)
	}
}

func (a *paramAggregator) observeState(position int, state string) {
	a.grow(position)

	if _, seen := a.states[position][state]; seen {
		return
	}

	a.states[position][state] = len(a.order[position])
	a.order[position] = append(a.order[position], state)
}

func (a *paramAggregator) observeNondet(position int) {
	a.grow(position)
	a.nondet[position] = true
}

func (a *paramAggregator) params() []m.ParamState {
	params := make([]m.ParamState, len(a.order))

	for i := range a.order {
		name := ""
		if i < len(a.names) {
			name = a.names[i]
		}

		if name == "" {
			name = fmt.Sprintf("param%d", i+1)
		}

		params[i] = m.ParamState{
			Name:   name,
			States: a.order[i],
			Nondet: a.nondet[i],
		}
	}

	return params
}
