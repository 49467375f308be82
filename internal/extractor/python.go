package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// ErrParse marks a file whose syntax tree could not be built. The caller
// receives a stub extraction alongside this error and must treat the
// failure as a per-file warning, never as a run-level abort.
var ErrParse = errors.New("extractor: parse failure")

// Extractor parses Python source files and emits their structural model:
// one file record, type definitions, callable units, and unresolved
// relationship stubs.
type Extractor struct {
	language   *sitter.Language
	thresholds Thresholds
}

// NewPython creates an extractor backed by the tree-sitter Python grammar.
func NewPython(thresholds Thresholds) *Extractor {
	return &Extractor{
		language:   sitter.NewLanguage(python.Language()),
		thresholds: thresholds,
	}
}

// ExtractFile parses one file and walks its syntax tree.
//
// On parse failure (including a context deadline hit) it returns a minimal
// extraction carrying only the stub file record, together with an error
// wrapping ErrParse. It never returns a nil extraction.
func (e *Extractor) ExtractFile(ctx context.Context, path string, source []byte) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return &Extraction{File: StubFile(path)}, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(e.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return &Extraction{File: StubFile(path)}, fmt.Errorf("%w: %s", ErrParse, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return &Extraction{File: StubFile(path)}, fmt.Errorf("%w: %s: syntax error", ErrParse, path)
	}
	if err := ctx.Err(); err != nil {
		return &Extraction{File: StubFile(path)}, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	ext := &Extraction{File: StubFile(path)}
	e.extractStructure(root, source, ext)

	fileScore := fileComplexity(root)
	ext.File.LineCount = strings.Count(string(source), "\n") + 1
	ext.File.ComplexityScore = fileScore
	ext.File.ComplexityLevel = e.thresholds.Level(fileScore)
	ext.File.TypeCount = len(ext.Types)
	ext.File.CallableCount = len(ext.Callables)

	return ext, nil
}

// extractStructure walks the module and dispatches on definitions.
func (e *Extractor) extractStructure(root *sitter.Node, source []byte, ext *Extraction) {
	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement", "import_from_statement":
			ext.File.ImportCount++

		case "decorated_definition":
			decorators := e.extractDecorators(n, source)
			if def := n.ChildByFieldName("definition"); def != nil {
				e.dispatchDefinition(def, source, ext, decorators)
			}
			return false

		case "class_definition":
			e.extractClass(n, source, ext, nil)
			return false

		case "function_definition":
			if isTopLevel(n) {
				e.extractCallable(n, source, ext, nil, -1)
			}
			return false
		}
		return true
	})
}

func (e *Extractor) dispatchDefinition(def *sitter.Node, source []byte, ext *Extraction, decorators []string) {
	switch def.Kind() {
	case "class_definition":
		e.extractClass(def, source, ext, decorators)
	case "function_definition":
		if isTopLevel(def) {
			e.extractCallable(def, source, ext, decorators, -1)
		}
	}
}

// isTopLevel checks if a definition sits at module level, allowing for a
// decorated_definition wrapper.
func isTopLevel(node *sitter.Node) bool {
	parent := node.Parent()
	for parent != nil {
		switch parent.Kind() {
		case "class_definition", "function_definition":
			return false
		case "module":
			return true
		}
		parent = parent.Parent()
	}
	return true
}

// extractClass emits a type definition, one inherits stub per base type,
// and the class's methods.
func (e *Extractor) extractClass(node *sitter.Node, source []byte, ext *Extraction, decorators []string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)

	baseTypes := e.extractBaseTypes(node, source)
	kind := classifyType(baseTypes, decorators)

	td := store.TypeDefinition{
		Name:       name,
		StartLine:  startLine(node),
		EndLine:    endLine(node),
		Kind:       kind,
		BaseTypes:  baseTypes,
		Decorators: decorators,
		IsAbstract: kind == store.TypeKindAbstract,
	}
	ext.Types = append(ext.Types, td)
	typeIndex := len(ext.Types) - 1

	for _, base := range baseTypes {
		ext.Stubs = append(ext.Stubs, Stub{
			SourceKind:  store.EntityType,
			SourceIndex: typeIndex,
			SourceName:  name,
			TargetKind:  store.EntityType,
			TargetName:  lastNameSegment(base),
			Kind:        store.RelInherits,
			Line:        startLine(node),
		})
	}

	// Methods live directly in the class body, possibly decorated.
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		switch child.Kind() {
		case "function_definition":
			e.extractCallable(child, source, ext, nil, typeIndex)
		case "decorated_definition":
			methodDecorators := e.extractDecorators(child, source)
			if def := child.ChildByFieldName("definition"); def != nil && def.Kind() == "function_definition" {
				e.extractCallable(def, source, ext, methodDecorators, typeIndex)
			}
		}
	}
	ext.Types[typeIndex].MethodCount = countMethods(ext.Callables, typeIndex)
}

func countMethods(callables []CallableRecord, typeIndex int) int {
	n := 0
	for _, c := range callables {
		if c.TypeIndex == typeIndex {
			n++
		}
	}
	return n
}

// extractBaseTypes reads the raw base-type names from a class's
// superclasses list. Keyword arguments (e.g. metaclass=...) are skipped;
// subscripted bases keep only the subscripted value (Generic[T] -> Generic).
func (e *Extractor) extractBaseTypes(node *sitter.Node, source []byte) []string {
	superclasses := node.ChildByFieldName("superclasses")
	if superclasses == nil {
		return nil
	}

	var bases []string
	for i := 0; i < int(superclasses.NamedChildCount()); i++ {
		arg := superclasses.NamedChild(uint(i))
		switch arg.Kind() {
		case "identifier", "attribute":
			bases = append(bases, extractNodeText(arg, source))
		case "subscript":
			if value := arg.ChildByFieldName("value"); value != nil {
				bases = append(bases, extractNodeText(value, source))
			}
		}
	}
	return bases
}

// extractCallable emits one callable unit plus a calls stub per call
// expression whose callee is a simple or dotted name.
func (e *Extractor) extractCallable(node *sitter.Node, source []byte, ext *Extraction, decorators []string, typeIndex int) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	body := node.ChildByFieldName("body")

	unit := store.CallableUnit{
		Name:        name,
		StartLine:   startLine(node),
		EndLine:     endLine(node),
		Kind:        classifyCallable(typeIndex >= 0, decorators),
		Parameters:  e.flattenParameters(node, source),
		Decorators:  decorators,
		IsAsync:     findChildByKind(node, "async") != nil,
		IsGenerator: containsYield(body),
		Complexity:  callableComplexity(body),
	}
	if returnType := node.ChildByFieldName("return_type"); returnType != nil {
		annotation := extractNodeText(returnType, source)
		unit.ReturnType = &annotation
	}

	ext.Callables = append(ext.Callables, CallableRecord{Unit: unit, TypeIndex: typeIndex})
	callableIndex := len(ext.Callables) - 1

	walkTree(body, func(n *sitter.Node) bool {
		if n.Kind() != "call" {
			return true
		}
		callee := calleeName(n.ChildByFieldName("function"), source)
		if callee == "" {
			return true
		}
		ext.Stubs = append(ext.Stubs, Stub{
			SourceKind:  store.EntityCallable,
			SourceIndex: callableIndex,
			SourceName:  name,
			TargetKind:  store.EntityCallable,
			TargetName:  callee,
			Kind:        store.RelCalls,
			Line:        startLine(n),
		})
		return true
	})
}

// calleeName resolves a call expression's target to a simple name.
// Dotted callees keep only the final attribute segment; anything more
// exotic (subscripts, call results) yields no stub.
func calleeName(fn *sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return extractNodeText(fn, source)
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			return extractNodeText(attr, source)
		}
	}
	return ""
}

// containsYield reports whether a callable body yields, ignoring nested
// function definitions which generate independently.
func containsYield(body *sitter.Node) bool {
	found := false
	walkTree(body, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_definition", "lambda":
			return false
		case "yield":
			found = true
		}
		return !found
	})
	return found
}

// flattenParameters renders each parameter as the grammar spells it:
// "x", "x: int", "x: int = 1", "*args", "**kwargs".
func (e *Extractor) flattenParameters(node *sitter.Node, source []byte) []string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return []string{}
	}

	flattened := []string{}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(uint(i))
		switch p.Kind() {
		case "keyword_separator", "positional_separator", "comment":
			continue
		}
		flattened = append(flattened, extractNodeText(p, source))
	}
	return flattened
}

// extractDecorators collects decorator names from a decorated_definition.
// Call-form decorators keep only the callee (e.g. "@app.route(...)" ->
// "app.route").
func (e *Extractor) extractDecorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() != "decorator" {
			continue
		}
		expr := child.NamedChild(0)
		if expr == nil {
			continue
		}
		if expr.Kind() == "call" {
			expr = expr.ChildByFieldName("function")
		}
		if expr != nil {
			decorators = append(decorators, extractNodeText(expr, source))
		}
	}
	return decorators
}

func lastNameSegment(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}
