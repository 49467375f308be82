package extractor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// Test Plan for the Python extractor:
// - Extract classes with base types, decorators, and kind classification
// - Extract free functions vs methods, including async/generator flags
// - Flatten parameters including annotations, defaults, and splat forms
// - Emit inherits stubs for base types and calls stubs for call expressions
// - Score callable and file complexity from branching constructs
// - Return a stub file record plus ErrParse on unparsable content

func extract(t *testing.T, path, source string) *Extraction {
	t.Helper()
	e := NewPython(DefaultThresholds())
	ext, err := e.ExtractFile(context.Background(), path, []byte(source))
	require.NoError(t, err)
	require.NotNil(t, ext)
	return ext
}

func TestExtractFile_ClassesAndMethods(t *testing.T) {
	t.Parallel()

	source := `import os
from typing import Optional

class Base:
    def ping(self):
        pass

class Child(Base):
    def __init__(self, name: str, retries: int = 3, *args, **kwargs):
        self.name = name

    @staticmethod
    def build():
        return Child("x")

    @property
    def label(self) -> str:
        return self.name

def top_level(x):
    return helper(x)
`

	ext := extract(t, "app/services/widgets.py", source)

	assert.Equal(t, "widgets.py", ext.File.Name)
	assert.Equal(t, "services", ext.File.Domain)
	assert.Equal(t, store.FileKindModule, ext.File.Kind)
	assert.Equal(t, 2, ext.File.ImportCount)
	assert.Equal(t, 2, ext.File.TypeCount)
	assert.Equal(t, 5, ext.File.CallableCount)

	require.Len(t, ext.Types, 2)
	base := ext.Types[0]
	assert.Equal(t, "Base", base.Name)
	assert.Empty(t, base.BaseTypes)
	assert.Equal(t, store.TypeKindClass, base.Kind)
	assert.Equal(t, 1, base.MethodCount)

	child := ext.Types[1]
	assert.Equal(t, "Child", child.Name)
	assert.Equal(t, []string{"Base"}, child.BaseTypes)
	assert.Equal(t, 3, child.MethodCount)

	// Method linkage and kinds.
	var initRec, buildRec, labelRec, topRec *CallableRecord
	for i := range ext.Callables {
		switch ext.Callables[i].Unit.Name {
		case "__init__":
			initRec = &ext.Callables[i]
		case "build":
			buildRec = &ext.Callables[i]
		case "label":
			labelRec = &ext.Callables[i]
		case "top_level":
			topRec = &ext.Callables[i]
		}
	}
	require.NotNil(t, initRec)
	assert.Equal(t, 1, initRec.TypeIndex)
	assert.Equal(t, store.CallableKindMethod, initRec.Unit.Kind)
	assert.Equal(t,
		[]string{"self", "name: str", "retries: int = 3", "*args", "**kwargs"},
		initRec.Unit.Parameters)

	require.NotNil(t, buildRec)
	assert.Equal(t, store.CallableKindStaticMethod, buildRec.Unit.Kind)
	assert.Equal(t, []string{"staticmethod"}, buildRec.Unit.Decorators)

	require.NotNil(t, labelRec)
	assert.Equal(t, store.CallableKindProperty, labelRec.Unit.Kind)
	require.NotNil(t, labelRec.Unit.ReturnType)
	assert.Equal(t, "str", *labelRec.Unit.ReturnType)

	require.NotNil(t, topRec)
	assert.Equal(t, -1, topRec.TypeIndex)
	assert.Equal(t, store.CallableKindFunction, topRec.Unit.Kind)
}

func TestExtractFile_Stubs(t *testing.T) {
	t.Parallel()

	source := `class Child(Base, mixins.Loggable):
    def run(self):
        helper()
        self.client.fetch()
`

	ext := extract(t, "m.py", source)

	var inherits, calls []Stub
	for _, s := range ext.Stubs {
		switch s.Kind {
		case store.RelInherits:
			inherits = append(inherits, s)
		case store.RelCalls:
			calls = append(calls, s)
		}
	}

	require.Len(t, inherits, 2)
	assert.Equal(t, "Base", inherits[0].TargetName)
	assert.Equal(t, store.EntityType, inherits[0].TargetKind)
	assert.Equal(t, "Child", inherits[0].SourceName)
	// Dotted base names keep only the final segment for matching.
	assert.Equal(t, "Loggable", inherits[1].TargetName)

	require.Len(t, calls, 2)
	assert.Equal(t, "helper", calls[0].TargetName)
	assert.Equal(t, store.EntityCallable, calls[0].TargetKind)
	assert.Equal(t, "run", calls[0].SourceName)
	assert.Equal(t, "fetch", calls[1].TargetName)
}

func TestExtractFile_TypeKindClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		kind   string
	}{
		{
			name:   "exception by base name",
			source: "class BillingError(ValueError):\n    pass\n",
			kind:   store.TypeKindException,
		},
		{
			name:   "enum by base name",
			source: "from enum import Enum\nclass Color(Enum):\n    RED = 1\n",
			kind:   store.TypeKindEnum,
		},
		{
			name:   "dataclass by decorator",
			source: "@dataclass\nclass Point:\n    x: int = 0\n",
			kind:   store.TypeKindDataclass,
		},
		{
			name:   "schema model by base name",
			source: "class User(BaseModel):\n    name: str\n",
			kind:   store.TypeKindModel,
		},
		{
			name:   "abstract by base name",
			source: "from abc import ABC\nclass Repo(ABC):\n    pass\n",
			kind:   store.TypeKindAbstract,
		},
		{
			name:   "plain class",
			source: "class Widget:\n    pass\n",
			kind:   store.TypeKindClass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ext := extract(t, "k.py", tt.source)
			require.Len(t, ext.Types, 1)
			assert.Equal(t, tt.kind, ext.Types[0].Kind)
			assert.Equal(t, tt.kind == store.TypeKindAbstract, ext.Types[0].IsAbstract)
		})
	}
}

func TestExtractFile_AsyncAndGenerator(t *testing.T) {
	t.Parallel()

	source := `async def fetch(url):
    return await session.get(url)

def numbers(limit):
    for i in range(limit):
        yield i

def plain():
    def inner():
        yield 1
    return inner
`

	ext := extract(t, "g.py", source)
	require.Len(t, ext.Callables, 3)

	byName := map[string]store.CallableUnit{}
	for _, c := range ext.Callables {
		byName[c.Unit.Name] = c.Unit
	}

	assert.True(t, byName["fetch"].IsAsync)
	assert.False(t, byName["fetch"].IsGenerator)

	assert.False(t, byName["numbers"].IsAsync)
	assert.True(t, byName["numbers"].IsGenerator)

	// A nested generator does not make the outer callable a generator.
	assert.False(t, byName["plain"].IsGenerator)
}

func TestExtractFile_Complexity(t *testing.T) {
	t.Parallel()

	source := `def score(x, y):
    if x and y:
        return 1
    for i in range(x):
        while i > 0:
            i -= 1
    try:
        risky()
    except ValueError:
        pass
    except KeyError:
        pass
    return 0
`

	ext := extract(t, "c.py", source)
	require.Len(t, ext.Callables, 1)

	// base 1 + if + boolean and + for + while + 2 except clauses = 7
	assert.Equal(t, 7, ext.Callables[0].Unit.Complexity)

	// file: base 1 + same 6 constructs + 1 callable definition = 8
	assert.Equal(t, 8, ext.File.ComplexityScore)
	assert.Equal(t, store.LevelLow, ext.File.ComplexityLevel)
}

func TestExtractFile_ParseFailure(t *testing.T) {
	t.Parallel()

	e := NewPython(DefaultThresholds())
	ext, err := e.ExtractFile(context.Background(), "broken.py", []byte("def broken(:\n"))

	require.ErrorIs(t, err, ErrParse)
	require.NotNil(t, ext)
	assert.Equal(t, "broken.py", ext.File.Path)
	assert.Equal(t, "broken.py", ext.File.Name)
	assert.Zero(t, ext.File.LineCount)
	assert.Empty(t, ext.Types)
	assert.Empty(t, ext.Callables)
	assert.Empty(t, ext.Stubs)
}

func TestExtractFile_ContextDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	e := NewPython(DefaultThresholds())
	ext, err := e.ExtractFile(ctx, "slow.py", []byte("x = 1\n"))

	require.ErrorIs(t, err, ErrParse)
	assert.Equal(t, "slow.py", ext.File.Path)
}

func TestThresholds_Level(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds()
	assert.Equal(t, store.LevelLow, th.Level(0))
	assert.Equal(t, store.LevelLow, th.Level(9))
	assert.Equal(t, store.LevelMedium, th.Level(10))
	assert.Equal(t, store.LevelMedium, th.Level(19))
	assert.Equal(t, store.LevelHigh, th.Level(20))
	assert.Equal(t, store.LevelHigh, th.Level(39))
	assert.Equal(t, store.LevelVeryHigh, th.Level(40))
}

func TestDomainForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		domain string
	}{
		{"app/views/home.py", "presentation"},
		{"app/api/users.py", "api"},
		{"app/services/billing.py", "services"},
		{"app/models/user.py", "models"},
		{"app/db/session.py", "data"},
		{"app/utils/strings.py", "utilities"},
		{"tests/test_billing.py", "tests"},
		{"main.py", "general"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.domain, DomainForPath(tt.path), tt.path)
	}
}

func TestFileKindForPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, store.FileKindPackage, FileKindForPath("app/__init__.py"))
	assert.Equal(t, store.FileKindTest, FileKindForPath("app/test_widgets.py"))
	assert.Equal(t, store.FileKindTest, FileKindForPath("app/widgets_test.py"))
	assert.Equal(t, store.FileKindModule, FileKindForPath("app/widgets.py"))
}
