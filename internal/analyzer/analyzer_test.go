package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeatlas-dev/codeatlas/internal/config"
	"github.com/codeatlas-dev/codeatlas/internal/extractor"
	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// writeTree materializes a map of relative path to source under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestAnalyzer(t *testing.T) (*Analyzer, *store.Store) {
	t.Helper()
	st := store.NewTestStore(t)
	cfg := config.Default()
	cfg.Analysis.Concurrency = 2
	return New(cfg, st, nil, nil), st
}

func TestPopulateBasic(t *testing.T) {
	root := writeTree(t, map[string]string{
		"models/user.py": `
class Base:
    pass

class User(Base):
    def save(self):
        validate(self)

def validate(user):
    return True
`,
	})

	a, st := newTestAnalyzer(t)
	summary, err := a.Populate(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 2, summary.Types)
	assert.Equal(t, 2, summary.Callables)
	assert.Empty(t, summary.Errors)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", summary.RunID.String())

	// User inherits Base, save calls validate
	rels, err := st.ListRelationships(store.RelationshipFilter{Kind: store.RelInherits})
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "User", rels[0].SourceName)
	assert.Equal(t, "Base", rels[0].TargetName)
	assert.Equal(t, "models/user.py", rels[0].FilePath)

	rels, err = st.ListRelationships(store.RelationshipFilter{Kind: store.RelCalls})
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "save", rels[0].SourceName)
	assert.Equal(t, "validate", rels[0].TargetName)
}

func TestPopulateIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py": "class A:\n    pass\n",
		"b.py": "class B(A):\n    pass\n",
	})

	a, st := newTestAnalyzer(t)

	first, err := a.Populate(context.Background(), root)
	require.NoError(t, err)
	second, err := a.Populate(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first.Files, second.Files)
	assert.Equal(t, first.Types, second.Types)
	assert.Equal(t, first.Relationships, second.Relationships)

	files, types, callables, rels, err := st.Counts()
	require.NoError(t, err)
	assert.Equal(t, int64(2), files)
	assert.Equal(t, int64(2), types)
	assert.Equal(t, int64(0), callables)
	assert.Equal(t, int64(1), rels)
}

func TestPopulatePartialFailure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.py":   "def ok():\n    return 1\n",
		"broken.py": "def broken(:\n",
		"other.py":  "def also_ok():\n    return 2\n",
	})

	a, st := newTestAnalyzer(t)
	summary, err := a.Populate(context.Background(), root)
	require.NoError(t, err)

	// All three files get records; the broken one is a stub.
	assert.Equal(t, 3, summary.Files)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "broken.py", summary.Errors[0].Path)
	assert.True(t, errors.Is(summary.Errors[0].Err, extractor.ErrParse))

	stub, err := st.GetFileByPath("broken.py")
	require.NoError(t, err)
	assert.Equal(t, 0, stub.LineCount)
	assert.Equal(t, 0, stub.ComplexityScore)
	assert.Equal(t, 0, stub.CallableCount)
}

func TestPopulateCrossFileResolution(t *testing.T) {
	root := writeTree(t, map[string]string{
		"base.py":  "class Base:\n    pass\n",
		"child.py": "class Child(Base):\n    pass\n",
	})

	a, st := newTestAnalyzer(t)
	summary, err := a.Populate(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Relationships)
	assert.Equal(t, 0, summary.Unresolved)

	rels, err := st.ListRelationships(store.RelationshipFilter{Kind: store.RelInherits})
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "child.py", rels[0].FilePath)

	base, err := st.GetFileByPath("base.py")
	require.NoError(t, err)
	baseTypes, err := st.ListTypes(store.TypeFilter{FileID: &base.ID})
	require.NoError(t, err)
	require.Len(t, baseTypes, 1)
	assert.Equal(t, baseTypes[0].ID, rels[0].TargetID)
}

func TestPopulateUnresolvedDropped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py": "class App(ExternalBase):\n    pass\n",
	})

	a, st := newTestAnalyzer(t)
	summary, err := a.Populate(context.Background(), root)
	require.NoError(t, err)

	// ExternalBase is not defined anywhere in the tree.
	assert.Equal(t, 0, summary.Relationships)
	assert.Equal(t, 1, summary.Unresolved)

	rels, err := st.ListRelationships(store.RelationshipFilter{})
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestPopulateFixtureTree(t *testing.T) {
	a, st := newTestAnalyzer(t)
	summary, err := a.Populate(context.Background(), filepath.Join("..", "..", "testdata", "python"))
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Files)
	assert.Equal(t, 5, summary.Types)
	assert.Equal(t, 7, summary.Callables)
	assert.Empty(t, summary.Errors)

	// Domain and kind classification from paths.
	models, err := st.GetFileByPath("app/models/user.py")
	require.NoError(t, err)
	assert.Equal(t, "models", models.Domain)
	assert.Equal(t, store.FileKindModule, models.Kind)

	pkg, err := st.GetFileByPath("app/__init__.py")
	require.NoError(t, err)
	assert.Equal(t, store.FileKindPackage, pkg.Kind)

	tests, err := st.GetFileByPath("tests/test_user.py")
	require.NoError(t, err)
	assert.Equal(t, "tests", tests.Domain)
	assert.Equal(t, store.FileKindTest, tests.Kind)

	// Type kinds across the fixture.
	kinds := map[string]string{}
	types, err := st.ListTypes(store.TypeFilter{})
	require.NoError(t, err)
	for _, td := range types {
		kinds[td.Name] = td.Kind
	}
	assert.Equal(t, map[string]string{
		"UserError":    store.TypeKindException,
		"Role":         store.TypeKindEnum,
		"User":         store.TypeKindDataclass,
		"ServiceError": store.TypeKindException,
		"UserService":  store.TypeKindClass,
	}, kinds)

	// ServiceError inherits UserError across files; create_user calls
	// build_service and register. External bases stay unresolved.
	rels, err := st.ListRelationships(store.RelationshipFilter{Kind: store.RelInherits})
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "ServiceError", rels[0].SourceName)
	assert.Equal(t, "UserError", rels[0].TargetName)

	rels, err = st.ListRelationships(store.RelationshipFilter{Kind: store.RelCalls})
	require.NoError(t, err)
	targets := make([]string, 0, len(rels))
	for _, r := range rels {
		targets = append(targets, r.TargetName)
	}
	assert.ElementsMatch(t, []string{"build_service", "register"}, targets)

	// find_all is an async generator method.
	callables, err := st.ListCallables(store.CallableFilter{Name: "find_all"})
	require.NoError(t, err)
	require.Len(t, callables, 1)
	assert.True(t, callables[0].IsAsync)
	assert.True(t, callables[0].IsGenerator)
	assert.Equal(t, store.CallableKindMethod, callables[0].Kind)
}

func TestPopulateHonorsExcludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":                     "def run():\n    pass\n",
		"venv/lib/site.py":           "def ignored():\n    pass\n",
		"__pycache__/app.cpython.py": "def ignored():\n    pass\n",
	})

	a, st := newTestAnalyzer(t)
	summary, err := a.Populate(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)

	_, err = st.GetFileByPath("venv/lib/site.py")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPopulateCanceledContext(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py": "def f():\n    pass\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, _ := newTestAnalyzer(t)
	_, err := a.Populate(ctx, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscoverOrderAndPatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.py":         "",
		"a.py":         "",
		"pkg/m.py":     "",
		"README.md":    "",
		"venv/skip.py": "",
	})

	d, err := NewDiscovery(root, []string{"**/*.py"}, []string{"**/venv/**"})
	require.NoError(t, err)

	files, err := d.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "pkg/m.py", "z.py"}, files)
}

func TestDiscoverInvalidPattern(t *testing.T) {
	_, err := NewDiscovery(t.TempDir(), []string{"[invalid"}, nil)
	require.Error(t, err)
}
