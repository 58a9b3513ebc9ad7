package load

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/gqlcodegen/watch"
)

func snapshotIn(t *testing.T) (string, Option) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mercurius-schema.json")
	return path, WithSnapshotPath(path)
}

func TestLoadSchemaDiscovery(t *testing.T) {
	path, snap := snapshotIn(t)
	l, err := New([]string{"testdata/schema"}, snap, WithPrebuild(false))
	require.NoError(t, err)

	res, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Prebuilt)
	assert.Equal(t, []string{
		"type Dog {\n  name: String!\n  owner: Human\n}",
		"type Human {\n  name: String!\n  dogs: [Dog!]!\n}",
		"type Query {\n  hello(greetings: String): String!\n}",
	}, res.Sources)
	assert.False(t, res.Close(), "nothing is watched")
	require.NoError(t, res.Ready(context.Background()))

	l.Flush()
	stored, ok, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.Sources, stored)
}

func TestLoadSchemaSnapshotWriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))
	logger, hook := test.NewNullLogger()

	l, err := New([]string{"testdata/schema/query.graphql"},
		WithSnapshotPath(filepath.Join(blocker, "snap.json")),
		WithPrebuild(false), WithLogger(logger))
	require.NoError(t, err)

	res, err := l.Load(context.Background())
	require.NoError(t, err, "a failed snapshot write does not fail the load")
	assert.Equal(t, []string{"type Query {\n  hello(greetings: String): String!\n}"}, res.Sources)

	l.Flush()
	var persisted bool
	for _, e := range hook.AllEntries() {
		if e.Message == "persist schema snapshot" {
			persisted = true
			assert.Equal(t, logrus.ErrorLevel, e.Level)
			assert.Error(t, e.Data["error"].(error))
		}
	}
	assert.True(t, persisted, "the write failure is logged")
}

func TestLoadSchemaNoFiles(t *testing.T) {
	_, snap := snapshotIn(t)
	_, err := LoadSchema(context.Background(), []string{"testdata/missing/*.graphql"}, snap, WithPrebuild(false))
	require.Error(t, err)
	assert.Equal(t, "No GraphQL Schema files found!", err.Error())
	assert.ErrorIs(t, err, ErrNoSchemaFiles)
	assert.True(t, IsNoSchemaFiles(err))

	var nsf *NoSchemaFilesError
	require.ErrorAs(t, err, &nsf)
	assert.Equal(t, []string{"testdata/missing/*.graphql"}, nsf.Patterns)
	assert.Contains(t, nsf.Caller, "schema_test.go")
	assert.Contains(t, nsf.Detail(), "testdata/missing/*.graphql")
}

func TestLoadSchemaOnlyEmptyFiles(t *testing.T) {
	_, snap := snapshotIn(t)
	_, err := LoadSchema(context.Background(), []string{"testdata/schema/nested/empty.graphql"}, snap, WithPrebuild(false))
	assert.ErrorIs(t, err, ErrNoSchemaFiles)
}

func TestLoadSchemaPrebuild(t *testing.T) {
	tests := []struct {
		name     string
		snapshot string
		prebuilt bool
	}{
		{name: "valid snapshot is trusted", snapshot: `["type Query { stale: Int }"]`, prebuilt: true},
		{name: "empty array", snapshot: `[]`},
		{name: "non string entry", snapshot: `["type Query { a: Int }", 1]`},
		{name: "object", snapshot: `{"schema": "type Query { a: Int }"}`},
		{name: "malformed json", snapshot: `["type Query`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, snap := snapshotIn(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.snapshot), 0o644))

			res, err := LoadSchema(context.Background(), []string{"testdata/schema/query.graphql"},
				snap, WithPrebuild(true), WithoutSnapshotWrite())
			require.NoError(t, err)
			assert.Equal(t, tt.prebuilt, res.Prebuilt)
			if tt.prebuilt {
				assert.Equal(t, []string{"type Query { stale: Int }"}, res.Sources)
			} else {
				assert.Equal(t, []string{"type Query {\n  hello(greetings: String): String!\n}"}, res.Sources)
			}
		})
	}

	t.Run("disabled prebuild ignores snapshot", func(t *testing.T) {
		path, snap := snapshotIn(t)
		require.NoError(t, os.WriteFile(path, []byte(`["type Query { stale: Int }"]`), 0o644))
		res, err := LoadSchema(context.Background(), []string{"testdata/schema/query.graphql"},
			snap, WithPrebuild(false), WithoutSnapshotWrite())
		require.NoError(t, err)
		assert.False(t, res.Prebuilt)
	})

	t.Run("prebuilt sources win over the file", func(t *testing.T) {
		path, snap := snapshotIn(t)
		require.NoError(t, os.WriteFile(path, []byte(`["type Query { file: Int }"]`), 0o644))
		res, err := LoadSchema(context.Background(), []string{"testdata/missing"},
			snap, WithPrebuild(true), WithPrebuiltSources([]string{"type Query { embedded: Int }"}))
		require.NoError(t, err)
		assert.True(t, res.Prebuilt)
		assert.Equal(t, []string{"type Query { embedded: Int }"}, res.Sources)
	})

	t.Run("production enables prebuild by default", func(t *testing.T) {
		t.Setenv("GO_ENV", "production")
		opts, err := NewOptions()
		require.NoError(t, err)
		assert.True(t, opts.Prebuild)
		assert.Equal(t, DefaultSnapshotPath, opts.SnapshotPath)
	})
}

func TestOptionsErrorsAreJoined(t *testing.T) {
	_, err := NewOptions(WithSnapshotPath(""), func(*Options) error { return errors.New("second") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot path cannot be empty")
	assert.Contains(t, err.Error(), "second")
}

func TestSnapshotWriteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	sources := []string{"type Query {\n  a: Int\n}", "scalar <Date>"}

	changed, err := WriteSnapshot(path, sources)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = WriteSnapshot(path, sources)
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"type Query {\\n  a: Int\\n}\",\n  \"scalar <Date>\"\n]\n", string(data))
}

func TestGoSnapshot(t *testing.T) {
	src, err := RenderGoSnapshot("schema", []string{"type Query {\n  hello: String\n}", "scalar `Date`"})
	require.NoError(t, err)

	code := string(src)
	assert.Contains(t, code, "// Code generated by gqlcodegen. DO NOT EDIT.")
	assert.Contains(t, code, "package schema")
	assert.Contains(t, code, "var Sources = []string{")
	assert.Contains(t, code, `"type Query {\n  hello: String\n}"`)

	_, err = parser.ParseFile(token.NewFileSet(), "schema.go", src, parser.AllErrors)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "schema", "sources.go")
	changed, err := WriteGoSnapshot(path, "schema", []string{"type Query { a: Int }"})
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = WriteGoSnapshot(path, "schema", []string{"type Query { a: Int }"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func writeSchema(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadSchemaWatch(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	writeSchema(t, dir, "query.graphql", "type Query { a: Int }")
	_, snap := snapshotIn(t)
	logger, hook := test.NewNullLogger()

	var (
		mu      sync.Mutex
		updates [][]string
	)
	res, err := LoadSchema(context.Background(), []string{filepath.Join(dir, "*.graphql")},
		snap, WithPrebuild(false), WithLogger(logger),
		WithWatch(WatchOptions{
			OnChange: func(sources []string) {
				mu.Lock()
				updates = append(updates, sources)
				mu.Unlock()
				if len(sources) == 2 {
					panic("callback failure")
				}
			},
		}))
	require.NoError(t, err)
	t.Cleanup(func() { res.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, res.Ready(ctx))
	assert.Equal(t, []string{"type Query { a: Int }"}, res.Sources)

	writeSchema(t, dir, "user.graphql", "type User { id: ID! }")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(updates) > 0 && len(updates[len(updates)-1]) == 2
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Message == "schema change callback panicked" {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	// The watcher survives the panic and the failed reload below.
	require.NoError(t, os.Remove(filepath.Join(dir, "user.graphql")))
	require.NoError(t, os.Remove(filepath.Join(dir, "query.graphql")))
	require.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Message == "reload schema" && errors.Is(e.Data["error"].(error), ErrNoSchemaFiles) {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	writeSchema(t, dir, "query.graphql", "type Query { b: Int }")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		last := updates[len(updates)-1]
		return len(last) == 1 && last[0] == "type Query { b: Int }"
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, res.Close())
	assert.False(t, res.Close())
}

func TestLoadSchemaUniqueWatch(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "query.graphql", "type Query { a: Int }")
	_, snap := snapshotIn(t)
	m := watch.NewManager()
	t.Cleanup(func() { m.CloseAll() })

	load := func(unique *bool) *Result {
		res, err := LoadSchema(context.Background(), []string{filepath.Join(dir, "*.graphql")},
			snap, WithPrebuild(false), WithoutSnapshotWrite(), WithSilent(true),
			WithWatch(WatchOptions{Manager: m, UniqueWatch: unique}))
		require.NoError(t, err)
		return res
	}

	first := load(nil)
	second := load(nil)
	assert.False(t, first.Close(), "superseded session is already closed")
	assert.True(t, second.Close())
	assert.False(t, second.Close())

	independent := false
	third := load(nil)
	fourth := load(&independent)
	assert.Same(t, third.Session(), m.Get(watch.KindLoadSchema))
	assert.True(t, fourth.Close())
	assert.True(t, third.Close())
}
