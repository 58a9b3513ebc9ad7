package gqlcodegen_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/gqlcodegen"
	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/server"
	"github.com/syssam/gqlcodegen/watch"
)

func TestWatchSchema(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	target := filepath.Join(dir, "generated.ts")
	schemaFile := filepath.Join(dir, "schema", "query.graphql")
	writeFile(t, schemaFile, helloSDL)

	logger, hook := test.NewNullLogger()
	manager := watch.NewManager()
	t.Cleanup(func() { manager.CloseAll() })

	srv := server.NewStatic(nil)
	opts := options(target,
		gqlcodegen.WithLogger(logger),
		gqlcodegen.WithWatch(gqlcodegen.WatchOptions{Manager: manager, Debounce: 50 * time.Millisecond}),
	)
	res, err := gqlcodegen.WatchSchema(ctx, srv,
		[]string{filepath.Join(dir, "schema", "*.graphql")},
		[]load.Option{load.WithPrebuild(false), load.WithoutSnapshotWrite()},
		opts...,
	)
	require.NoError(t, err)
	assert.Same(t, res.Session(), manager.Get(watch.KindLoadSchema))
	require.True(t, srv.Registered(), "loaded schema is installed")
	assert.NotNil(t, srv.Schema().Query.Fields.ForName("hello"))

	// Watching the schema does not watch operations: Options.Watch has no
	// operations to act on.
	first, err := gqlcodegen.Codegen(ctx, srv, opts...)
	require.NoError(t, err)
	assert.Nil(t, first.Session())

	readyCtx, cancel := context.WithTimeout(ctx, waitFor)
	defer cancel()
	require.NoError(t, res.Ready(readyCtx))

	writeFile(t, schemaFile, "type Query {\n  hello(greetings: String): String!\n  bye: String\n}\n")
	require.Eventually(t, func() bool {
		return srv.Schema().Query.Fields.ForName("bye") != nil &&
			strings.Contains(contents(target), "bye")
	}, waitFor, 20*time.Millisecond)

	t.Run("invalid schema keeps the live one", func(t *testing.T) {
		before := srv.Schema()
		writeFile(t, schemaFile, "type Query {\n  broken: Missing\n}\n")
		require.Eventually(t, func() bool {
			return hasEntry(hook, logrus.ErrorLevel, "rebuild schema")
		}, waitFor, 20*time.Millisecond)
		assert.Same(t, before, srv.Schema())
		assert.Contains(t, contents(target), "bye")
		assert.False(t, res.Session().Closed())
	})

	assert.True(t, res.Close())
	assert.False(t, res.Close())
}

func TestWatchSchemaErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	target := filepath.Join(dir, "generated.ts")

	t.Run("nil server", func(t *testing.T) {
		_, err := gqlcodegen.WatchSchema(ctx, nil, []string{dir}, nil, options(target)...)
		assert.ErrorIs(t, err, gqlcodegen.ErrNilServer)
	})

	t.Run("no schema files", func(t *testing.T) {
		_, err := gqlcodegen.WatchSchema(ctx, server.NewStatic(nil),
			[]string{filepath.Join(dir, "missing", "*.graphql")},
			[]load.Option{load.WithPrebuild(false), load.WithoutSnapshotWrite()},
			options(target)...,
		)
		assert.ErrorIs(t, err, load.ErrNoSchemaFiles)
	})

	t.Run("invalid initial schema", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, "bad", "schema.graphql"), "type Query { dog: Dog }")
		manager := watch.NewManager()
		_, err := gqlcodegen.WatchSchema(ctx, server.NewStatic(nil),
			[]string{filepath.Join(dir, "bad", "*.graphql")},
			[]load.Option{load.WithPrebuild(false), load.WithoutSnapshotWrite()},
			options(target, gqlcodegen.WithWatch(gqlcodegen.WatchOptions{Manager: manager}))...,
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "install schema")
		s := manager.Get(watch.KindLoadSchema)
		require.NotNil(t, s)
		assert.True(t, s.Closed())
	})
}
