package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/config"
)

const helloSDL = `type Query {
  hello(greetings: String): String!
}`

// syncBuffer is written by the watch command while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func contents(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(b)
}

// project creates a project directory with a schema, an operation and a
// configuration file, and returns the configuration path.
func project(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "graphql", "schema", "query.graphql"), helloSDL)
	writeFile(t, filepath.Join(dir, "graphql", "operations", "a.graphql"), "query A {\n  hello\n}\n")
	writeFile(t, filepath.Join(dir, config.DefaultFilename), `schema: graphql/schema/*.graphql
targetPath: src/generated.ts
operations: graphql/operations/*.graphql
disable: false
prebuild:
  enabled: false
  snapshotPath: mercurius-schema.json
`+extra)
	return filepath.Join(dir, config.DefaultFilename)
}

func execute(ctx context.Context, out *syncBuffer, args ...string) error {
	generateForce, initForce, printSchemaOutput, silent = false, false, "", false
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	return rootCmd.ExecuteContext(ctx)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out syncBuffer
	err := execute(context.Background(), &out, args...)
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gqlcodegen version test-version-1.0.0")
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"generate", "watch", "prebuild", "print-schema", "init", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultFilename)

	out, err := run(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, err = run(t, "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestGenerateCmd(t *testing.T) {
	cfgPath := project(t, "outputSchema: true\n")
	dir := filepath.Dir(cfgPath)
	target := filepath.Join(dir, "src", "generated.ts")

	out, err := run(t, "generate", "--config", cfgPath, "--silent")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+target)
	code := contents(target)
	assert.Contains(t, code, "export type QueryResolvers<")
	assert.Contains(t, code, "export const ADocument = ")
	assert.Contains(t, contents(filepath.Join(dir, "schema.gql")), "hello(greetings: String): String!")

	out, err = run(t, "generate", "--config", cfgPath, "--silent")
	require.NoError(t, err)
	assert.Contains(t, out, target+" is up to date")

	t.Run("missing config", func(t *testing.T) {
		_, err := run(t, "generate", "--config", filepath.Join(dir, "missing.yml"))
		assert.ErrorIs(t, err, config.ErrNotFound)
	})

	t.Run("disabled", func(t *testing.T) {
		disabled := project(t, "")
		require.NoError(t, os.WriteFile(disabled, []byte(strings.Replace(contents(disabled), "disable: false", "disable: true", 1)), 0o644))
		out, err := run(t, "generate", "--config", disabled, "--silent")
		require.NoError(t, err)
		assert.Contains(t, out, "Code generation is disabled.")

		out, err = run(t, "generate", "--config", disabled, "--silent", "--force")
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote ")
	})
}

func TestPrebuildCmd(t *testing.T) {
	cfgPath := project(t, "")
	dir := filepath.Dir(cfgPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(contents(cfgPath)+"  goSnapshot: internal/schema/schema_gen.go\n  goPackage: schema\n"), 0o644))

	out, err := run(t, "prebuild", "--config", cfgPath, "--silent")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 schema fragments to ")

	sources, ok, err := load.ReadSnapshot(filepath.Join(dir, "mercurius-schema.json"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{helloSDL}, sources)

	goSnapshot := contents(filepath.Join(dir, "internal", "schema", "schema_gen.go"))
	assert.Contains(t, goSnapshot, "package schema")
	assert.Contains(t, goSnapshot, "var Sources = []string{")

	t.Run("invalid schema is not persisted", func(t *testing.T) {
		bad := project(t, "")
		writeFile(t, filepath.Join(filepath.Dir(bad), "graphql", "schema", "query.graphql"), "type Query { dog: Dog }")
		_, err := run(t, "prebuild", "--config", bad, "--silent")
		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(filepath.Dir(bad), "mercurius-schema.json"))
	})
}

func TestPrintSchemaCmd(t *testing.T) {
	cfgPath := project(t, "")

	out, err := run(t, "print-schema", "--config", cfgPath, "--silent")
	require.NoError(t, err)
	assert.Contains(t, out, "type Query {")
	assert.Contains(t, out, "hello(greetings: String): String!")

	path := filepath.Join(t.TempDir(), "schema.graphql")
	out, err = run(t, "print-schema", "--config", cfgPath, "--silent", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")
	assert.Contains(t, contents(path), "hello(greetings: String): String!")
}

func TestWatchCmd(t *testing.T) {
	cfgPath := project(t, "watch:\n  debounce: 50ms\n")
	dir := filepath.Dir(cfgPath)
	target := filepath.Join(dir, "src", "generated.ts")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- execute(ctx, &out, "watch", "--config", cfgPath, "--silent")
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching, press Ctrl+C to stop")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, contents(target), "export const ADocument = ")

	writeFile(t, filepath.Join(dir, "graphql", "operations", "b.graphql"), "query B {\n  hello\n}\n")
	require.Eventually(t, func() bool {
		return strings.Contains(contents(target), "export const BDocument = ")
	}, 5*time.Second, 20*time.Millisecond)

	writeFile(t, filepath.Join(dir, "graphql", "schema", "query.graphql"), "type Query {\n  hello(greetings: String): String!\n  bye: String\n}\n")
	require.Eventually(t, func() bool {
		return strings.Contains(contents(target), "bye")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
