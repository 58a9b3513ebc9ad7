package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/gqlcodegen"
	"github.com/syssam/gqlcodegen/compiler/gen"
	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/internal/logging"
	"github.com/syssam/gqlcodegen/watch"
)

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{name: "scalar", in: "schema: a.graphql", want: StringList{"a.graphql"}},
		{name: "sequence", in: "schema: [a.graphql, b.graphql]", want: StringList{"a.graphql", "b.graphql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Schema StringList `yaml:"schema"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(tt.in), &v))
			assert.Equal(t, tt.want, v.Schema)
		})
	}

	t.Run("mapping is rejected", func(t *testing.T) {
		var v struct {
			Schema StringList `yaml:"schema"`
		}
		assert.Error(t, yaml.Unmarshal([]byte("schema: {a: b}"), &v))
	})

	t.Run("marshal", func(t *testing.T) {
		out, err := yaml.Marshal(StringList{"a"})
		require.NoError(t, err)
		assert.Equal(t, "a\n", string(out))
		out, err = yaml.Marshal(StringList{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, "- a\n- b\n", string(out))
	})
}

func TestBoolOrString(t *testing.T) {
	tests := []struct {
		in     string
		want   BoolOrString
		target string
	}{
		{in: "outputSchema: true", want: BoolOrString{Enabled: true}, target: gen.DefaultOutputSchemaPath},
		{in: "outputSchema: false", want: BoolOrString{}, target: ""},
		{in: "outputSchema: out/schema.graphql", want: BoolOrString{Enabled: true, Path: "out/schema.graphql"}, target: "out/schema.graphql"},
		{in: "outputSchema: \"true\"", want: BoolOrString{Enabled: true, Path: "true"}, target: "true"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v struct {
				OutputSchema BoolOrString `yaml:"outputSchema"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(tt.in), &v))
			assert.Equal(t, tt.want, v.OutputSchema)
			assert.Equal(t, tt.target, v.OutputSchema.Target())
		})
	}

	t.Run("list is rejected", func(t *testing.T) {
		var v struct {
			OutputSchema BoolOrString `yaml:"outputSchema"`
		}
		assert.Error(t, yaml.Unmarshal([]byte("outputSchema: [a]"), &v))
	})
}

const sample = `
schema:
  - graphql/schema/*.graphql
targetPath: src/generated.ts
silent: true
operations: graphql/operations/*.graphql
preImportCode: "/* eslint-disable */"
outputSchema: true
codegen:
  scalars:
    DateTime: Date
  namingConvention: keep
prebuild:
  enabled: false
  snapshotPath: mercurius-schema.json
watch:
  debounce: 150ms
  uniqueWatch: false
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, StringList{"graphql/schema/*.graphql"}, cfg.Schema)
	assert.Equal(t, "src/generated.ts", cfg.TargetPath)
	assert.True(t, cfg.Silent)
	assert.Equal(t, StringList{"graphql/operations/*.graphql"}, cfg.Operations)
	assert.Equal(t, "/* eslint-disable */", cfg.PreImportCode)
	assert.Equal(t, gen.DefaultOutputSchemaPath, cfg.OutputSchema.Target())
	assert.Equal(t, "Date", cfg.Codegen.Scalars["DateTime"])
	require.NotNil(t, cfg.Prebuild.Enabled)
	assert.False(t, *cfg.Prebuild.Enabled)
	assert.Equal(t, 150*time.Millisecond, cfg.Watch.Debounce)
	require.NotNil(t, cfg.Watch.UniqueWatch)
	assert.False(t, *cfg.Watch.UniqueWatch)
	assert.Nil(t, cfg.Disable)
}

func TestValidate(t *testing.T) {
	_, err := Parse([]byte("silent: true"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gen.ErrInvalidConfig)
	assert.Contains(t, err.Error(), `"schema"`)
	assert.Contains(t, err.Error(), `"targetPath"`)

	_, err = Parse([]byte("schema: a.graphql\ntargetPath: out.ts\nprebuild:\n  goSnapshot: schema_gen.go\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prebuild.goPackage")

	assert.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GQLCODEGEN_TEST_TARGET=from-env.ts\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`
schema: schema/*.graphql
targetPath: out/${GQLCODEGEN_TEST_TARGET}
outputSchema: true
`), 0o644))
	t.Cleanup(func() { os.Unsetenv("GQLCODEGEN_TEST_TARGET") })

	cfg, err := Load(path, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, StringList{filepath.Join(dir, "schema/*.graphql")}, cfg.Schema)
	assert.Equal(t, filepath.Join(dir, "out", "from-env.ts"), cfg.TargetPath)
	assert.Equal(t, filepath.Join(dir, "schema.gql"), cfg.OutputSchema.Target())

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yml"), nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(bad, []byte("schema: [a"), 0o644))
		_, err := Load(bad, nil)
		assert.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFilename)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "graphql/schema/**/*.graphql")
	assert.NotContains(t, string(data), "outputSchema")

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestOptions(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	t.Run("codegen", func(t *testing.T) {
		manager := watch.NewManager()
		opts, err := gqlcodegen.NewOptions(cfg.CodegenOptions(nil, true, manager)...)
		require.NoError(t, err)
		assert.Equal(t, "src/generated.ts", opts.TargetPath)
		assert.True(t, opts.Silent)
		assert.Equal(t, []string{"graphql/operations/*.graphql"}, opts.OperationsGlob)
		assert.Equal(t, gen.DefaultOutputSchemaPath, opts.OutputSchema)
		assert.Equal(t, "/* eslint-disable */", opts.PreImportCode)
		assert.Same(t, &cfg.Codegen, opts.CodegenConfig)
		assert.True(t, opts.Watch.Enabled)
		assert.Same(t, manager, opts.Watch.Manager)
		assert.Equal(t, 150*time.Millisecond, opts.Watch.Debounce)
		assert.Nil(t, opts.Formatter)
	})

	t.Run("without watch", func(t *testing.T) {
		opts, err := gqlcodegen.NewOptions(cfg.CodegenOptions(nil, false, nil)...)
		require.NoError(t, err)
		assert.False(t, opts.Watch.Enabled)
	})

	t.Run("disable", func(t *testing.T) {
		disabled := true
		c := *cfg
		c.Disable = &disabled
		opts, err := gqlcodegen.NewOptions(c.CodegenOptions(nil, false, nil)...)
		require.NoError(t, err)
		assert.True(t, opts.Disable)
	})

	t.Run("formatter", func(t *testing.T) {
		c := *cfg
		c.Formatter = FormatterConfig{Command: "prettier"}
		assert.Equal(t, gen.Prettier(), c.formatter())
		c.Formatter = FormatterConfig{Command: "dprint", Args: []string{"fmt", "--stdin"}}
		assert.Equal(t, gen.ExecFormatter{Command: "dprint", Args: []string{"fmt", "--stdin"}}, c.formatter())
	})

	t.Run("load", func(t *testing.T) {
		opts, err := load.NewOptions(cfg.LoadOptions(nil)...)
		require.NoError(t, err)
		assert.False(t, opts.Prebuild)
		assert.Equal(t, "mercurius-schema.json", opts.SnapshotPath)
		assert.True(t, opts.Silent)
	})
}
