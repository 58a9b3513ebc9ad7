// Package config reads the gqlcodegen.yml configuration file used by the
// command line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/syssam/gqlcodegen"
	"github.com/syssam/gqlcodegen/compiler/gen"
	"github.com/syssam/gqlcodegen/compiler/load"
	"github.com/syssam/gqlcodegen/internal/env"
	"github.com/syssam/gqlcodegen/watch"
)

// DefaultFilename is the configuration file looked up by the CLI.
const DefaultFilename = "gqlcodegen.yml"

// Config represents gqlcodegen.yml.
type Config struct {
	// Schema are the glob patterns of the schema files.
	Schema StringList `yaml:"schema"`

	// TargetPath is the generated file.
	TargetPath string `yaml:"targetPath"`

	// Disable turns generation off. Unset means off in production only.
	Disable *bool `yaml:"disable,omitempty"`

	// Silent suppresses informational logs.
	Silent bool `yaml:"silent,omitempty"`

	// Operations are the glob patterns of the operation documents.
	Operations StringList `yaml:"operations,omitempty"`

	// PreImportCode is prepended to the generated code.
	PreImportCode string `yaml:"preImportCode,omitempty"`

	// OutputSchema writes the printed schema: true for ./schema.gql or a
	// path.
	OutputSchema BoolOrString `yaml:"outputSchema,omitempty"`

	// Codegen is the plugin configuration.
	Codegen gen.Config `yaml:"codegen,omitempty"`

	// Plugins are extra registered plugins.
	Plugins []string `yaml:"plugins,omitempty"`

	// Prebuild configures the schema snapshots.
	Prebuild PrebuildConfig `yaml:"prebuild,omitempty"`

	// Watch configures the watchers.
	Watch WatchConfig `yaml:"watch,omitempty"`

	// Formatter runs an external formatter instead of the built-in one.
	Formatter FormatterConfig `yaml:"formatter,omitempty"`

	// EnvFiles are loaded before the file is expanded. Defaults to .env and
	// .env.local.
	EnvFiles StringList `yaml:"envFiles,omitempty"`
}

// PrebuildConfig configures the schema snapshots.
type PrebuildConfig struct {
	// Enabled reads the snapshot instead of discovering files. Unset means
	// enabled in production only.
	Enabled *bool `yaml:"enabled,omitempty"`
	// SnapshotPath is the JSON snapshot.
	SnapshotPath string `yaml:"snapshotPath,omitempty"`
	// GoSnapshot is a Go file embedding the fragments, written by prebuild.
	GoSnapshot string `yaml:"goSnapshot,omitempty"`
	// GoPackage is the package of the Go snapshot.
	GoPackage string `yaml:"goPackage,omitempty"`
}

// WatchConfig configures the watchers.
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce,omitempty"`
	Ignore      StringList    `yaml:"ignore,omitempty"`
	UniqueWatch *bool         `yaml:"uniqueWatch,omitempty"`
}

// FormatterConfig selects an external formatter command.
type FormatterConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// ErrNotFound is returned by Load when the file does not exist.
var ErrNotFound = errors.New("config: file not found")

// Load reads the file at path. Environment variables in the file are
// expanded after the env files are loaded. Relative paths are resolved
// against the directory of the file.
func Load(path string, logger logrus.FieldLogger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	dir := filepath.Dir(path)

	var head struct {
		EnvFiles StringList `yaml:"envFiles"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	files := resolveAll(dir, head.EnvFiles)
	if len(files) == 0 {
		files = resolveAll(dir, env.Files)
	}
	env.Load(logger, files...)

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.resolve(dir)
	return cfg, nil
}

// Parse decodes and validates a configuration without touching paths.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the configuration written by the init command.
func Default() *Config {
	return &Config{
		Schema:     StringList{"graphql/schema/**/*.graphql"},
		TargetPath: "src/graphql/generated.ts",
		Operations: StringList{"graphql/operations/**/*.graphql"},
	}
}

// Validate checks the required settings.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Schema) == 0 {
		errs = append(errs, gen.NewConfigError("schema", nil, "at least one schema pattern is required"))
	}
	if c.TargetPath == "" {
		errs = append(errs, gen.NewConfigError("targetPath", nil, "target path is required"))
	}
	if c.Prebuild.GoSnapshot != "" && c.Prebuild.GoPackage == "" {
		errs = append(errs, gen.NewConfigError("prebuild.goPackage", nil, "package is required with goSnapshot"))
	}
	return errors.Join(errs...)
}

func (c *Config) resolve(dir string) {
	c.Schema = resolveAll(dir, c.Schema)
	c.Operations = resolveAll(dir, c.Operations)
	c.Watch.Ignore = resolveAll(dir, c.Watch.Ignore)
	c.TargetPath = resolvePath(dir, c.TargetPath)
	if c.OutputSchema.Enabled {
		c.OutputSchema.Path = resolvePath(dir, c.OutputSchema.Target())
	}
	c.Prebuild.SnapshotPath = resolvePath(dir, c.Prebuild.SnapshotPath)
	c.Prebuild.GoSnapshot = resolvePath(dir, c.Prebuild.GoSnapshot)
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func resolveAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(dir, p)
	}
	return out
}

// formatter returns the configured external formatter, or nil for the
// built-in one.
func (c *Config) formatter() gen.Formatter {
	switch c.Formatter.Command {
	case "":
		return nil
	case "prettier":
		if len(c.Formatter.Args) == 0 {
			return gen.Prettier()
		}
	}
	return gen.ExecFormatter{Command: c.Formatter.Command, Args: c.Formatter.Args}
}

// CodegenOptions returns the options of gqlcodegen.Codegen and
// gqlcodegen.WatchSchema. Manager tracks the unique sessions.
func (c *Config) CodegenOptions(logger logrus.FieldLogger, watchEnabled bool, manager *watch.Manager) []gqlcodegen.Option {
	opts := []gqlcodegen.Option{
		gqlcodegen.WithTargetPath(c.TargetPath),
		gqlcodegen.WithSilent(c.Silent),
		gqlcodegen.WithCodegenConfig(&c.Codegen),
		gqlcodegen.WithPreImportCode(c.PreImportCode),
		gqlcodegen.WithPlugins(c.Plugins...),
	}
	if logger != nil {
		opts = append(opts, gqlcodegen.WithLogger(logger))
	}
	if c.Disable != nil {
		opts = append(opts, gqlcodegen.WithDisable(*c.Disable))
	}
	if len(c.Operations) > 0 {
		opts = append(opts, gqlcodegen.WithOperations(c.Operations...))
	}
	if target := c.OutputSchema.Target(); target != "" {
		opts = append(opts, gqlcodegen.WithOutputSchema(target))
	}
	if f := c.formatter(); f != nil {
		opts = append(opts, gqlcodegen.WithFormatter(f))
	}
	if watchEnabled {
		opts = append(opts, gqlcodegen.WithWatch(gqlcodegen.WatchOptions{
			Debounce:    c.Watch.Debounce,
			Ignore:      c.Watch.Ignore,
			UniqueWatch: c.Watch.UniqueWatch,
			Manager:     manager,
		}))
	}
	return opts
}

// LoadOptions returns the options of the schema loader.
func (c *Config) LoadOptions(logger logrus.FieldLogger) []load.Option {
	opts := []load.Option{
		load.WithSilent(c.Silent),
	}
	if logger != nil {
		opts = append(opts, load.WithLogger(logger))
	}
	if c.Prebuild.Enabled != nil {
		opts = append(opts, load.WithPrebuild(*c.Prebuild.Enabled))
	}
	if c.Prebuild.SnapshotPath != "" {
		opts = append(opts, load.WithSnapshotPath(c.Prebuild.SnapshotPath))
	}
	return opts
}
