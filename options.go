package gqlcodegen

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/syssam/gqlcodegen/compiler/gen"
	"github.com/syssam/gqlcodegen/internal/env"
	"github.com/syssam/gqlcodegen/watch"
)

// Options configure Codegen and WatchSchema.
type Options struct {
	// TargetPath is the generated file. Relative paths are resolved against
	// the working directory.
	TargetPath string
	// Disable turns Codegen into a no-op. It defaults to true in production.
	Disable bool
	// Silent suppresses informational logs and warnings.
	Silent bool
	// CodegenConfig overrides the plugin configuration.
	CodegenConfig *gen.Config
	// PreImportCode is prepended verbatim to the generated code.
	PreImportCode string
	// OperationsGlob matches the operation documents.
	OperationsGlob []string
	// Watch configures regeneration on operation file changes.
	Watch WatchOptions
	// OutputSchema is where the printed schema is written. Empty disables
	// it.
	OutputSchema string
	// Logger receives the logs. Defaults to a stderr logger honoring Silent.
	Logger logrus.FieldLogger
	// Formatter formats the generated code and the output schema. Defaults
	// to gen.TextFormatter bound to the target file.
	Formatter gen.Formatter
	// Plugins are extra registered plugins run after the built-in ones.
	Plugins []string
}

// WatchOptions configure the operations watcher.
type WatchOptions struct {
	Enabled  bool
	Debounce time.Duration
	Ignore   []string
	// UniqueWatch closes the previous operations session of Manager before
	// starting a new one. It defaults to true.
	UniqueWatch *bool
	// Manager tracks unique sessions. Unique sessions without one use
	// watch.Default().
	Manager *watch.Manager
}

func (w WatchOptions) unique() bool {
	return w.UniqueWatch == nil || *w.UniqueWatch
}

// manager returns the Manager tracking unique sessions, or nil when the
// session is independent.
func (w WatchOptions) manager() *watch.Manager {
	switch {
	case !w.unique():
		return nil
	case w.Manager != nil:
		return w.Manager
	default:
		return watch.Default()
	}
}

// Option configures code generation.
type Option func(*Options) error

// Apply applies the option to the given options.
func (o Option) Apply(opts *Options) error {
	return o(opts)
}

// ApplyAll applies all options and joins their errors.
func ApplyAll(opts *Options, options ...Option) error {
	var errs []error
	for _, o := range options {
		if o == nil {
			continue
		}
		if err := o(opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewOptions returns the defaults with options applied.
func NewOptions(options ...Option) (*Options, error) {
	opts := &Options{Disable: env.IsProduction()}
	if err := ApplyAll(opts, options...); err != nil {
		return nil, err
	}
	return opts, nil
}

// WithTargetPath sets the generated file.
func WithTargetPath(path string) Option {
	return func(o *Options) error {
		if path == "" {
			return gen.NewConfigError("TargetPath", path, "target path cannot be empty")
		}
		o.TargetPath = path
		return nil
	}
}

// WithDisable enables or disables the generation.
func WithDisable(disable bool) Option {
	return func(o *Options) error {
		o.Disable = disable
		return nil
	}
}

// WithSilent suppresses informational logs.
func WithSilent(silent bool) Option {
	return func(o *Options) error {
		o.Silent = silent
		return nil
	}
}

// WithCodegenConfig sets the plugin configuration.
func WithCodegenConfig(c *gen.Config) Option {
	return func(o *Options) error {
		if c == nil {
			return gen.NewConfigError("CodegenConfig", nil, "config cannot be nil")
		}
		o.CodegenConfig = c
		return nil
	}
}

// WithPreImportCode sets code emitted before the imports.
func WithPreImportCode(code string) Option {
	return func(o *Options) error {
		o.PreImportCode = code
		return nil
	}
}

// WithOperations adds glob patterns of operation documents.
func WithOperations(globs ...string) Option {
	return func(o *Options) error {
		for _, g := range globs {
			if g == "" {
				return gen.NewConfigError("OperationsGlob", g, "glob pattern cannot be empty")
			}
		}
		o.OperationsGlob = append(o.OperationsGlob, globs...)
		return nil
	}
}

// WithWatch enables watching the operation documents.
func WithWatch(w WatchOptions) Option {
	return func(o *Options) error {
		w.Enabled = true
		o.Watch = w
		return nil
	}
}

// WithOutputSchema writes the printed schema to path, or to
// gen.DefaultOutputSchemaPath when path is empty.
func WithOutputSchema(path string) Option {
	return func(o *Options) error {
		if path == "" {
			path = gen.DefaultOutputSchemaPath
		}
		o.OutputSchema = path
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) error {
		o.Logger = l
		return nil
	}
}

// WithFormatter sets the formatter.
func WithFormatter(f gen.Formatter) Option {
	return func(o *Options) error {
		if f == nil {
			return gen.NewConfigError("Formatter", nil, "formatter cannot be nil")
		}
		o.Formatter = f
		return nil
	}
}

// WithPlugins appends registered plugins to the pipeline.
func WithPlugins(names ...string) Option {
	return func(o *Options) error {
		o.Plugins = append(o.Plugins, names...)
		return nil
	}
}
