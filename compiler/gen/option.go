package gen

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Options configures a Generator.
type Options struct {
	// Config is the plugin configuration. It is normalized per pass.
	Config *Config
	// Preamble is prepended verbatim to the generated text.
	Preamble string
	// Silent suppresses warnings.
	Silent bool
	// Operations are the glob patterns of the operation documents. Empty
	// means no operation plugins run.
	Operations []string
	// Formatter formats the assembled text. Defaults to TextFormatter.
	Formatter Formatter
	// Logger receives warnings. Defaults to a discarding logger.
	Logger logrus.FieldLogger
	// Registry resolves plugin names. Defaults to DefaultRegistry.
	Registry *Registry
	// Plugins are extra plugin names run after the built-in pipeline.
	Plugins []string
}

// Option configures code generation.
type Option func(*Options) error

// WithConfig sets the plugin configuration.
func WithConfig(c *Config) Option {
	return func(o *Options) error {
		if c == nil {
			return NewConfigError("Config", nil, "config cannot be nil")
		}
		o.Config = c
		return nil
	}
}

// WithPreamble sets code emitted before the imports.
func WithPreamble(code string) Option {
	return func(o *Options) error {
		o.Preamble = code
		return nil
	}
}

// WithSilent suppresses warnings.
func WithSilent(silent bool) Option {
	return func(o *Options) error {
		o.Silent = silent
		return nil
	}
}

// WithOperations enables the operation plugins for the documents matching
// the glob patterns.
func WithOperations(globs ...string) Option {
	return func(o *Options) error {
		for _, g := range globs {
			if g == "" {
				return NewConfigError("Operations", g, "glob pattern cannot be empty")
			}
		}
		o.Operations = append(o.Operations, globs...)
		return nil
	}
}

// WithFormatter sets the formatter of the generated text.
func WithFormatter(f Formatter) Option {
	return func(o *Options) error {
		if f == nil {
			return NewConfigError("Formatter", nil, "formatter cannot be nil")
		}
		o.Formatter = f
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

// WithRegistry sets the plugin registry.
func WithRegistry(r *Registry) Option {
	return func(o *Options) error {
		if r == nil {
			return NewConfigError("Registry", nil, "registry cannot be nil")
		}
		o.Registry = r
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

// Apply applies the option and returns any error.
func (opt Option) Apply(o *Options) error {
	return opt(o)
}

// ApplyAll applies every option and joins their errors.
func ApplyAll(o *Options, opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewOptions returns Options with defaults applied and opts on top.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{
		Config:    &Config{},
		Formatter: TextFormatter{},
		Registry:  defaultRegistry,
	}
	if err := ApplyAll(o, opts...); err != nil {
		return nil, err
	}
	return o, nil
}
