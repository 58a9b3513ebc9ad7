package load

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/syssam/gqlcodegen/internal/env"
	"github.com/syssam/gqlcodegen/watch"
)

// Options configure a Loader.
type Options struct {
	// Prebuild enables reading the snapshot instead of discovering files.
	// It defaults to true in production.
	Prebuild bool
	// SnapshotPath is the snapshot location.
	SnapshotPath string
	// PrebuiltSources takes precedence over the snapshot file when valid.
	PrebuiltSources []string
	// DisableSnapshotWrite skips persisting the snapshot after discovery.
	DisableSnapshotWrite bool
	// Watch configures reloading on file changes.
	Watch WatchOptions
	// Silent suppresses informational logs.
	Silent bool
	// Logger receives the loader logs.
	Logger logrus.FieldLogger
}

// WatchOptions configure the schema watcher.
type WatchOptions struct {
	Enabled bool
	// OnChange receives the fragments of every reload.
	OnChange func(sources []string)
	Debounce time.Duration
	Ignore   []string
	// UniqueWatch closes the previous load-schema session of Manager before
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

// Option configures loading.
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
	opts := &Options{
		Prebuild:     env.IsProduction(),
		SnapshotPath: DefaultSnapshotPath,
	}
	if err := ApplyAll(opts, options...); err != nil {
		return nil, err
	}
	return opts, nil
}

// WithPrebuild enables or disables reading the snapshot.
func WithPrebuild(enabled bool) Option {
	return func(o *Options) error {
		o.Prebuild = enabled
		return nil
	}
}

// WithSnapshotPath sets the snapshot location.
func WithSnapshotPath(path string) Option {
	return func(o *Options) error {
		if path == "" {
			return errors.New("load: snapshot path cannot be empty")
		}
		o.SnapshotPath = path
		return nil
	}
}

// WithPrebuiltSources supplies fragments, typically from a generated Go
// snapshot, used instead of discovery when prebuild is enabled.
func WithPrebuiltSources(sources []string) Option {
	return func(o *Options) error {
		o.PrebuiltSources = sources
		return nil
	}
}

// WithoutSnapshotWrite disables persisting the snapshot.
func WithoutSnapshotWrite() Option {
	return func(o *Options) error {
		o.DisableSnapshotWrite = true
		return nil
	}
}

// WithWatch enables watching with the given options.
func WithWatch(w WatchOptions) Option {
	return func(o *Options) error {
		w.Enabled = true
		o.Watch = w
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

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) error {
		o.Logger = l
		return nil
	}
}
