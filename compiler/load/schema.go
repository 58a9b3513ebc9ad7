package load

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/syssam/gqlcodegen/internal/logging"
	"github.com/syssam/gqlcodegen/watch"
)

// Loader loads schema fragments from glob patterns.
type Loader struct {
	patterns []string
	opts     *Options
	log      logrus.FieldLogger
	caller   string

	writes sync.WaitGroup
}

// New returns a Loader for patterns.
func New(patterns []string, options ...Option) (*Loader, error) {
	return newLoader(patterns, 2, options...)
}

func newLoader(patterns []string, skip int, options ...Option) (*Loader, error) {
	opts, err := NewOptions(options...)
	if err != nil {
		return nil, err
	}
	return &Loader{
		patterns: patterns,
		opts:     opts,
		log:      logging.Component(opts.Logger, "load"),
		caller:   callerLocation(skip),
	}, nil
}

// Result is the outcome of Load.
type Result struct {
	// Sources are the schema fragments in discovery order.
	Sources []string
	// Prebuilt reports that Sources came from a snapshot.
	Prebuilt bool

	session *watch.Session
}

// Close stops the watcher. It reports true on the first effective close and
// false afterwards, or when nothing is watched.
func (r *Result) Close() bool {
	if r == nil || r.session == nil {
		return false
	}
	return r.session.Close()
}

// Ready waits for the watcher to be ready. Without a watcher it returns nil.
func (r *Result) Ready(ctx context.Context) error {
	if r == nil || r.session == nil {
		return nil
	}
	return r.session.Ready(ctx)
}

// Session returns the watch session, if any.
func (r *Result) Session() *watch.Session {
	return r.session
}

// LoadSchema is a shortcut for New followed by Load.
func LoadSchema(ctx context.Context, patterns []string, options ...Option) (*Result, error) {
	l, err := newLoader(patterns, 2, options...)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx)
}

// Load returns the schema fragments, from the snapshot when prebuild is
// enabled and a valid one exists, otherwise from discovery. When watching is
// enabled a session is started and reloads are passed to OnChange.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	res := &Result{}
	if l.opts.Prebuild {
		sources, ok := l.prebuilt()
		res.Sources, res.Prebuilt = sources, ok
	}
	if !res.Prebuilt {
		sources, err := l.Discover(ctx)
		if err != nil {
			return nil, err
		}
		res.Sources = sources
	}
	if l.opts.Watch.Enabled {
		s, err := l.watch()
		if err != nil {
			return nil, err
		}
		res.session = s
	}
	return res, nil
}

func (l *Loader) prebuilt() ([]string, bool) {
	if sources, ok := ValidSources(l.opts.PrebuiltSources); ok {
		return sources, true
	}
	sources, ok, err := ReadSnapshot(l.opts.SnapshotPath)
	if err != nil {
		l.log.WithError(err).Warn("ignoring schema snapshot")
		return nil, false
	}
	return sources, ok
}

// Discover reads, normalizes and filters the fragments matched by the
// patterns, then persists them as the snapshot in the background.
func (l *Loader) Discover(ctx context.Context) ([]string, error) {
	files, err := LoadFiles(ctx, l.patterns)
	if err != nil {
		return nil, err
	}
	sources := Fragments(files)
	if len(sources) == 0 {
		return nil, NewNoSchemaFilesError(l.patterns, l.caller)
	}
	if !l.opts.DisableSnapshotWrite {
		l.persist(sources)
	}
	return sources, nil
}

func (l *Loader) persist(sources []string) {
	l.writes.Add(1)
	go func() {
		defer l.writes.Done()
		if _, err := WriteSnapshot(l.opts.SnapshotPath, sources); err != nil {
			l.log.WithError(err).Error("persist schema snapshot")
		}
	}()
}

// Flush waits for the pending snapshot writes.
func (l *Loader) Flush() {
	l.writes.Wait()
}

func (l *Loader) watch() (*watch.Session, error) {
	w := l.opts.Watch
	start := func() (*watch.Session, error) {
		return watch.Start(l.patterns, l.reload, watch.Options{
			Debounce: w.Debounce,
			Ignore:   w.Ignore,
			Logger:   l.log,
			Filter:   IsGraphQLFile,
		})
	}
	var (
		s   *watch.Session
		err error
	)
	if m := w.manager(); m != nil {
		s, err = m.Replace(watch.KindLoadSchema, start)
	} else {
		s, err = start()
	}
	if err != nil {
		return nil, fmt.Errorf("load: watch schema: %w", err)
	}
	go func() {
		if err := s.Ready(context.Background()); err != nil {
			l.log.WithError(err).Error("schema watcher failed")
			return
		}
		l.info(fmt.Sprintf("Watching for changes in %s", strings.Join(l.patterns, ", ")))
	}()
	return s, nil
}

// reload runs for every watch event. Failures are logged so the watcher
// survives a bad edit.
func (l *Loader) reload(e watch.Event) {
	l.info(fmt.Sprintf("%s %s, loading new schema...", e.Path, e.Op))
	sources, err := l.Discover(context.Background())
	if err != nil {
		l.log.WithError(err).Error("reload schema")
		return
	}
	if l.opts.Watch.OnChange == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("panic", r).Error("schema change callback panicked")
		}
	}()
	l.opts.Watch.OnChange(sources)
}

func (l *Loader) info(msg string) {
	if !l.opts.Silent {
		l.log.Info(msg)
	}
}
