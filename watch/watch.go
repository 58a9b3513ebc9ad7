// Package watch runs filesystem watch sessions bound to glob patterns.
//
// A Session watches the directories that can hold files matching its
// patterns and reports relevant changes to a handler:
//
//	s, err := watch.Start([]string{"graphql/**/*.graphql"}, func(e watch.Event) {
//	    log.Printf("%s %s", e.Path, e.Op)
//	}, watch.Options{})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	if err := s.Ready(ctx); err != nil {
//	    return err
//	}
//
// Events that happen while the session registers its directories are
// discarded. Only events observed after the session is ready reach the
// handler, one at a time.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/syssam/gqlcodegen/deferred"
	"github.com/syssam/gqlcodegen/internal/logging"
)

// Op describes the kind of change reported by a session.
type Op string

// Reported operations.
const (
	Add    Op = "add"
	Change Op = "change"
	Unlink Op = "unlink"
	AddDir Op = "addDir"
)

// Event is a filesystem change relevant to a session.
type Event struct {
	Op   Op
	Path string
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return e.Path + " " + string(e.Op)
}

// Handler receives the events of a session.
type Handler func(Event)

// Options configure a session.
type Options struct {
	// Debounce coalesces events arriving within the given window. The last
	// operation reported for a path wins.
	Debounce time.Duration
	// Ignore lists glob patterns of paths that never reach the handler.
	Ignore []string
	// Logger receives watcher errors and handler panics.
	Logger logrus.FieldLogger
	// Filter, when set, drops file events whose path it rejects.
	Filter func(path string) bool
}

// ErrClosed is reported by Ready when the session was closed before it
// became ready.
var ErrClosed = errors.New("watch: session closed")

// Session is one running watcher.
type Session struct {
	// ID identifies the session in logs.
	ID string

	patterns []string
	ignore   []string
	bases    []string
	filter   func(string) bool
	handler  Handler
	debounce time.Duration
	log      logrus.FieldLogger

	watcher *fsnotify.Watcher
	ready   *deferred.Deferred[struct{}]
	stop    chan struct{}
	done    chan struct{}
	closed  atomic.Bool
}

// Start creates a session for patterns and begins registering the watched
// directories in the background. Use Ready to wait for the registration.
//
// A pattern naming an existing directory watches every file below it, and a
// pattern prefixed with "!" is added to the ignore list.
func Start(patterns []string, handler Handler, opts Options) (*Session, error) {
	if handler == nil {
		return nil, errors.New("watch: nil handler")
	}
	s := &Session{
		ID:       uuid.NewString(),
		handler:  handler,
		debounce: opts.Debounce,
		filter:   opts.Filter,
		ready:    deferred.New[struct{}](),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	ignore := slices.Clone(opts.Ignore)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
			continue
		case strings.HasPrefix(p, "!"):
			ignore = append(ignore, p[1:])
			continue
		}
		abs, base, err := absPattern(expandDir(p))
		if err != nil {
			return nil, err
		}
		s.patterns = append(s.patterns, abs)
		s.bases = append(s.bases, base)
	}
	if len(s.patterns) == 0 {
		return nil, errors.New("watch: no patterns")
	}
	for _, p := range ignore {
		abs, _, err := absPattern(expandDir(p))
		if err != nil {
			return nil, err
		}
		s.ignore = append(s.ignore, abs)
	}
	s.log = logging.Component(opts.Logger, "watch").WithField("session", s.ID)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	s.watcher = w
	go s.run()
	return s, nil
}

// expandDir turns a pattern naming an existing directory into a pattern
// matching every file below it.
func expandDir(pattern string) string {
	if strings.ContainsAny(pattern, "*?[{") {
		return pattern
	}
	if info, err := os.Stat(pattern); err == nil && info.IsDir() {
		return filepath.Join(pattern, "**", "*")
	}
	return pattern
}

// absPattern makes pattern absolute and returns it in slash form together
// with its static base directory.
func absPattern(pattern string) (string, string, error) {
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return "", "", fmt.Errorf("watch: invalid pattern %q", pattern)
	}
	abs := pattern
	if !filepath.IsAbs(abs) {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("watch: resolve %q: %w", pattern, err)
		}
		abs = filepath.Join(wd, pattern)
	}
	abs = filepath.ToSlash(abs)
	base, _ := doublestar.SplitPattern(abs)
	return abs, filepath.FromSlash(base), nil
}

// Patterns returns the absolute patterns of the session.
func (s *Session) Patterns() []string {
	return slices.Clone(s.patterns)
}

// Ready waits until the session watches its directories. It reports the
// registration error, if any.
func (s *Session) Ready(ctx context.Context) error {
	_, err := s.ready.Wait(ctx)
	return err
}

// Done returns a channel closed once the session stopped watching.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close stops the session. It reports true on the first call and false on
// every later one. Close does not wait for a running handler, so it is safe
// to call from inside the handler.
func (s *Session) Close() bool {
	if !s.closed.CompareAndSwap(false, true) {
		return false
	}
	close(s.stop)
	return true
}

func (s *Session) run() {
	defer close(s.done)
	defer func() { _ = s.watcher.Close() }()

	if err := s.register(); err != nil {
		s.ready.Reject(err)
		return
	}
	if err := s.drain(); err != nil {
		s.ready.Reject(err)
		return
	}
	if s.Closed() {
		s.ready.Reject(ErrClosed)
		return
	}
	s.ready.Resolve(struct{}{})
	s.log.Debug("watcher ready")
	s.loop()
}

// register adds every existing base directory recursively. A missing base
// is replaced by its nearest existing ancestor, watched on its own, so the
// base is picked up once it is created.
func (s *Session) register() error {
	for _, base := range s.bases {
		dir := base
		for {
			info, err := os.Stat(dir)
			if err == nil && info.IsDir() {
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return fmt.Errorf("watch: no existing directory for %s", base)
			}
			dir = parent
		}
		if dir != base {
			if err := s.watcher.Add(dir); err != nil {
				return fmt.Errorf("watch: add %s: %w", dir, err)
			}
			continue
		}
		if err := s.addTree(dir, nil); err != nil {
			return err
		}
	}
	return nil
}

// addTree watches root and the relevant directories below it. When found is
// not nil it receives the files already present, which happens for
// directories created after the session became ready.
func (s *Session) addTree(root string, found func(Event)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			if found != nil {
				found(Event{Op: Add, Path: path})
			}
			return nil
		}
		if !s.relevantDir(path) {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// relevantDir reports whether dir lies inside a base directory or on the way
// to one.
func (s *Session) relevantDir(dir string) bool {
	for _, base := range s.bases {
		if within(dir, base) || within(base, dir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// drain discards the events queued during registration.
func (s *Session) drain() error {
	for {
		select {
		case _, ok := <-s.watcher.Events:
			if !ok {
				return ErrClosed
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return ErrClosed
			}
			return fmt.Errorf("watch: %w", err)
		default:
			return nil
		}
	}
}

func (s *Session) loop() {
	var (
		pending []Event
		timer   *time.Timer
		fire    <-chan time.Time
	)
	emit := func(e Event) {
		if !s.relevant(e) {
			return
		}
		if s.debounce <= 0 {
			s.dispatch(e)
			return
		}
		pending = slices.DeleteFunc(pending, func(p Event) bool { return p.Path == e.Path })
		pending = append(pending, e)
		if timer == nil {
			timer = time.NewTimer(s.debounce)
		} else {
			timer.Reset(s.debounce)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-s.stop:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.translate(ev, emit)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Error("watcher error")
		case <-fire:
			fire = nil
			batch := pending
			pending = nil
			for _, e := range batch {
				if s.Closed() {
					return
				}
				s.dispatch(e)
			}
		}
	}
}

// translate maps an fsnotify event to session events.
func (s *Session) translate(ev fsnotify.Event, emit func(Event)) {
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if !info.IsDir() {
			emit(Event{Op: Add, Path: ev.Name})
			return
		}
		if !s.relevantDir(ev.Name) {
			return
		}
		emit(Event{Op: AddDir, Path: ev.Name})
		if err := s.addTree(ev.Name, emit); err != nil {
			s.log.WithError(err).Warn("cannot watch new directory")
		}
	case ev.Has(fsnotify.Write):
		emit(Event{Op: Change, Path: ev.Name})
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		emit(Event{Op: Unlink, Path: ev.Name})
	}
}

// relevant reports whether path matches a pattern and no ignore pattern.
// Directory events bypass the filter.
func (s *Session) relevant(e Event) bool {
	if s.filter != nil && e.Op != AddDir && !s.filter(e.Path) {
		return false
	}
	slash := filepath.ToSlash(e.Path)
	for _, p := range s.ignore {
		if ok, _ := doublestar.Match(p, slash); ok {
			return false
		}
	}
	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, slash); ok {
			return true
		}
	}
	return false
}

func (s *Session) dispatch(e Event) {
	if s.Closed() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"path":  e.Path,
				"event": string(e.Op),
				"panic": r,
			}).Error("watch handler panicked")
		}
	}()
	s.handler(e)
}
