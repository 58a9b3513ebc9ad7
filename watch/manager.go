package watch

import (
	"maps"
	"slices"
	"sync"
)

// Well-known session kinds.
const (
	KindLoadSchema = "load-schema"
	KindOperations = "operations"
)

// Manager keeps at most one session per kind. Replacing a kind closes the
// previous session before the new one starts.
//
// A process usually owns a single Manager and calls CloseAll on shutdown.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

var defaultManager = NewManager()

// Default returns the process-wide Manager used when a caller asks for
// unique sessions without providing one.
func Default() *Manager {
	return defaultManager
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Replace closes the session registered for kind, then calls start and
// registers the session it returns. When start fails the kind is left empty.
func (m *Manager) Replace(kind string, start func() (*Session, error)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]*Session)
	}
	if prev, ok := m.sessions[kind]; ok {
		prev.Close()
		delete(m.sessions, kind)
	}
	s, err := start()
	if err != nil {
		return nil, err
	}
	m.sessions[kind] = s
	return s, nil
}

// Get returns the session registered for kind, or nil.
func (m *Manager) Get(kind string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[kind]
}

// Kinds returns the registered kinds in sorted order.
func (m *Manager) Kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.sessions))
}

// CloseAll closes and forgets every session. It returns how many sessions
// were still open.
func (m *Manager) CloseAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for kind, s := range m.sessions {
		if s.Close() {
			n++
		}
		delete(m.sessions, kind)
	}
	return n
}
