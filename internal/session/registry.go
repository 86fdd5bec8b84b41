package session

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/shoeaxis/internal/sessionid"
)

// Registry keeps independent sessions by id. Sessions never share a shoe
// or history.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ids      *sessionid.Generator
	opts     []Option
	logger   *log.Logger
}

// NewRegistry creates a registry whose sessions are built with opts.
func NewRegistry(logger *log.Logger, ids *sessionid.Generator, opts ...Option) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if ids == nil {
		ids = sessionid.NewGenerator(nil, nil)
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ids:      ids,
		opts:     opts,
		logger:   logger.WithPrefix("registry"),
	}
}

// Create starts a new session with extra options applied after the
// registry defaults.
func (r *Registry) Create(extra ...Option) *Session {
	id := r.ids.Generate()
	opts := append(slices.Clip(r.opts), WithLogger(r.logger))
	s := New(id, append(opts, extra...)...)

	r.mu.Lock()
	r.sessions[id] = s
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("Session created", "session", id, "total", total)
	return s
}

// Get looks up a session.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove forgets a session. It reports whether the session existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	total := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.logger.Info("Session removed", "session", id, "total", total)
	}
	return ok
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the live session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
