package registry

import (
	"strings"
	"sync"

	"github.com/mesh-intelligence/quest/internal/sqlite"
)

// Session pins the active project and holds the one open store handle
// for it. Switching projects closes the old handle before opening the
// new one, so reads never see another project's data. A Session is the
// explicit form of the active-project context; callers that need project
// data hold a Session instead of re-reading the registry pointer.
type Session struct {
	mu    sync.Mutex
	reg   *Registry
	name  string
	store *sqlite.Store
}

// NewSession opens a session against the registry's active project,
// seeding the default project first when the registry is empty.
func NewSession(reg *Registry) (*Session, error) {
	if err := reg.EnsureDefault(); err != nil {
		return nil, err
	}

	name, err := reg.Active()
	if err != nil {
		return nil, err
	}
	store, err := reg.OpenStore(name)
	if err != nil {
		return nil, err
	}
	return &Session{reg: reg, name: name, store: store}, nil
}

// Name returns the project this session is pinned to.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Store returns the open store handle for the session's project.
func (s *Session) Store() *sqlite.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Switch persists the active pointer to name and reconnects the session
// store against the new project. The old handle is closed first; on a
// failed open the session is left without a store rather than silently
// pointing at the previous project.
func (s *Session) Switch(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.ToLower(name)
	if err := s.reg.SetActive(name); err != nil {
		return err
	}
	if err := s.store.Close(); err != nil {
		return err
	}

	store, err := s.reg.OpenStore(name)
	if err != nil {
		s.store = nil
		return err
	}
	s.name = name
	s.store = store
	return nil
}

// Refresh re-synchronizes the session with the registry's active
// pointer, reconnecting if it moved, e.g. after the session's project
// was deleted and the registry reassigned the pointer.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.reg.Active()
	if err != nil {
		return err
	}
	if active == s.name && s.store != nil {
		return nil
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return err
		}
	}
	store, err := s.reg.OpenStore(active)
	if err != nil {
		s.store = nil
		return err
	}
	s.name = active
	s.store = store
	return nil
}

// Close releases the session's store handle. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}
