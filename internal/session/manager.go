package session

import (
	"sync"

	"github.com/google/uuid"

	"SetupRadar/internal/model"
)

// ProfileSource supplies the portfolio configuration new sessions start from.
type ProfileSource interface {
	Get() model.PortfolioConfig
}

// Manager is a registry of independent sessions. It guards only its map.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     *Deps
	profile  ProfileSource
}

// NewManager creates an empty registry.
func NewManager(deps *Deps, profile ProfileSource) *Manager {
	return &Manager{sessions: make(map[string]*Session), deps: deps, profile: profile}
}

// Create registers a new session under a random id.
func (m *Manager) Create() *Session {
	s := m.Detached(uuid.NewString())
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get returns the session registered under id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, registering a new one if needed.
func (m *Manager) GetOrCreate(id string) *Session {
	if s, ok := m.Get(id); ok {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := m.Detached(id)
	m.sessions[id] = s
	return s
}

// Delete drops a session. It reports whether one existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Detached builds a session that is not registered, for one-shot work.
func (m *Manager) Detached(id string) *Session {
	var p model.PortfolioConfig
	if m.profile != nil {
		p = m.profile.Get()
	}
	return New(id, m.deps, p)
}
