package library

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL bounds how long an interactive session stays
// valid without re-authenticating.
const DefaultSessionTTL = 12 * time.Hour

// Session identifies one authenticated interactive session. Commands
// carry a session instead of consulting a global current user, so
// multiple sessions can coexist in tests even though the shell only
// ever holds one.
type Session struct {
	ID        string
	Username  string
	Admin     bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its TTL.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionManager tracks open sessions in memory. Sessions are not
// persisted; a restart logs everyone out.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionManager creates a manager with the given TTL; ttl <= 0
// falls back to DefaultSessionTTL.
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{sessions: make(map[string]*Session), ttl: ttl}
}

// Open creates a session for the user.
func (m *SessionManager) Open(user *User) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Admin:     user.Admin,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given ID, or nil if it is unknown
// or expired. Expired sessions are dropped on lookup.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if s.Expired() {
		delete(m.sessions, id)
		return nil
	}
	return s
}

// Close removes the session. Closing an unknown ID is a no-op.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
