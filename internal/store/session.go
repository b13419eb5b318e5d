package store

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/prodline/internal/model"
)

// SessionStore maps opaque tokens to login-time identity snapshots. Sessions
// live only in this process: created at login, destroyed at logout, and
// patched in place when the admin API edits the logged-in user's own row.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.SessionUser
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.SessionUser)}
}

// Create stores a snapshot under a fresh random token and returns the token.
func (s *SessionStore) Create(user model.SessionUser) string {
	token := newToken()
	s.mu.Lock()
	s.sessions[token] = user
	s.mu.Unlock()
	return token
}

// Get returns the snapshot for a token.
func (s *SessionStore) Get(token string) (model.SessionUser, bool) {
	s.mu.RLock()
	user, ok := s.sessions[token]
	s.mu.RUnlock()
	return user, ok
}

// Delete removes a session. Deleting an unknown token is a no-op.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// UpdateByUserID applies fn to every live session snapshot belonging to the
// given user id, so profile changes take effect without a re-login.
func (s *SessionStore) UpdateByUserID(id int64, fn func(u *model.SessionUser)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, user := range s.sessions {
		if user.ID == id {
			fn(&user)
			s.sessions[token] = user
		}
	}
}

func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
