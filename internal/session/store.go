// Package session provides session management functionality.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kyiku/jigsaw-puzzle-back/internal/model"
)

type sessionEntry struct {
	player   *model.Player
	lastSeen time.Time
}

// SessionStore keeps player sessions in memory.
// A session expires once it has gone unread for longer than the expiry.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	expiry   time.Duration // 0 means no expiry
	now      func() time.Time
}

// NewSessionStore creates a new SessionStore with no expiry.
func NewSessionStore() *SessionStore {
	return NewSessionStoreWithExpiry(0)
}

// NewSessionStoreWithExpiry creates a new SessionStore whose sessions expire
// after the given duration without access.
func NewSessionStoreWithExpiry(expiry time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		expiry:   expiry,
		now:      time.Now,
	}
}

// Create creates a new session and returns the player and session ID.
func (s *SessionStore) Create() (*model.Player, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := model.NewPlayer()
	sessionID := uuid.New().String()
	player.SessionID = sessionID

	s.sessions[sessionID] = &sessionEntry{player: player, lastSeen: s.now()}

	return player, sessionID
}

// Get retrieves a player by session ID and refreshes its last access time.
// Returns nil and false if the session does not exist or has expired.
func (s *SessionStore) Get(sessionID string) (*model.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}

	now := s.now()
	if s.expired(entry, now) {
		delete(s.sessions, sessionID)
		return nil, false
	}

	entry.lastSeen = now
	return entry.player, true
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Sweep removes every expired session and returns their IDs.
func (s *SessionStore) Sweep() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := make([]string, 0)
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Count returns the number of active sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(entry *sessionEntry, now time.Time) bool {
	return s.expiry > 0 && now.Sub(entry.lastSeen) > s.expiry
}
