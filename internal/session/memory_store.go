package session

import (
	"context"
	"sync"
	"time"

	"github.com/studentportal/webapp/internal/models"
)

// MemoryStore keeps sessions in process memory.
// Sessions are lost on restart; expired entries are removed by PurgeExpired.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

// Save stores or replaces a session
func (s *MemoryStore) Save(ctx context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

// Get returns the session with the given id.
// Expired sessions are reported as missing.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || sess.Expired(s.now()) {
		return nil, models.ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteByUser removes every session of the user
func (s *MemoryStore) DeleteByUser(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// PurgeExpired removes every session that has expired at now and returns how many were removed
func (s *MemoryStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
