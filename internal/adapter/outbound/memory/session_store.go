// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"sync"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
)

// SessionStore implements session.Store with an in-memory map.
// Thread-safe for concurrent access.
//
// Records are stored and returned by reference, not copied: a session
// carries a live document handle and the lock all callers must share.
// The store's own mutex only guards the map; per-session coordination
// happens through the record's lock. Idle expiry is not handled here;
// the coordinator's reaper owns teardown because destroying a session
// means closing its handle and deleting its storage file, not just
// dropping a map entry.
type SessionStore struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
	}
}

// Put registers a session under its ID.
func (s *SessionStore) Put(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	return nil
}

// Get retrieves a session by ID.
// Returns document.ErrSessionNotFound if the session doesn't exist.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, document.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session record. Deleting an unknown ID is a no-op.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// List snapshots the current session records.
func (s *SessionStore) List(ctx context.Context) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

// Len returns the number of sessions currently stored.
// Useful for testing cleanup behavior.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Compile-time interface verification.
var _ session.Store = (*SessionStore)(nil)
