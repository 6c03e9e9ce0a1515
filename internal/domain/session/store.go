package session

import "context"

// Store is the process-wide mapping from session ID to session record.
// Implementations synchronize their own map access independently of
// the per-session locks; holding a store lock while waiting on a
// session lock is not allowed (it would let one slow operation block
// every other session).
type Store interface {
	// Put registers a session under its ID.
	Put(ctx context.Context, s *Session) error
	// Get returns the session for id, or document.ErrSessionNotFound.
	// The record is returned by reference; callers coordinate through
	// its lock.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes the record. Deleting an unknown ID is a no-op.
	Delete(ctx context.Context, id string) error
	// List snapshots all current records.
	List(ctx context.Context) ([]*Session, error)
	// Len returns the number of stored sessions.
	Len() int
}
