// Package session defines the document session entity and its store
// contract. A session binds an opaque identifier to one open document
// handle, its feature editors, and its persisted storage file.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/editor"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// State is the session lifecycle state.
type State int

const (
	// Active sessions accept operations; every successful lookup
	// resets their idle clock.
	Active State = iota
	// Expiring marks a session the reaper has claimed for teardown.
	Expiring
	// Destroyed sessions are unreachable; no operation succeeds
	// against them.
	Destroyed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Expiring:
		return "expiring"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Session is the central entity: one uploaded document held open as a
// mutable server-side resource.
//
// The embedded lock serializes access to the document handle. Mutating
// operations and destruction take the write lock; read-only inspection
// takes the read lock. Timestamps and state must only be touched while
// holding the write lock.
type Session struct {
	// ID is a cryptographically random identifier, 32 bytes
	// hex-encoded.
	ID string
	// Filename is the original upload filename.
	Filename string
	// PageCount mirrors the handle's page count. Recomputed from the
	// handle after every mutation.
	PageCount int
	// CreatedAt is when the session was created (UTC).
	CreatedAt time.Time
	// LastModified is the time of the last successful mutation (UTC).
	LastModified time.Time
	// StoragePath is the persisted file. Stable for the session's
	// lifetime; ownership of the upload temp file transfers here.
	StoragePath string
	// Fingerprint is a hash of the most recently persisted bytes.
	Fingerprint uint64
	// Doc is the open document handle, exclusively owned by this
	// session.
	Doc *engine.Document
	// Editors are the feature editors bound to Doc, constructed once
	// at creation.
	Editors *editor.Suite

	mu    sync.RWMutex
	state State
	// lastAccess holds unix nanos. Atomic because concurrent readers
	// refresh the idle clock while holding only the shared lock.
	lastAccess atomic.Int64
}

// New builds an Active session around an open handle, generating its
// identifier and stamping creation timestamps.
func New(filename, storagePath string, doc *engine.Document) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	editors, err := editor.NewSuite(doc)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s := &Session{
		ID:           id,
		Filename:     filename,
		PageCount:    doc.PageCount(),
		CreatedAt:    now,
		LastModified: now,
		StoragePath:  storagePath,
		Doc:          doc,
		Editors:      editors,
		state:        Active,
	}
	s.lastAccess.Store(now.UnixNano())
	return s, nil
}

// Lock takes the session's exclusive lock. Required for mutations,
// persistence, and destruction.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the exclusive lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// RLock takes the shared lock for read-only inspection.
func (s *Session) RLock() { s.mu.RLock() }

// RUnlock releases the shared lock.
func (s *Session) RUnlock() { s.mu.RUnlock() }

// State returns the lifecycle state. Call under either lock.
func (s *Session) State() State { return s.state }

// SetState transitions the lifecycle state. Call under the write lock.
func (s *Session) SetState(state State) { s.state = state }

// Touch refreshes the idle clock. Safe under either lock. Idle expiry
// is keyed on this, not on LastModified, so a session under active
// read-only inspection is not reaped mid-use.
func (s *Session) Touch() { s.lastAccess.Store(time.Now().UTC().UnixNano()) }

// LastAccess returns the last lookup time (UTC).
func (s *Session) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load()).UTC()
}

// IdleFor reports how long the session has gone without a lookup.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastAccess())
}

// GenerateID returns a cryptographically secure random identifier.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}
