// Package service implements the session coordinator and idle reaper,
// the sole authorities for session creation, lookup, persistence, and
// destruction.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/engine"
)

// DefaultIdleTimeout is how long a session may go without a lookup
// before the reaper destroys it.
const DefaultIdleTimeout = 30 * time.Minute

// teardownParallelism bounds concurrent session teardown during
// shutdown.
const teardownParallelism = 4

// Coordinator owns the session store. Routes and editors never touch
// the store directly; every lookup, mutation, persist, and teardown
// goes through here so locking discipline lives in one place.
type Coordinator struct {
	store       session.Store
	workDir     string
	storageDir  string
	idleTimeout time.Duration
	logger      *slog.Logger
	onReap      func(count int)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithIdleTimeout overrides the idle expiry threshold.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

// WithLogger sets the coordinator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReapHook registers a callback invoked with the number of
// sessions each reaper sweep destroyed. Used for metrics.
func WithReapHook(fn func(count int)) Option {
	return func(c *Coordinator) { c.onReap = fn }
}

// WithStorageDir tells the coordinator where persisted session files
// live, so the startup sweep can reclaim PDFs orphaned by a previous
// run. Without it only the work dir is swept.
func WithStorageDir(dir string) Option {
	return func(c *Coordinator) { c.storageDir = dir }
}

// NewCoordinator creates a Coordinator storing working copies under
// workDir.
func NewCoordinator(store session.Store, workDir string, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		workDir:     workDir,
		idleTimeout: DefaultIdleTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IdleTimeout returns the configured idle expiry threshold.
func (c *Coordinator) IdleTimeout() time.Duration { return c.idleTimeout }

// SessionCount returns the number of live sessions.
func (c *Coordinator) SessionCount() int { return c.store.Len() }

// Create opens a document handle over the validated upload at tempPath
// and registers a new session. Ownership of tempPath transfers to the
// session: it becomes the storage path on success and is removed on
// failure. A parse failure yields a LoadError.
func (c *Coordinator) Create(ctx context.Context, tempPath, filename string) (*session.Session, error) {
	doc, err := engine.Open(tempPath, c.workDir)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, document.NewLoadError(filename, err)
	}
	s, err := session.New(filename, tempPath, doc)
	if err != nil {
		_ = doc.Close()
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to build session: %w", err)
	}
	if fp, err := fingerprintFile(s.StoragePath); err == nil {
		s.Fingerprint = fp
	}
	if err := c.store.Put(ctx, s); err != nil {
		_ = doc.Close()
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to register session: %w", err)
	}
	c.logger.Info("session created",
		"session_id", s.ID,
		"filename", filename,
		"pages", s.PageCount)
	return s, nil
}

// lookup fetches a live record. The state check happens again under
// the caller's lock; this early check only avoids lock traffic on
// already-destroyed records.
func (c *Coordinator) lookup(ctx context.Context, id string) (*session.Session, error) {
	s, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get refreshes the session's idle clock and returns the record.
// Callers that read or mutate the document must go through Inspect or
// Mutate instead; Get alone does not hold any lock on return.
func (c *Coordinator) Get(ctx context.Context, id string) (*session.Session, error) {
	s, err := c.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	s.RLock()
	defer s.RUnlock()
	if s.State() != session.Active {
		return nil, document.ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Inspect runs a read-only operation against the session under its
// shared lock. Inspections may run concurrently with each other but
// never overlap a mutation on the same session.
func (c *Coordinator) Inspect(ctx context.Context, id string, fn func(*session.Session) error) error {
	s, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	s.RLock()
	defer s.RUnlock()
	if s.State() != session.Active {
		return document.ErrSessionNotFound
	}
	s.Touch()
	return fn(s)
}

// Mutate runs a mutating operation under the session's exclusive lock.
// On success the cached page count is recomputed from the handle, the
// document is persisted to the storage path, and LastModified is
// bumped. On failure nothing is persisted; the next successful
// mutation will capture whatever state the handle is in.
func (c *Coordinator) Mutate(ctx context.Context, id string, fn func(*session.Session) error) error {
	s, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if s.State() != session.Active {
		return document.ErrSessionNotFound
	}
	s.Touch()
	if err := fn(s); err != nil {
		return err
	}
	s.PageCount = s.Doc.PageCount()
	if err := c.persistLocked(s); err != nil {
		return err
	}
	s.LastModified = time.Now().UTC()
	return nil
}

// Persist flushes the in-memory handle to the storage path without
// running an operation. Exposed for callers that batch mutations.
func (c *Coordinator) Persist(ctx context.Context, id string) (*session.Session, error) {
	s, err := c.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Lock()
	defer s.Unlock()
	if s.State() != session.Active {
		return nil, document.ErrSessionNotFound
	}
	if err := c.persistLocked(s); err != nil {
		return nil, err
	}
	return s, nil
}

// persistLocked writes the handle to the storage path and refreshes
// the fingerprint. Caller holds the write lock.
func (c *Coordinator) persistLocked(s *session.Session) error {
	if err := s.Doc.SaveTo(s.StoragePath); err != nil {
		return fmt.Errorf("failed to persist session %s: %w", s.ID, err)
	}
	if fp, err := fingerprintFile(s.StoragePath); err == nil {
		s.Fingerprint = fp
	}
	return nil
}

// Delete tears a session down: closes the handle, removes the storage
// file, and drops the record. Takes the same exclusive lock as
// mutation, so an in-flight operation finishes before destruction.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	s, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if s.State() == session.Destroyed {
		return document.ErrSessionNotFound
	}
	c.destroyLocked(ctx, s)
	return nil
}

// destroyLocked releases everything a session owns. Caller holds the
// write lock.
func (c *Coordinator) destroyLocked(ctx context.Context, s *session.Session) {
	s.SetState(session.Destroyed)
	if err := s.Doc.Close(); err != nil {
		c.logger.Warn("failed to close document handle",
			"session_id", s.ID, "error", err)
	}
	if err := os.Remove(s.StoragePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to remove storage file",
			"session_id", s.ID, "path", s.StoragePath, "error", err)
	}
	_ = c.store.Delete(ctx, s.ID)
	c.logger.Info("session destroyed", "session_id", s.ID)
}

// ReapIdle destroys every session idle beyond the timeout and returns
// how many it reaped. Each candidate is re-checked under its write
// lock, so a session that was looked up after the snapshot survives.
func (c *Coordinator) ReapIdle(ctx context.Context) int {
	sessions, err := c.store.List(ctx)
	if err != nil {
		return 0
	}
	now := time.Now().UTC()
	reaped := 0
	for _, s := range sessions {
		if s.IdleFor(now) < c.idleTimeout {
			continue
		}
		s.Lock()
		if s.State() == session.Active && s.IdleFor(time.Now().UTC()) >= c.idleTimeout {
			s.SetState(session.Expiring)
			c.logger.Info("session expired",
				"session_id", s.ID,
				"idle", s.IdleFor(now).Round(time.Second))
			c.destroyLocked(ctx, s)
			reaped++
		}
		s.Unlock()
	}
	if reaped > 0 && c.onReap != nil {
		c.onReap(reaped)
	}
	return reaped
}

// CleanupStale removes files orphaned by a previous run: working
// copies with no owning session, plus persisted PDFs in the storage
// dir that no session owns. Called once at startup.
func (c *Coordinator) CleanupStale(ctx context.Context) (int, error) {
	owned := make(map[string]bool)
	if sessions, err := c.store.List(ctx); err == nil {
		for _, s := range sessions {
			owned[filepath.Clean(s.StoragePath)] = true
			if s.Doc != nil {
				wp := filepath.Clean(s.Doc.WorkPath())
				owned[wp] = true
				owned[wp+".scratch"] = true
			}
		}
	}
	removed, err := c.sweepDir(c.workDir, owned, false)
	if err != nil {
		return removed, err
	}
	n, err := c.sweepDir(c.storageDir, owned, true)
	removed += n
	if removed > 0 {
		c.logger.Info("removed stale files", "count", removed)
	}
	return removed, err
}

// sweepDir removes unowned entries in dir. With pdfOnly, directories
// and non-PDF files are left alone; the work dir may be nested under
// the storage dir.
func (c *Coordinator) sweepDir(dir string, owned map[string]bool, pdfOnly bool) (int, error) {
	if dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	removed := 0
	for _, entry := range entries {
		if pdfOnly && (entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".pdf") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if owned[filepath.Clean(path)] {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			c.logger.Warn("failed to remove stale file", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// CleanupAll unconditionally tears down every live session. Called at
// shutdown so handles and temp files are released deterministically.
func (c *Coordinator) CleanupAll(ctx context.Context) error {
	sessions, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(teardownParallelism)
	for _, s := range sessions {
		g.Go(func() error {
			s.Lock()
			defer s.Unlock()
			if s.State() != session.Destroyed {
				c.destroyLocked(ctx, s)
			}
			return nil
		})
	}
	return g.Wait()
}

// fingerprintFile hashes a file's content for ETag generation and
// change detection.
func fingerprintFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
