// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/session"
)

func TestSessionStore_PutAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore()

	sess := &session.Session{
		ID:       "test-session-1",
		Filename: "report.pdf",
	}

	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := store.Get(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Filename != "report.pdf" {
		t.Errorf("Filename = %q, want %q", got.Filename, "report.pdf")
	}
}

func TestSessionStore_GetNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore()

	_, err := store.Get(ctx, "nonexistent")
	if !errors.Is(err, document.ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionStore_ReturnsByReference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore()

	sess := &session.Session{ID: "shared", PageCount: 3}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	// The record carries the live document handle and lock, so every
	// caller must see the same instance.
	got, err := store.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != sess {
		t.Fatal("Get() returned a copy, want the stored record")
	}

	got.PageCount = 7
	again, err := store.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if again.PageCount != 7 {
		t.Errorf("PageCount = %d, want mutation through prior Get to be visible", again.PageCount)
	}
}

func TestSessionStore_PutOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Put(ctx, &session.Session{ID: "dup", Filename: "old.pdf"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := store.Put(ctx, &session.Session{ID: "dup", Filename: "new.pdf"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := store.Get(ctx, "dup")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Filename != "new.pdf" {
		t.Errorf("Filename = %q, want the latest record", got.Filename)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestSessionStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Put(ctx, &session.Session{ID: "to-delete"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	if err := store.Delete(ctx, "to-delete"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	_, err := store.Get(ctx, "to-delete")
	if !errors.Is(err, document.ErrSessionNotFound) {
		t.Errorf("Get() after delete = %v, want ErrSessionNotFound", err)
	}

	// Deleting an unknown ID is a no-op, not an error.
	if err := store.Delete(ctx, "to-delete"); err != nil {
		t.Errorf("Delete() of missing ID error: %v", err)
	}
}

func TestSessionStore_ListAndLen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore()

	if store.Len() != 0 {
		t.Errorf("Len() of empty store = %d, want 0", store.Len())
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List() of empty store = %d entries, want 0", len(list))
	}

	for i := 0; i < 5; i++ {
		if err := store.Put(ctx, &session.Session{ID: fmt.Sprintf("sess-%d", i)}); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	if store.Len() != 5 {
		t.Errorf("Len() = %d, want 5", store.Len())
	}
	list, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 5 {
		t.Errorf("List() = %d entries, want 5", len(list))
	}

	seen := make(map[string]bool)
	for _, s := range list {
		seen[s.ID] = true
	}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("sess-%d", i)
		if !seen[id] {
			t.Errorf("List() missing %s", id)
		}
	}
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore()

	const goroutines = 10
	const opsPerGoroutine = 50

	var wg sync.WaitGroup
	errCh := make(chan error, goroutines*opsPerGoroutine)

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				id := fmt.Sprintf("concurrent-%d-%d", g, i)
				if err := store.Put(ctx, &session.Session{ID: id}); err != nil {
					errCh <- fmt.Errorf("Put(%s): %w", id, err)
					continue
				}
				if _, err := store.Get(ctx, id); err != nil {
					errCh <- fmt.Errorf("Get(%s): %w", id, err)
					continue
				}
				if err := store.Delete(ctx, id); err != nil {
					errCh <- fmt.Errorf("Delete(%s): %w", id, err)
				}
			}
		}(g)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Error(err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() after concurrent churn = %d, want 0", store.Len())
	}
}
