package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

func TestReaper_SweepsIdleSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, store, dir := newTestCoordinator(t, WithIdleTimeout(30*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := createSession(t, c, dir)

	reaper := NewReaper(c, 20*time.Millisecond)
	reaper.Start(ctx)
	defer reaper.Stop()

	deadline := time.After(2 * time.Second)
	for store.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("session was not reaped within 2s")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, err := c.Get(ctx, s.ID); !errors.Is(err, document.ErrSessionNotFound) {
		t.Errorf("Get() after reaping = %v, want ErrSessionNotFound", err)
	}
}

func TestReaper_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, _, _ := newTestCoordinator(t)
	reaper := NewReaper(c, 10*time.Millisecond)
	reaper.Start(context.Background())

	reaper.Stop()
	reaper.Stop()
}

func TestReaper_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, _, _ := newTestCoordinator(t)
	ctx, cancel := context.WithCancel(context.Background())

	reaper := NewReaper(c, 10*time.Millisecond)
	reaper.Start(ctx)

	cancel()
	// Stop waits for the goroutine even though cancellation already
	// asked it to exit.
	reaper.Stop()
}

func TestNewReaper_DefaultInterval(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestCoordinator(t)
	reaper := NewReaper(c, 0)
	if reaper.interval != DefaultReapInterval {
		t.Errorf("interval = %v, want %v", reaper.interval, DefaultReapInterval)
	}
}
