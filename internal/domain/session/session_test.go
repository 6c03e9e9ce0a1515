package session

import (
	"sync"
	"testing"
	"time"
)

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{Active, "active"},
		{Expiring, "expiring"},
		{Destroyed, "destroyed"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestGenerateID(t *testing.T) {
	t.Parallel()

	id, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID() error: %v", err)
	}
	// 32 random bytes hex-encoded
	if len(id) != 64 {
		t.Errorf("len(id) = %d, want 64", len(id))
	}

	other, err := GenerateID()
	if err != nil {
		t.Fatalf("GenerateID() error: %v", err)
	}
	if id == other {
		t.Error("GenerateID() produced a duplicate")
	}
}

func TestSession_StateTransitions(t *testing.T) {
	t.Parallel()

	s := &Session{ID: "state-test"}
	if s.State() != Active {
		t.Errorf("zero-value state = %v, want Active", s.State())
	}

	s.Lock()
	s.SetState(Expiring)
	s.Unlock()
	if s.State() != Expiring {
		t.Errorf("state = %v, want Expiring", s.State())
	}

	s.Lock()
	s.SetState(Destroyed)
	s.Unlock()
	if s.State() != Destroyed {
		t.Errorf("state = %v, want Destroyed", s.State())
	}
}

func TestSession_TouchResetsIdleClock(t *testing.T) {
	t.Parallel()

	s := &Session{ID: "idle-test"}
	// Zero lastAccess makes the session look idle since the unix epoch.
	if s.IdleFor(time.Now().UTC()) < time.Hour {
		t.Fatal("untouched session should report a large idle duration")
	}

	s.Touch()
	if idle := s.IdleFor(time.Now().UTC()); idle > time.Minute {
		t.Errorf("IdleFor after Touch = %v, want near zero", idle)
	}
	if s.LastAccess().IsZero() {
		t.Error("LastAccess should be set after Touch")
	}
}

func TestSession_TouchUnderSharedLock(t *testing.T) {
	t.Parallel()

	s := &Session{ID: "shared-touch"}

	// Readers refresh the idle clock while holding only the shared
	// lock, so concurrent touches must not race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RLock()
				s.Touch()
				_ = s.LastAccess()
				s.RUnlock()
			}
		}()
	}
	wg.Wait()

	if s.LastAccess().IsZero() {
		t.Error("LastAccess should be set after concurrent touches")
	}
}
