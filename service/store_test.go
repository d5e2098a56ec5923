package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/model"
	"github.com/weddingguard/backend/shell"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(maxSessions int, ttl time.Duration) (*SessionStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	return &SessionStore{
		sessions:    make(map[string]*sessionEntry),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         clock.Now,
	}, clock
}

func TestSessionStoreGetUnknown(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)

	state, err := store.Get("missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if state.Section != shell.SectionAnalyze || state.Upload != shell.UploadIdle {
		t.Errorf("Expected initial state, got %+v", state)
	}
	if store.Count() != 0 {
		t.Error("Get must not create a session")
	}
}

func TestSessionStoreUpdateRoundTrip(t *testing.T) {
	store, clock := newTestStore(10, time.Hour)
	ref := "표준약관"

	_, err := store.Update("s1", func(s *shell.ViewState) error {
		s.OpenReport(model.NewStructuredReport(&model.AnalysisResult{
			ClauseAnalysis: []model.Clause{{ID: "c1", Severity: model.SeverityHigh, StandardReference: &ref}},
		}), "an-1")
		s.ShowToast("hi", shell.ToastSuccess, clock.Now())
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	state, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !state.ModalOpen || state.AnalysisID != "an-1" {
		t.Errorf("Expected open modal for an-1, got %+v", state)
	}
	clause := state.Report.Result.ClauseAnalysis[0]
	if clause.StandardReference == nil || *clause.StandardReference != ref {
		t.Errorf("Expected standard reference to survive encoding, got %v", clause.StandardReference)
	}
	if state.ActiveToast(clock.Now().Add(time.Second)) == nil {
		t.Error("Expected toast to still be active")
	}
}

func TestSessionStoreCopiesAreIndependent(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	store.Update("s1", func(s *shell.ViewState) error { return s.Navigate(shell.SectionHome) })

	a, _ := store.Get("s1")
	a.Section = shell.SectionAnalyze

	b, _ := store.Get("s1")
	if b.Section != shell.SectionHome {
		t.Errorf("Mutating a copy leaked into the store: %s", b.Section)
	}
}

func TestSessionStoreUpdateErrorNotSaved(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	boom := errors.New("boom")

	_, err := store.Update("s1", func(s *shell.ViewState) error {
		s.Section = shell.SectionHome
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	state, _ := store.Get("s1")
	if state.Section != shell.SectionAnalyze {
		t.Errorf("Failed update must not be saved, got %s", state.Section)
	}
}

func TestSessionStoreLoadingGuard(t *testing.T) {
	store, clock := newTestStore(10, time.Hour)

	var attempts []string
	var refused int
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var attempt string
			_, err := store.Update("s1", func(s *shell.ViewState) error {
				var err error
				attempt, err = s.BeginUpload(clock.Now())
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, shell.ErrUploadInProgress) {
				refused++
			} else if err == nil {
				attempts = append(attempts, attempt)
			}
		}()
	}
	wg.Wait()

	if len(attempts) != 1 || refused != 7 {
		t.Errorf("Expected exactly one upload to start, got %d started and %d refused", len(attempts), refused)
	}
}

func TestSessionStoreCleanupExpired(t *testing.T) {
	store, clock := newTestStore(0, 30*time.Minute)

	store.Update("old", func(*shell.ViewState) error { return nil })
	clock.Advance(20 * time.Minute)
	store.Update("recent", func(*shell.ViewState) error { return nil })
	clock.Advance(15 * time.Minute)

	if removed := store.CleanupExpired(); removed != 1 {
		t.Errorf("Expected 1 removed, got %d", removed)
	}
	if store.Count() != 1 {
		t.Errorf("Expected 1 session left, got %d", store.Count())
	}
	if _, ok := store.sessions["recent"]; !ok {
		t.Error("Expected recent session to remain")
	}
}

func TestSessionStoreMaxSessions(t *testing.T) {
	store, clock := newTestStore(3, time.Hour)

	for i := 0; i < 5; i++ {
		store.Update(fmt.Sprintf("s%d", i), func(*shell.ViewState) error { return nil })
		clock.Advance(time.Second)
	}
	// s0 and s1 are the least recently used
	if store.Count() != 3 {
		t.Fatalf("Expected 3 sessions, got %d", store.Count())
	}
	for _, id := range []string{"s0", "s1"} {
		if _, ok := store.sessions[id]; ok {
			t.Errorf("Expected %s to be evicted", id)
		}
	}
}

func beginUpload(t *testing.T, store *SessionStore, id string, now time.Time) string {
	t.Helper()
	var attempt string
	_, err := store.Update(id, func(s *shell.ViewState) error {
		var err error
		attempt, err = s.BeginUpload(now)
		return err
	})
	if err != nil {
		t.Fatalf("BeginUpload failed: %v", err)
	}
	return attempt
}

func completeUpload(t *testing.T, store *SessionStore, id, attempt string, now time.Time) (*shell.ViewState, bool) {
	t.Helper()
	var applied bool
	state, err := store.Update(id, func(s *shell.ViewState) error {
		applied = s.CompleteUpload(attempt, model.NewStructuredReport(&model.AnalysisResult{}), "an-1", now)
		return nil
	})
	if err != nil {
		t.Fatalf("CompleteUpload failed: %v", err)
	}
	return state, applied
}

func TestSessionStoreMaxSessionsKeepsInFlightUpload(t *testing.T) {
	store, clock := newTestStore(1, time.Hour)

	attempt := beginUpload(t, store, "a", clock.Now())
	clock.Advance(time.Second)
	store.Update("b", func(*shell.ViewState) error { return nil })

	if _, ok := store.sessions["a"]; !ok {
		t.Fatal("Expected the loading session to survive eviction")
	}

	state, applied := completeUpload(t, store, "a", attempt, clock.Now())
	if !applied || !state.ModalOpen || state.Upload != shell.UploadIdle {
		t.Errorf("Expected the result to be applied, got applied=%v state=%+v", applied, state)
	}

	// once idle, "a" is an ordinary eviction candidate again
	clock.Advance(time.Second)
	store.Update("c", func(*shell.ViewState) error { return nil })
	if store.Count() != 1 {
		t.Errorf("Expected the cap to be restored, got %d sessions", store.Count())
	}
	if _, ok := store.sessions["c"]; !ok {
		t.Error("Expected the most recent session to remain")
	}
}

func TestSessionStoreCleanupExpiredKeepsInFlightUpload(t *testing.T) {
	store, clock := newTestStore(0, 30*time.Minute)

	attempt := beginUpload(t, store, "slow", clock.Now())
	store.Update("idle", func(*shell.ViewState) error { return nil })
	clock.Advance(45 * time.Minute)

	if removed := store.CleanupExpired(); removed != 1 {
		t.Errorf("Expected only the idle session removed, got %d", removed)
	}
	if _, applied := completeUpload(t, store, "slow", attempt, clock.Now()); !applied {
		t.Error("Expected the late result to land in the kept session")
	}

	clock.Advance(45 * time.Minute)
	if removed := store.CleanupExpired(); removed != 1 {
		t.Errorf("Expected the finished session to expire, got %d removed", removed)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	store.Update("s1", func(*shell.ViewState) error { return nil })
	store.Delete("s1")
	if store.Count() != 0 {
		t.Error("Expected session to be deleted")
	}
}

func TestSessionStoreRunStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := NewSessionStore(&config.SessionConfig{TTLMinutes: 1, MaxSessions: 10})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx, time.Millisecond) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSessionStoreRunWithoutInterval(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx, 0) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
