package player

import (
	"sync"
	"testing"

	"burrow/pkg/apperr"
	"burrow/pkg/store"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func TestGetStatsDefaultsToZero(t *testing.T) {
	openTestStore(t)

	s, err := GetStats("alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.User != "alice" || s.Coins != 0 || s.XP != 0 || s.Level != 0 {
		t.Fatalf("expected zeroed stats, got %+v", s)
	}
}

func TestGrantAndLevel(t *testing.T) {
	openTestStore(t)

	s, err := Grant("alice", 100, 2500)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if s.Coins != 100 || s.XP != 2500 || s.Level != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}

	if _, err := Grant("alice", -1, 0); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("negative grant must fail, got %v", err)
	}
	if _, err := Grant("alice", 0, 0); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("empty grant must fail, got %v", err)
	}
}

func TestSpendAndOverspend(t *testing.T) {
	openTestStore(t)

	if _, err := Grant("alice", 50, 0); err != nil {
		t.Fatalf("grant: %v", err)
	}
	s, err := Spend("alice", 30)
	if err != nil {
		t.Fatalf("spend: %v", err)
	}
	if s.Coins != 20 {
		t.Fatalf("expected 20 coins, got %d", s.Coins)
	}

	if _, err := Spend("alice", 21); !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("overspend must conflict, got %v", err)
	}
	// balance untouched by the failed spend
	s, err = GetStats("alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Coins != 20 {
		t.Fatalf("failed spend must not change balance, got %d", s.Coins)
	}

	if _, err := Spend("alice", 0); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("zero spend must fail, got %v", err)
	}
}

func TestConcurrentGrantsDoNotLoseUpdates(t *testing.T) {
	openTestStore(t)

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Grant("alice", 1, 10); err != nil {
				t.Errorf("grant: %v", err)
			}
		}()
	}
	wg.Wait()

	s, err := GetStats("alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Coins != workers || s.XP != workers*10 {
		t.Fatalf("lost updates: %+v", s)
	}
}
