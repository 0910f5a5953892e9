package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	s, err := NewSessionStore("redis://" + m.Addr())
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, m
}

func TestSaveAndLookup(t *testing.T) {
	s, _ := setupSessionStore(t)
	ctx := context.Background()

	hash := HashToken("refresh-1")
	if err := s.Save(ctx, hash, "user-1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	uid, err := s.Lookup(ctx, hash)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if uid != "user-1" {
		t.Fatalf("expected user-1, got %s", uid)
	}
}

func TestLookupExpired(t *testing.T) {
	s, m := setupSessionStore(t)
	ctx := context.Background()

	hash := HashToken("refresh-1")
	if err := s.Save(ctx, hash, "user-1", time.Millisecond); err != nil {
		t.Fatalf("save: %v", err)
	}
	m.FastForward(2 * time.Millisecond)

	if _, err := s.Lookup(ctx, hash); err == nil {
		t.Fatal("expected error for expired session")
	}
}

func TestRevoke(t *testing.T) {
	s, _ := setupSessionStore(t)
	ctx := context.Background()

	hash := HashToken("refresh-1")
	if err := s.Save(ctx, hash, "user-1", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Revoke(ctx, hash); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := s.Lookup(ctx, hash); err == nil {
		t.Fatal("expected error after revoke")
	}
	// revoking a missing session is not an error
	if err := s.Revoke(ctx, HashToken("never-saved")); err != nil {
		t.Fatalf("revoke missing: %v", err)
	}
}
