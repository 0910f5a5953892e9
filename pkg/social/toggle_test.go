package social

import (
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

func TestToggleLike(t *testing.T) {
	openTestStore(t)

	p, err := CreatePost("alice", "hello", "")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	st, err := ToggleLike(p.ID, "bob")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !st.Liked || st.Count != 1 {
		t.Fatalf("expected liked with count 1, got %+v", st)
	}

	st, err = ToggleLike(p.ID, "bob")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if st.Liked || st.Count != 0 {
		t.Fatalf("expected unliked with count 0, got %+v", st)
	}

	// two distinct likers count independently
	if _, err := ToggleLike(p.ID, "bob"); err != nil {
		t.Fatalf("relike: %v", err)
	}
	st, err = ToggleLike(p.ID, "carol")
	if err != nil {
		t.Fatalf("carol like: %v", err)
	}
	if st.Count != 2 {
		t.Fatalf("expected count 2, got %d", st.Count)
	}
}

func TestToggleLikeMissingPost(t *testing.T) {
	openTestStore(t)

	_, err := ToggleLike("nope", "bob")
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestToggleFollow(t *testing.T) {
	openTestStore(t)

	on, err := ToggleFollow("alice", "bob")
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !on {
		t.Fatal("expected following after first toggle")
	}

	following, err := ListFollowing("alice")
	if err != nil {
		t.Fatalf("list following: %v", err)
	}
	if len(following) != 1 || following[0] != "bob" {
		t.Fatalf("unexpected following list: %v", following)
	}

	followers, err := ListFollowers("bob")
	if err != nil {
		t.Fatalf("list followers: %v", err)
	}
	if len(followers) != 1 || followers[0] != "alice" {
		t.Fatalf("unexpected followers list: %v", followers)
	}

	on, err = ToggleFollow("alice", "bob")
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if on {
		t.Fatal("expected unfollowed after second toggle")
	}
	if is, _ := IsFollowing("alice", "bob"); is {
		t.Fatal("edge must be gone after unfollow")
	}
}

func TestSelfFollowRejected(t *testing.T) {
	openTestStore(t)

	_, err := ToggleFollow("alice", "alice")
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
