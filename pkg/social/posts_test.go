package social

import (
	"testing"
	"time"

	"burrow/pkg/apperr"
)

func TestCreateAndGetPost(t *testing.T) {
	openTestStore(t)

	p, err := CreatePost("alice", "hello world", "http://img/x.png")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := GetPost(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Owner != "alice" || got.Text != "hello world" || got.ImageURL != "http://img/x.png" {
		t.Fatalf("unexpected post: %+v", got)
	}

	if _, err := CreatePost("alice", "", ""); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("empty post must fail, got %v", err)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	openTestStore(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Second
		now = func() time.Time { return base.Add(offset) }
		if _, err := CreatePost("alice", "post", ""); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	now = time.Now
	t.Cleanup(func() { now = time.Now })

	posts, err := ListPosts(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for i := 1; i < len(posts); i++ {
		if posts[i-1].CreatedTS < posts[i].CreatedTS {
			t.Fatal("posts must list newest first")
		}
	}

	limited, err := ListPosts(2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 posts with limit, got %d", len(limited))
	}
}

func TestListPostsByOwner(t *testing.T) {
	openTestStore(t)

	if _, err := CreatePost("alice", "a", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreatePost("bob", "b", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	posts, err := ListPostsByOwner("alice", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 || posts[0].Owner != "alice" {
		t.Fatalf("unexpected owner listing: %+v", posts)
	}
}

func TestDeletePostOwnerOnly(t *testing.T) {
	openTestStore(t)

	p, err := CreatePost("alice", "hello", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := DeletePost(p.ID, "bob"); !apperr.Is(err, apperr.CodeUnauthorized) {
		t.Fatalf("non-owner delete must fail, got %v", err)
	}
	if err := DeletePost(p.ID, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetPost(p.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("post must be gone, got %v", err)
	}
}
