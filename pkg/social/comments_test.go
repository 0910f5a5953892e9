package social

import (
	"testing"

	"burrow/pkg/apperr"
	"burrow/pkg/models"
)

func TestAddCommentAndReplies(t *testing.T) {
	openTestStore(t)

	p, err := CreatePost("alice", "hello", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	root, err := AddComment(p.ID, "bob", "first", "")
	if err != nil {
		t.Fatalf("root comment: %v", err)
	}
	reply, err := AddComment(p.ID, "carol", "re: first", root.ID)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if _, err := AddComment(p.ID, "dave", "re: re: first", reply.ID); err != nil {
		t.Fatalf("nested reply: %v", err)
	}
	if _, err := AddComment(p.ID, "erin", "second", ""); err != nil {
		t.Fatalf("second root: %v", err)
	}

	trees, err := ListComments(p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(trees))
	}
	if trees[0].ID != root.ID {
		t.Fatalf("expected first root %s, got %s", root.ID, trees[0].ID)
	}
	if len(trees[0].Replies) != 1 || trees[0].Replies[0].ID != reply.ID {
		t.Fatalf("reply not under its parent: %+v", trees[0])
	}
	if len(trees[0].Replies[0].Replies) != 1 {
		t.Fatal("grandchild reply missing")
	}
}

func TestAddCommentMissingParent(t *testing.T) {
	openTestStore(t)

	p, err := CreatePost("alice", "hello", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = AddComment(p.ID, "bob", "orphan", "no-such-comment")
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	// the failed insert must not mutate the post
	got, err := GetPost(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Comments) != 0 {
		t.Fatalf("expected no comments after failed insert, got %d", len(got.Comments))
	}
}

func TestCommentDepthCeiling(t *testing.T) {
	openTestStore(t)

	p, err := CreatePost("alice", "hello", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	parent := ""
	var last models.CommentNode
	for i := 0; i < MaxCommentDepth; i++ {
		last, err = AddComment(p.ID, "bob", "deep", parent)
		if err != nil {
			t.Fatalf("comment at depth %d: %v", i, err)
		}
		parent = last.ID
	}
	_, err = AddComment(p.ID, "bob", "too deep", last.ID)
	if !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error past the ceiling, got %v", err)
	}
}

func TestBuildCommentTreesDropsOrphansAndCycles(t *testing.T) {
	arena := []models.CommentNode{
		{ID: "a", Text: "root"},
		{ID: "b", Parent: "a"},
		{ID: "c", Parent: "missing"},
		{ID: "x", Parent: "y"},
		{ID: "y", Parent: "x"},
	}
	trees := BuildCommentTrees(arena)
	if len(trees) != 1 {
		t.Fatalf("expected single root, got %d", len(trees))
	}
	if len(trees[0].Replies) != 1 || trees[0].Replies[0].ID != "b" {
		t.Fatalf("unexpected tree shape: %+v", trees[0])
	}
}
