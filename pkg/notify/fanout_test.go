package notify

import (
	"testing"

	"burrow/pkg/models"
	"burrow/pkg/store"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	// isolate the queue per test
	SetDefaultQueue(NewQueue(64))
}

func TestEmitAndFlush(t *testing.T) {
	openTestStore(t)

	Emit("alice", models.NotifyLike, "bob", "post-1")
	if DefaultQueue.Len() != 1 {
		t.Fatalf("expected 1 queued op, got %d", DefaultQueue.Len())
	}
	Flush()

	ns, err := List("alice", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ns))
	}
	n := ns[0]
	if n.Kind != models.NotifyLike || n.Actor != "bob" || n.Subject != "post-1" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestSelfActionsSkipped(t *testing.T) {
	openTestStore(t)

	Emit("alice", models.NotifyComment, "alice", "post-1")
	Emit("", models.NotifyComment, "bob", "post-1")
	Flush()

	ns, err := List("alice", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 0 {
		t.Fatalf("self actions must not notify, got %d", len(ns))
	}
}

func TestRepeatedTransitionsAreNotDeduplicated(t *testing.T) {
	openTestStore(t)

	Emit("alice", models.NotifyLike, "bob", "post-1")
	Emit("alice", models.NotifyLike, "bob", "post-1")
	Flush()

	ns, err := List("alice", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("repeated transitions must each notify, got %d", len(ns))
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	openTestStore(t)

	Emit("alice", models.NotifyFollow, "bob", "")
	Emit("alice", models.NotifyLike, "carol", "post-1")
	Emit("alice", models.NotifyComment, "dave", "post-1")
	Flush()

	ns, err := List("alice", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 2 {
		t.Fatalf("expected limit 2, got %d", len(ns))
	}
	if ns[0].Kind != models.NotifyComment {
		t.Fatalf("expected newest first, got %s", ns[0].Kind)
	}
}

func TestMarkRead(t *testing.T) {
	openTestStore(t)

	Emit("alice", models.NotifyLike, "bob", "post-1")
	Flush()

	ns, err := List("alice", 0)
	if err != nil || len(ns) != 1 {
		t.Fatalf("list: %v (%d)", err, len(ns))
	}
	if ns[0].Read {
		t.Fatal("new notification must be unread")
	}
	if err := MarkRead("alice", ns[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	ns, err = List("alice", 0)
	if err != nil || len(ns) != 1 {
		t.Fatalf("relist: %v (%d)", err, len(ns))
	}
	if !ns[0].Read {
		t.Fatal("notification must be read after MarkRead")
	}
	if err := MarkRead("alice", "no-such-id"); err == nil {
		t.Fatal("marking a missing notification must fail")
	}
}

func TestQueueFullDrops(t *testing.T) {
	q := NewQueue(1)
	if err := q.TryEnqueue(&Op{Recipient: "a", Payload: []byte("x")}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := q.TryEnqueue(&Op{Recipient: "a", Payload: []byte("y")}); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Dropped() != 1 {
		t.Fatalf("expected 1 drop, got %d", q.Dropped())
	}
}
