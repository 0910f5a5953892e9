package chat

import (
	"testing"

	"burrow/pkg/apperr"
	"burrow/pkg/models"
)

func TestInviteAcceptJoinsChat(t *testing.T) {
	openTestStore(t)

	c, err := CreateChat("alice", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inv, err := CreateInvite(c.ID, "alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if inv.Status != models.InvitePending {
		t.Fatalf("new invite must be pending, got %s", inv.Status)
	}

	resolved, err := ResolveInvite(inv.ID, "bob", true)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if resolved.Status != models.InviteAccepted {
		t.Fatalf("expected accepted, got %s", resolved.Status)
	}

	got, err := GetChat(c.ID)
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	if !got.HasMember("bob") {
		t.Fatal("acceptance must join the recipient")
	}
	// membership edit carries its system message
	if len(systemMessages(t, c.ID)) != 2 {
		t.Fatal("acceptance must announce the join")
	}
}

func TestInviteResolutionIsTerminal(t *testing.T) {
	openTestStore(t)

	c, err := CreateChat("alice", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inv, err := CreateInvite(c.ID, "alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := ResolveInvite(inv.ID, "bob", true); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := ResolveInvite(inv.ID, "bob", true); !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("double accept must conflict, got %v", err)
	}
	if _, err := ResolveInvite(inv.ID, "bob", false); !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("reject after accept must conflict, got %v", err)
	}
}

func TestInviteReject(t *testing.T) {
	openTestStore(t)

	c, err := CreateChat("alice", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inv, err := CreateInvite(c.ID, "alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	resolved, err := ResolveInvite(inv.ID, "bob", false)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if resolved.Status != models.InviteRejected {
		t.Fatalf("expected rejected, got %s", resolved.Status)
	}
	got, err := GetChat(c.ID)
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	if got.HasMember("bob") {
		t.Fatal("rejection must not join the recipient")
	}
	// pending invites no longer list it
	pend, err := ListInvites("bob")
	if err != nil {
		t.Fatalf("list invites: %v", err)
	}
	if len(pend) != 0 {
		t.Fatalf("resolved invite must leave the pending list, got %d", len(pend))
	}
}

func TestInviteGuards(t *testing.T) {
	openTestStore(t)

	c, err := CreateChat("alice", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := CreateInvite(c.ID, "mallory", "bob"); !apperr.Is(err, apperr.CodeUnauthorized) {
		t.Fatalf("non-member sender must fail, got %v", err)
	}
	if _, err := CreateInvite(c.ID, "alice", "alice"); !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("inviting an existing member must conflict, got %v", err)
	}

	inv, err := CreateInvite(c.ID, "alice", "bob")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := ResolveInvite(inv.ID, "mallory", true); !apperr.Is(err, apperr.CodeUnauthorized) {
		t.Fatalf("only the recipient may resolve, got %v", err)
	}
	if _, err := ResolveInvite("no-such-invite", "bob", true); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("missing invite must be not found, got %v", err)
	}
}
