package watcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"
	"recipe-push-server/internal/model"
)

func pendingInvitation(id, to, itemName string) event.Change[model.Invitation] {
	return event.Change[model.Invitation]{
		Type: event.DbDocAdded,
		Id:   id,
		Path: "invitations/" + id,
		Data: model.Invitation{
			Id:         id,
			FromUserId: "u9",
			ToUserId:   to,
			ItemId:     "m1",
			ItemType:   model.ItemTypeMenu,
			ItemName:   itemName,
			Status:     model.InvitationPending,
		},
	}
}

func TestInvitationWatcher_NotifiesOnceForRedeliveredEvent(t *testing.T) {
	t.Parallel()

	env := newPushEnv()
	env.tokens.Register("u1", "tok-1", "tok-2")

	inv := pendingInvitation("inv-1", "u1", "Dinner List")
	w := New[model.Invitation]("invitations",
		replay(snapshot[model.Invitation](), snapshot(inv), snapshot(inv)),
		NewInvitationHandler(), env.orch)
	runToEnd(t, w)

	sends := env.sender.Sends()
	if len(sends) != 1 {
		t.Fatalf("expected exactly one push, got %d", len(sends))
	}
	if len(sends[0].Tokens) != 2 {
		t.Fatalf("expected push to all tokens of u1, got %v", sends[0].Tokens)
	}
	if !strings.Contains(sends[0].Message.Body, "Dinner List") {
		t.Fatalf("expected body to mention the item, got %q", sends[0].Message.Body)
	}
	if sends[0].Message.Data["invitationId"] != "inv-1" {
		t.Fatalf("expected invitation id in data, got %v", sends[0].Message.Data)
	}
	if got := env.invitations.Marked("inv-1"); got != 1 {
		t.Fatalf("expected notifiedAt written once, got %d", got)
	}
}

func TestInvitationWatcher_NotifiedMarkerSuppressesAfterRestart(t *testing.T) {
	t.Parallel()

	env := newPushEnv()
	env.tokens.Register("u1", "tok-1")

	notified := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	inv := pendingInvitation("inv-1", "u1", "Dinner List")
	inv.Type = event.DbDocChanged
	inv.Data.NotifiedAt = &notified

	// a fresh handler has an empty processed set, like a restarted process
	w := New[model.Invitation]("invitations",
		replay(snapshot[model.Invitation](), snapshot(inv)),
		NewInvitationHandler(), env.orch)
	runToEnd(t, w)

	if len(env.sender.Sends()) != 0 {
		t.Fatalf("expected no push for a notified invitation, got %d", len(env.sender.Sends()))
	}
}

func TestInvitationWatcher_NotifiesPendingInvitationsOfInitialSnapshot(t *testing.T) {
	t.Parallel()

	env := newPushEnv()
	env.tokens.Register("u1", "tok-1")
	handler := NewInvitationHandler()

	// first subscription sees an empty collection
	runToEnd(t, New[model.Invitation]("invitations", replay(snapshot[model.Invitation]()), handler, env.orch))

	// the invitation was created while the watcher was resubscribing
	gap := pendingInvitation("inv-gap", "u1", "Dinner List")
	runToEnd(t, New[model.Invitation]("invitations", replay(snapshot(gap)), handler, env.orch))

	if got := len(env.sender.SendsTo("tok-1")); got != 1 {
		t.Fatalf("expected one push for the pending invitation, got %d", got)
	}
	if got := env.invitations.Marked("inv-gap"); got != 1 {
		t.Fatalf("expected notifiedAt written once, got %d", got)
	}

	// a later resubscription in the same process delivers it again
	runToEnd(t, New[model.Invitation]("invitations", replay(snapshot(gap)), handler, env.orch))
	if got := len(env.sender.SendsTo("tok-1")); got != 1 {
		t.Fatalf("expected no second push in the same process, got %d", got)
	}
}

func TestInvitationWatcher_InitialSnapshotSkipsNotifiedAndAnswered(t *testing.T) {
	t.Parallel()

	env := newPushEnv()
	env.tokens.Register("u1", "tok-1")

	notified := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	done := pendingInvitation("inv-done", "u1", "Dinner List")
	done.Data.NotifiedAt = &notified
	accepted := pendingInvitation("inv-accepted", "u1", "Dinner List")
	accepted.Data.Status = model.InvitationAccepted

	w := New[model.Invitation]("invitations", replay(snapshot(done, accepted)), NewInvitationHandler(), env.orch)
	runToEnd(t, w)

	if len(env.sender.Sends()) != 0 {
		t.Fatalf("expected no push, got %d", len(env.sender.Sends()))
	}
}

func TestInvitationHandler_Qualification(t *testing.T) {
	t.Parallel()

	notified := time.Now()
	cases := []struct {
		name   string
		mutate func(*event.Change[model.Invitation])
		want   int
	}{
		{name: "pending", mutate: func(*event.Change[model.Invitation]) {}, want: 1},
		{name: "missing status", mutate: func(c *event.Change[model.Invitation]) { c.Data.Status = "" }, want: 1},
		{name: "modified pending", mutate: func(c *event.Change[model.Invitation]) { c.Type = event.DbDocChanged }, want: 1},
		{name: "accepted", mutate: func(c *event.Change[model.Invitation]) { c.Data.Status = model.InvitationAccepted }, want: 0},
		{name: "declined", mutate: func(c *event.Change[model.Invitation]) { c.Data.Status = model.InvitationDeclined }, want: 0},
		{name: "notified", mutate: func(c *event.Change[model.Invitation]) { c.Data.NotifiedAt = &notified }, want: 0},
		{name: "removed", mutate: func(c *event.Change[model.Invitation]) { c.Type = event.DbDocDeleted }, want: 0},
		{name: "no recipient", mutate: func(c *event.Change[model.Invitation]) { c.Data.ToUserId = "" }, want: 0},
	}

	for _, tc := range cases {
		change := pendingInvitation("inv-1", "u1", "Dinner List")
		tc.mutate(&change)

		tasks := NewInvitationHandler().OnChange(context.Background(), change)
		if len(tasks) != tc.want {
			t.Fatalf("%s: expected %d tasks, got %d", tc.name, tc.want, len(tasks))
		}
		if tc.want == 1 {
			task := tasks[0]
			if task.RecipientId != "u1" || task.Kind != fanout.KindInvite || task.InvitationId != "inv-1" {
				t.Fatalf("%s: unexpected task %+v", tc.name, task)
			}
		}
	}
}

func TestInvitationHandler_RejectedEventIsNotRemembered(t *testing.T) {
	t.Parallel()

	h := NewInvitationHandler()
	accepted := pendingInvitation("inv-1", "u1", "Dinner List")
	accepted.Data.Status = model.InvitationAccepted
	if tasks := h.OnChange(context.Background(), accepted); len(tasks) != 0 {
		t.Fatalf("expected no task, got %d", len(tasks))
	}

	if tasks := h.OnChange(context.Background(), pendingInvitation("inv-1", "u1", "Dinner List")); len(tasks) != 1 {
		t.Fatalf("expected a later pending event to qualify, got %d tasks", len(tasks))
	}
}
