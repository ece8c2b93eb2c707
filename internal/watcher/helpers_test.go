package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"
	"recipe-push-server/internal/testkit"
)

// replay returns a source delivering the given snapshots and then closing.
func replay[T any](snapshots ...event.Snapshot[T]) event.Source[T] {
	return event.SourceFunc[T](func(context.Context) (<-chan event.SnapshotEvent[T], error) {
		ch := make(chan event.SnapshotEvent[T], len(snapshots))
		for _, s := range snapshots {
			ch <- event.SnapshotEvent[T]{Snapshot: s}
		}
		close(ch)
		return ch, nil
	})
}

func snapshot[T any](changes ...event.Change[T]) event.Snapshot[T] {
	return event.Snapshot[T]{Changes: changes}
}

// runToEnd runs w over a replayed source and expects it to stop at the end of the feed.
func runToEnd[T any](t *testing.T, w *Watcher[T]) {
	t.Helper()

	err := w.Run(context.Background(), nil)
	if !errors.Is(err, ErrSubscriptionClosed) {
		t.Fatalf("expected the watcher to stop at the end of the feed, got %v", err)
	}
}

type pushEnv struct {
	prefs       *testkit.Preferences
	tokens      *testkit.Tokens
	sender      *testkit.Sender
	invitations *testkit.Invitations
	orch        *fanout.Orchestrator
}

func newPushEnv() pushEnv {
	env := pushEnv{
		prefs:       testkit.NewPreferences(),
		tokens:      testkit.NewTokens(),
		sender:      testkit.NewSender(),
		invitations: testkit.NewInvitations(),
	}
	env.orch = fanout.New(env.prefs, env.tokens, env.invitations, env.sender, 2)
	return env
}

// recorder is a Dispatcher keeping every task.
type recorder struct {
	mu    sync.Mutex
	tasks []fanout.Task
	calls int
}

func (r *recorder) Dispatch(_ context.Context, tasks []fanout.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.tasks = append(r.tasks, tasks...)
}

func recipientsOf(tasks []fanout.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.RecipientId)
	}
	return out
}
