// Package watcher turns change-feed snapshots into notification tasks.
//
// Every watcher owns its caches. They are only touched from the goroutine running
// the watcher, so handlers need no locking. Caches are rebuilt from the first snapshot
// of every subscription. Only invitations, which carry a persisted notified marker, are
// notified from that snapshot.
package watcher

import (
	"context"
	"errors"
	"fmt"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrSubscriptionClosed = errors.New("subscription closed")

// Handler classifies the changes of one collection.
type Handler[T any] interface {
	// Initialize seeds the handler's cache from the first snapshot of a subscription and
	// returns the tasks that snapshot calls for.
	Initialize(ctx context.Context, snapshot event.Snapshot[T]) []fanout.Task
	// OnChange returns the tasks a later change calls for.
	OnChange(ctx context.Context, change event.Change[T]) []fanout.Task
}

type Dispatcher interface {
	Dispatch(ctx context.Context, tasks []fanout.Task)
}

type Watcher[T any] struct {
	name       string
	source     event.Source[T]
	handler    Handler[T]
	dispatcher Dispatcher
	logger     zerolog.Logger
}

func New[T any](name string, source event.Source[T], handler Handler[T], dispatcher Dispatcher) *Watcher[T] {
	return &Watcher[T]{
		name:       name,
		source:     source,
		handler:    handler,
		dispatcher: dispatcher,
		logger:     log.With().Str("watcher", name).Logger(),
	}
}

func (w *Watcher[T]) Name() string {
	return w.name
}

// Run subscribes and handles snapshots until ctx is done or the subscription fails.
// started is called once the subscription is live. The tasks of one snapshot are
// dispatched before the next snapshot is read.
func (w *Watcher[T]) Run(ctx context.Context, started func()) error {
	events, err := w.source.Listen(ctx)
	if err != nil {
		return fmt.Errorf("%s: start: %w", w.name, err)
	}
	if started != nil {
		started()
	}

	initialized := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%s: %w", w.name, ErrSubscriptionClosed)
			}

			if e.Err != nil {
				return fmt.Errorf("%s: %w", w.name, e.Err)
			}

			tasks := []fanout.Task{}
			if !initialized {
				tasks = w.handler.Initialize(ctx, e.Snapshot)
				initialized = true
				w.logger.Info().Int("docs", len(e.Snapshot.Changes)).Int("tasks", len(tasks)).Msg("initial snapshot loaded")
			} else {
				for _, change := range e.Snapshot.Changes {
					tasks = append(tasks, w.handler.OnChange(ctx, change)...)
				}
			}
			if len(tasks) > 0 {
				w.dispatcher.Dispatch(ctx, tasks)
			}
		}
	}
}
