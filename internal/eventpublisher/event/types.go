package event

import "context"

type (
	EventType int

	// Change is one typed document change delivered by a change feed.
	Change[T any] struct {
		Type EventType
		Id   string
		// Path is relative to the database root, e.g. "shoplists/s1/items/i1".
		Path string
		// ParentId is the id of the document owning the collection, empty for root collections.
		ParentId string
		Data     T
	}

	// Snapshot groups the changes of one feed delivery. The first snapshot of a
	// subscription carries every existing document as DbDocAdded.
	Snapshot[T any] struct {
		Changes []Change[T]
	}

	SnapshotEvent[T any] struct {
		Snapshot Snapshot[T]
		Err      error
	}

	// Source starts a change-feed subscription. A start error is returned
	// directly; later errors arrive on the channel before it is closed.
	// Cancelling ctx unsubscribes.
	Source[T any] interface {
		Listen(ctx context.Context) (<-chan SnapshotEvent[T], error)
	}

	// SourceFunc adapts a function to Source.
	SourceFunc[T any] func(ctx context.Context) (<-chan SnapshotEvent[T], error)
)

const (
	DbDocAdded EventType = iota
	DbDocChanged
	DbDocDeleted
)

func (f SourceFunc[T]) Listen(ctx context.Context) (<-chan SnapshotEvent[T], error) {
	return f(ctx)
}

func (t EventType) String() string {
	switch t {
	case DbDocAdded:
		return "added"
	case DbDocChanged:
		return "modified"
	case DbDocDeleted:
		return "removed"
	}
	return "unknown"
}
