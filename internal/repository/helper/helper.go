package helper

import (
	"context"
	"fmt"

	"recipe-push-server/internal/database"
	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/repository/filter"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
)

// DecodeFunc converts one document snapshot to its model.
type DecodeFunc[T any] func(*firestore.DocumentSnapshot) (T, error)

// Listen subscribes to the query and converts every snapshot into typed change events.
// Documents failing to decode are logged and skipped.
func Listen[T any](ctx context.Context, db database.Client, query firestore.Query,
	where []filter.Where, decode DecodeFunc[T]) (<-chan event.SnapshotEvent[T], error) {

	snaps, err := db.Listen(ctx, filter.Apply(query, where))
	if err != nil {
		return nil, err
	}

	ch := make(chan event.SnapshotEvent[T])
	go func() {
		defer close(ch)

		for s := range snaps {
			e := event.SnapshotEvent[T]{Err: s.Err}
			if s.Err == nil {
				e.Snapshot = ToSnapshot(s.Snap, decode)
			}

			select {
			case <-ctx.Done():
				return
			case ch <- e:
			}

			if s.Err != nil {
				return
			}
		}
	}()

	return ch, nil
}

func ToSnapshot[T any](snap *firestore.QuerySnapshot, decode DecodeFunc[T]) event.Snapshot[T] {
	out := event.Snapshot[T]{Changes: make([]event.Change[T], 0, len(snap.Changes))}

	for _, dc := range snap.Changes {
		if dc.Doc == nil {
			continue
		}

		data, err := decode(dc.Doc)
		if err != nil {
			log.Error().Err(err).Msgf("failed to decode doc %s", database.RelativePath(dc.Doc.Ref))
			continue
		}

		out.Changes = append(out.Changes, event.Change[T]{
			Type:     ToEventType(dc.Kind),
			Id:       dc.Doc.Ref.ID,
			Path:     database.RelativePath(dc.Doc.Ref),
			ParentId: database.ParentID(dc.Doc.Ref),
			Data:     data,
		})
	}

	return out
}

func ToEventType(kind firestore.DocumentChangeKind) event.EventType {
	switch kind {
	case firestore.DocumentModified:
		return event.DbDocChanged
	case firestore.DocumentRemoved:
		return event.DbDocDeleted
	default:
		return event.DbDocAdded
	}
}

// DataTo decodes the doc into a new T and lets setID stamp the document id on it.
func DataTo[T any](setID func(*T, string)) DecodeFunc[T] {
	return func(doc *firestore.DocumentSnapshot) (T, error) {
		var v T
		if err := doc.DataTo(&v); err != nil {
			return v, fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
		}
		if setID != nil {
			setID(&v, doc.Ref.ID)
		}
		return v, nil
	}
}
