package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ierr "recipe-push-server/internal/errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore rejects batches above this many writes.
const maxBatchWrites = 500

type FirestoreClient struct {
	*firestore.Client
	writeTimeout time.Duration
}

var _ Client = FirestoreClient{}

func New(client *firestore.Client, writeTimeout time.Duration) FirestoreClient {
	if writeTimeout <= 0 {
		writeTimeout = time.Second * 120
	}
	return FirestoreClient{
		Client:       client,
		writeTimeout: writeTimeout,
	}
}

// Listen opens a snapshot listener on the query and blocks until the first snapshot arrives.
// A failure to obtain that snapshot is returned as a start error. After that every snapshot is
// delivered on the channel; the first listener error is delivered as the last event before the
// channel is closed.
func (c FirestoreClient) Listen(ctx context.Context, query firestore.Query) (<-chan SnapEvent, error) {
	it := query.Snapshots(ctx)
	return stream(ctx, it.Next, it.Stop)
}

// stream runs the listener loop over a snapshot iterator given by next and stop.
// Listener errors are left to the receiver to report.
func stream(ctx context.Context, next func() (*firestore.QuerySnapshot, error), stop func()) (<-chan SnapEvent, error) {
	first, err := next()
	if err != nil {
		stop()
		return nil, fmt.Errorf("start listener: %w", err)
	}

	ch := make(chan SnapEvent)
	go func() {
		defer close(ch)
		defer stop()

		snap := first
		for {
			select {
			case <-ctx.Done():
				return
			case ch <- SnapEvent{Snap: snap}:
			}

			snap, err = next()
			if err != nil {
				if err == iterator.Done || IsContextDone(err) {
					return
				}
				select {
				case <-ctx.Done():
				case ch <- SnapEvent{Err: err}:
				}
				return
			}
		}
	}()

	return ch, nil
}

// IsContextDone reports whether err is a cancellation or deadline error.
// Listener errors are not always wrapped properly, so errors.Is() alone does not work.
func IsContextDone(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if code := status.Code(err); code == codes.Canceled || code == codes.DeadlineExceeded {
		return true
	}
	return strings.Contains(err.Error(), "context canceled") || strings.Contains(err.Error(), "context deadline exceeded")
}

func (c FirestoreClient) GetDoc(ctx context.Context, docRef *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	docSnapshot, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ierr.NotFound
		}
		return nil, err
	}

	if !docSnapshot.Exists() {
		return nil, ierr.NotFound
	}

	return docSnapshot, nil
}

func (c FirestoreClient) GetDocs(ctx context.Context, query firestore.Query) ([]*firestore.DocumentSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	iter := query.Documents(ctx)
	defer iter.Stop()

	docs := []*firestore.DocumentSnapshot{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func (c FirestoreClient) SetDoc(ctx context.Context, docRef *firestore.DocumentRef, data interface{}, opts ...firestore.SetOption) (_ *firestore.WriteResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	return docRef.Set(ctx, data, opts...)
}

// DeleteDocs deletes the given docs in as few batches as possible.
func (c FirestoreClient) DeleteDocs(ctx context.Context, docRefs []*firestore.DocumentRef) error {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	for start := 0; start < len(docRefs); start += maxBatchWrites {
		end := min(start+maxBatchWrites, len(docRefs))

		batch := c.Client.Batch()
		for _, ref := range docRefs[start:end] {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}

	return nil
}
