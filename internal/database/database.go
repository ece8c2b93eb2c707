package database

import (
	"context"

	"cloud.google.com/go/firestore"
)

type SnapEvent struct {
	Snap *firestore.QuerySnapshot
	Err  error
}

// FIXME: this interface is very much firestore dependant. It should be decoupled from the underlying db technology
type Client interface {
	Listen(ctx context.Context, query firestore.Query) (<-chan SnapEvent, error)
	GetDoc(ctx context.Context, docRef *firestore.DocumentRef) (*firestore.DocumentSnapshot, error)
	GetDocs(ctx context.Context, query firestore.Query) ([]*firestore.DocumentSnapshot, error)
	SetDoc(ctx context.Context, docRef *firestore.DocumentRef, data interface{}, opts ...firestore.SetOption) (_ *firestore.WriteResult, err error)
	DeleteDocs(ctx context.Context, docRefs []*firestore.DocumentRef) error
	Collection(path string) *firestore.CollectionRef
	CollectionGroup(collectionID string) *firestore.CollectionGroupRef
}
