package testkit

import (
	"context"
	"sync"
	"testing"

	"recipe-push-server/internal/database"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

var _ database.Client = (*DB)(nil)

// DB is a database.Client recording the queries and refs it is given. Collection and
// CollectionGroup come from an offline firestore client, so refs and queries are real.
type DB struct {
	*firestore.Client

	mu      sync.Mutex
	queries []firestore.Query
	gets    []*firestore.DocumentRef
	deleted []*firestore.DocumentRef

	// Docs answers every GetDocs call.
	Docs []*firestore.DocumentSnapshot
	// GetErr and GetDocsErr fail the matching read.
	GetErr     error
	GetDocsErr error
}

func NewDB(t *testing.T) *DB {
	t.Helper()

	client, err := firestore.NewClient(context.Background(), "test-project", option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return &DB{Client: client}
}

// Snapshot returns a snapshot holding only the ref of the document at path.
func (d *DB) Snapshot(path string) *firestore.DocumentSnapshot {
	return &firestore.DocumentSnapshot{Ref: d.Client.Doc(path)}
}

func (d *DB) Listen(context.Context, firestore.Query) (<-chan database.SnapEvent, error) {
	ch := make(chan database.SnapEvent)
	close(ch)
	return ch, nil
}

func (d *DB) GetDoc(_ context.Context, docRef *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gets = append(d.gets, docRef)
	if d.GetErr != nil {
		return nil, d.GetErr
	}
	return &firestore.DocumentSnapshot{Ref: docRef}, nil
}

func (d *DB) GetDocs(_ context.Context, query firestore.Query) ([]*firestore.DocumentSnapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries = append(d.queries, query)
	if d.GetDocsErr != nil {
		return nil, d.GetDocsErr
	}
	return d.Docs, nil
}

func (d *DB) SetDoc(context.Context, *firestore.DocumentRef, interface{}, ...firestore.SetOption) (*firestore.WriteResult, error) {
	return &firestore.WriteResult{}, nil
}

func (d *DB) DeleteDocs(_ context.Context, docRefs []*firestore.DocumentRef) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, docRefs...)
	return nil
}

func (d *DB) Queries() []firestore.Query {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]firestore.Query(nil), d.queries...)
}

func (d *DB) Gets() []*firestore.DocumentRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*firestore.DocumentRef(nil), d.gets...)
}

// Deleted returns the relative paths of every deleted document.
func (d *DB) Deleted() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	paths := make([]string, 0, len(d.deleted))
	for _, ref := range d.deleted {
		paths = append(paths, database.RelativePath(ref))
	}
	return paths
}
