package invitation

import (
	"context"
	"fmt"

	"recipe-push-server/internal/database"
	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/repository/helper"

	"cloud.google.com/go/firestore"
)

type InvitationRepository struct {
	db database.Client
}

var _ IRepository = InvitationRepository{}

func New(db database.Client) InvitationRepository {
	return InvitationRepository{
		db: db,
	}
}

// Listen watches the whole collection; a missing status counts as pending, which a query filter cannot express.
func (r InvitationRepository) Listen(ctx context.Context) (<-chan event.SnapshotEvent[model.Invitation], error) {
	query := r.db.Collection(invitationNode).Query
	return helper.Listen(ctx, r.db, query, nil, helper.DataTo(func(i *model.Invitation, id string) { i.Id = id }))
}

// MarkNotified merges a server timestamp into notifiedAt.
func (r InvitationRepository) MarkNotified(ctx context.Context, id string) error {
	docRef := r.db.Collection(invitationNode).Doc(id)
	_, err := r.db.SetDoc(ctx, docRef, map[string]interface{}{
		NotifiedAtFieldPath: firestore.ServerTimestamp,
	}, firestore.MergeAll)

	if err != nil {
		return fmt.Errorf("mark invitation notified: %w, id: %s", err, id)
	}
	return nil
}
