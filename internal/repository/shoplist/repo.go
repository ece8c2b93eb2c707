package shoplist

import (
	"context"
	"fmt"

	"recipe-push-server/internal/database"
	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/repository/helper"
)

type ShoplistRepository struct {
	db database.Client
}

var _ IRepository = ShoplistRepository{}

func New(db database.Client) ShoplistRepository {
	return ShoplistRepository{
		db: db,
	}
}

// GetById wraps errors.NotFound when the shoplist does not exist.
func (r ShoplistRepository) GetById(ctx context.Context, id string) (*model.Shoplist, error) {
	docSnap, err := r.db.GetDoc(ctx, r.db.Collection(shoplistNode).Doc(id))
	if err != nil {
		return nil, fmt.Errorf("get shoplist: %w, id: %s", err, id)
	}

	list := &model.Shoplist{}
	if err := docSnap.DataTo(list); err != nil {
		return nil, fmt.Errorf("get shoplist: %w, id: %s", err, id)
	}
	list.Id = id
	return list, nil
}

// ListenItems watches the items of every shoplist at once.
func (r ShoplistRepository) ListenItems(ctx context.Context) (<-chan event.SnapshotEvent[model.ShoplistItem], error) {
	query := r.db.CollectionGroup(itemsNode).Query
	return helper.Listen(ctx, r.db, query, nil, helper.DataTo(func(i *model.ShoplistItem, id string) { i.Id = id }))
}
