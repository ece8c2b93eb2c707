package menu

import (
	"context"

	"recipe-push-server/internal/database"
	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/repository/helper"
)

type MenuRepository struct {
	db database.Client
}

var _ IRepository = MenuRepository{}

func New(db database.Client) MenuRepository {
	return MenuRepository{
		db: db,
	}
}

func (r MenuRepository) Listen(ctx context.Context) (<-chan event.SnapshotEvent[model.Menu], error) {
	query := r.db.Collection(menuNode).Query
	return helper.Listen(ctx, r.db, query, nil, helper.DataTo(func(m *model.Menu, id string) { m.Id = id }))
}
