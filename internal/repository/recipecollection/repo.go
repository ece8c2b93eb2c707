package recipecollection

import (
	"context"

	"recipe-push-server/internal/database"
	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/repository/helper"
)

type RecipeCollectionRepository struct {
	db database.Client
}

var _ IRepository = RecipeCollectionRepository{}

func New(db database.Client) RecipeCollectionRepository {
	return RecipeCollectionRepository{
		db: db,
	}
}

func (r RecipeCollectionRepository) Listen(ctx context.Context) (<-chan event.SnapshotEvent[model.RecipeCollection], error) {
	query := r.db.Collection(recipeCollectionNode).Query
	return helper.Listen(ctx, r.db, query, nil, helper.DataTo(func(c *model.RecipeCollection, id string) { c.Id = id }))
}
