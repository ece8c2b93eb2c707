package recipe

import (
	"context"
	"fmt"

	"recipe-push-server/internal/database"
	"recipe-push-server/internal/model"
)

type RecipeRepository struct {
	db database.Client
}

var _ IRepository = RecipeRepository{}

func New(db database.Client) RecipeRepository {
	return RecipeRepository{
		db: db,
	}
}

func (r RecipeRepository) GetById(ctx context.Context, id string) (*model.Recipe, error) {
	docSnap, err := r.db.GetDoc(ctx, r.db.Collection(recipeNode).Doc(id))
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w, id: %s", err, id)
	}

	recipe := &model.Recipe{}
	if err := docSnap.DataTo(recipe); err != nil {
		return nil, fmt.Errorf("get recipe: %w, id: %s", err, id)
	}
	recipe.Id = id
	return recipe, nil
}
